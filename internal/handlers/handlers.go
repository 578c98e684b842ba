// Package handlers contains the HTTP handlers for every MacTrack screen:
// the public marketing pages, the waitlist, auth, onboarding, the
// dashboard and its list screens, and the admin console.
package handlers

import (
	"log"
	"net/http"

	"github.com/mactrack/mactrack/internal/view"
)

// Explicit constant for 303 See Other (Post/Redirect/Get)
const statusSeeOther = 303

// renderTemplate uses the shared view.Render to ensure layout, funcs and
// caching.
func renderTemplate(w http.ResponseWriter, r *http.Request, name string, data map[string]any) {
	if err := view.Render(w, r, name+".html", data); err != nil {
		log.Printf("render %s: %v", name, err)
		w.WriteHeader(http.StatusInternalServerError)
		if _, werr := w.Write([]byte("template error")); werr != nil {
			_ = werr
		}
	}
}
