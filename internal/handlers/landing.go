package handlers

import (
	"net/http"

	"github.com/mactrack/mactrack/internal/auth"
)

// Landing renders the public marketing page: hero with the waitlist form,
// features, how-it-works and the footer CTA.
func Landing(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	_, loggedIn := auth.UserIDFromContext(r.Context())
	renderTemplate(w, r, "index", map[string]any{
		"IsLoggedIn": loggedIn,
	})
}
