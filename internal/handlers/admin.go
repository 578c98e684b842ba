package handlers

import (
	"log"
	"net/http"

	"github.com/mactrack/mactrack/internal/gate"
	"github.com/mactrack/mactrack/internal/httpx"
	"github.com/mactrack/mactrack/internal/services"
)

// AdminHandler serves the admin console. Access control happens in the
// gate middleware; by the time Overview runs the caller is a verified
// admin with a complete profile.
type AdminHandler struct {
	Admin *services.AdminService
}

func NewAdminHandler(admin *services.AdminService) *AdminHandler {
	return &AdminHandler{Admin: admin}
}

func (h *AdminHandler) Overview(w http.ResponseWriter, r *http.Request) {
	ov, err := h.Admin.BuildOverview(r.Context())
	if err != nil {
		log.Printf("admin overview: %v", err)
		httpx.JSONError(w, http.StatusInternalServerError, "overview_failed", nil)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, ov)
		return
	}
	profile, _ := gate.ProfileFromContext(r.Context())
	renderTemplate(w, r, "admin", map[string]any{
		"Overview":   ov,
		"Profile":    profile,
		"IsLoggedIn": true,
		"IsAdmin":    true,
	})
}
