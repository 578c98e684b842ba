package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"github.com/mactrack/mactrack/internal/auth"
	"github.com/mactrack/mactrack/internal/gate"
	"github.com/mactrack/mactrack/internal/httpx"
	"github.com/mactrack/mactrack/internal/models"
	"github.com/mactrack/mactrack/internal/services"
	"github.com/mactrack/mactrack/internal/validation"
)

// DashboardHandler renders the main app screen: profile summary card and
// the unit list, plus the profile edit form.
type DashboardHandler struct {
	DB       *gorm.DB
	Profiles *services.ProfileLoader
}

func NewDashboardHandler(db *gorm.DB, profiles *services.ProfileLoader) *DashboardHandler {
	return &DashboardHandler{DB: db, Profiles: profiles}
}

func (h *DashboardHandler) Home(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	profile, _ := gate.ProfileFromContext(r.Context())

	var user models.User
	if err := h.DB.First(&user, uid).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "user_load_failed", nil)
		return
	}
	var units []models.Unit
	if err := h.DB.Where("user_id = ?", uid).Order("created_at DESC").Find(&units).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "units_load_failed", nil)
		return
	}

	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]any{
			"profile": profile,
			"email":   user.Email,
			"units":   units,
		})
		return
	}
	data := map[string]any{
		"Profile": profile,
		"User":    user,
		"Units":   units,
	}
	if code := r.URL.Query().Get("unit_error"); code != "" {
		data["UnitError"] = unitErrorMessage(code)
	}
	if r.URL.Query().Get("profile_error") != "" {
		data["ProfileError"] = true
	}
	renderTemplate(w, r, "dashboard", data)
}

// unitErrorMessage maps unit form error codes to user-facing text.
func unitErrorMessage(code string) string {
	switch code {
	case "unit_already_added":
		return "You have already added this unit."
	case "validation_failed":
		return "Please fill in both the unit code and the unit name."
	default:
		return "Could not add the unit. Please try again."
	}
}

// UpdateProfile handles the dashboard's inline profile edit form.
func (h *DashboardHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	var in services.UpdateProfileInput
	ct := r.Header.Get("Content-Type")
	if strings.HasPrefix(ct, "application/json") {
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_form", nil)
			return
		}
		in.FullName = r.FormValue("full_name")
		in.Gender = r.FormValue("gender")
		in.Degree = r.FormValue("degree")
		in.Year, _ = strconv.Atoi(r.FormValue("year"))
		in.Session, _ = strconv.Atoi(r.FormValue("session"))
	}

	if v := validation.Struct(in); !v.Empty() {
		if strings.HasPrefix(ct, "application/json") {
			httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
			return
		}
		http.Redirect(w, r, "/app?profile_error=1", statusSeeOther)
		return
	}

	profile, err := h.Profiles.Update(r.Context(), uid, in)
	if err != nil {
		if strings.HasPrefix(ct, "application/json") {
			httpx.JSONError(w, http.StatusInternalServerError, "profile_update_failed", nil)
			return
		}
		http.Redirect(w, r, "/app?profile_error=1", statusSeeOther)
		return
	}
	if strings.HasPrefix(ct, "application/json") {
		httpx.JSON(w, http.StatusOK, profile)
		return
	}
	http.Redirect(w, r, "/app", statusSeeOther)
}
