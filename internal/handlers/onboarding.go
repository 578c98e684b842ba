package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/mactrack/mactrack/internal/auth"
	"github.com/mactrack/mactrack/internal/gate"
	"github.com/mactrack/mactrack/internal/httpx"
	"github.com/mactrack/mactrack/internal/services"
	"github.com/mactrack/mactrack/internal/validation"
)

// OnboardingHandler drives the first-run profile wizard. The wizard's four
// steps (welcome, personal info, academic details, study timeline) are a
// single template; step state lives in the form, the server only validates
// and saves the final submission.
type OnboardingHandler struct {
	Profiles *services.ProfileLoader
}

func NewOnboardingHandler(profiles *services.ProfileLoader) *OnboardingHandler {
	return &OnboardingHandler{Profiles: profiles}
}

func (h *OnboardingHandler) Show(w http.ResponseWriter, r *http.Request) {
	profile, _ := gate.ProfileFromContext(r.Context())
	renderTemplate(w, r, "onboarding", map[string]any{
		"Profile": profile,
	})
}

func (h *OnboardingHandler) Complete(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

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
		profile, _ := gate.ProfileFromContext(r.Context())
		w.WriteHeader(http.StatusBadRequest)
		renderTemplate(w, r, "onboarding", map[string]any{
			"Profile":    profile,
			"Violations": v,
			"Error":      "Please fill in all required fields.",
			"Form":       in,
		})
		return
	}

	profile, err := h.Profiles.Update(r.Context(), uid, in)
	if err != nil {
		if strings.HasPrefix(ct, "application/json") {
			httpx.JSONError(w, http.StatusInternalServerError, "profile_update_failed", nil)
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
		renderTemplate(w, r, "onboarding", map[string]any{
			"Error": "Could not save your profile. Please try again.",
			"Form":  in,
		})
		return
	}

	if strings.HasPrefix(ct, "application/json") {
		httpx.JSON(w, http.StatusOK, profile)
		return
	}
	http.Redirect(w, r, "/app", statusSeeOther)
}
