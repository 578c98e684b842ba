package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"gorm.io/gorm"

	"github.com/mactrack/mactrack/internal/email"
	"github.com/mactrack/mactrack/internal/httpx"
	"github.com/mactrack/mactrack/internal/models"
	"github.com/mactrack/mactrack/internal/validation"
)

// WaitlistHandler captures email signups from the marketing pages.
type WaitlistHandler struct {
	DB     *gorm.DB
	Mailer email.Mailer
}

func NewWaitlistHandler(db *gorm.DB, mailer email.Mailer) *WaitlistHandler {
	return &WaitlistHandler{DB: db, Mailer: mailer}
}

type waitlistRequest struct {
	Name   string `json:"name"`
	Email  string `json:"email" validate:"required,email"`
	Source string `json:"source"`
}

// Join handles POST /waitlist from the hero and footer CTA forms.
func (h *WaitlistHandler) Join(w http.ResponseWriter, r *http.Request) {
	var req waitlistRequest
	ct := r.Header.Get("Content-Type")
	if strings.HasPrefix(ct, "application/json") {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_form", nil)
			return
		}
		req.Name = r.FormValue("name")
		req.Email = r.FormValue("email")
		req.Source = r.FormValue("source")
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Source == "" {
		req.Source = "landing"
	}

	if v := validation.Struct(req); !v.Empty() {
		h.respondError(w, r, http.StatusBadRequest, "invalid_email", v)
		return
	}

	signup := models.EmailSignup{Name: req.Name, Email: req.Email, Source: req.Source}
	if err := h.DB.Create(&signup).Error; err != nil {
		if models.IsUniqueViolation(err) {
			h.respondAlreadyRegistered(w, r, req)
			return
		}
		h.respondError(w, r, http.StatusInternalServerError, "signup_failed", nil)
		return
	}

	// Confirmation mail is best-effort; the signup row is the only
	// required effect.
	h.Mailer.Send(email.WaitlistWelcome(req.Name, req.Email))

	if httpx.WantsJSON(r) || strings.HasPrefix(ct, "application/json") {
		httpx.JSON(w, http.StatusCreated, map[string]any{"joined": true})
		return
	}
	renderTemplate(w, r, "index", map[string]any{
		"WaitlistJoined": true,
	})
}

func (h *WaitlistHandler) respondAlreadyRegistered(w http.ResponseWriter, r *http.Request, req waitlistRequest) {
	if httpx.WantsJSON(r) || strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		httpx.JSONError(w, http.StatusConflict, "already_registered", nil)
		return
	}
	w.WriteHeader(http.StatusConflict)
	renderTemplate(w, r, "index", map[string]any{
		"WaitlistError": "This email is already on our waitlist!",
		"WaitlistName":  req.Name,
		"WaitlistEmail": req.Email,
	})
}

func (h *WaitlistHandler) respondError(w http.ResponseWriter, r *http.Request, status int, code string, details any) {
	if httpx.WantsJSON(r) || strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		httpx.JSONError(w, status, code, details)
		return
	}
	w.WriteHeader(status)
	renderTemplate(w, r, "index", map[string]any{
		"WaitlistError": "Please enter a valid email address.",
	})
}
