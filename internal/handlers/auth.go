package handlers

import (
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/mactrack/mactrack/internal/auth"
	"github.com/mactrack/mactrack/internal/httpx"
	"github.com/mactrack/mactrack/internal/models"
	"github.com/mactrack/mactrack/internal/validation"
)

type AuthHandler struct{ DB *gorm.DB }

func NewAuthHandler(db *gorm.DB) *AuthHandler { return &AuthHandler{DB: db} }

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		renderTemplate(w, r, "signup", nil)
		return
	}
	if err := r.ParseForm(); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_form", nil)
		return
	}
	emailAddr := strings.ToLower(strings.TrimSpace(r.FormValue("email")))
	pass := r.FormValue("password")
	fullName := strings.TrimSpace(r.FormValue("full_name"))

	v := validation.Violations{}
	validation.Email("email", emailAddr, v)
	validation.Required("password", pass, v)
	if len(pass) < 8 {
		v["password"] = "too_short"
	}
	if !v.Empty() {
		renderTemplate(w, r, "signup", map[string]any{
			"Error":      "Please enter a valid email and a password of at least 8 characters.",
			"Violations": v,
			"Email":      emailAddr,
			"FullName":   fullName,
		})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(pass), bcrypt.DefaultCost)
	if err != nil {
		renderTemplate(w, r, "signup", map[string]any{"Error": "could not create account"})
		return
	}
	user := models.User{Email: emailAddr, Password: string(hash), FullName: fullName}
	if err := h.DB.Create(&user).Error; err != nil {
		msg := "could not create account"
		if models.IsUniqueViolation(err) {
			msg = "an account with this email already exists"
		}
		renderTemplate(w, r, "signup", map[string]any{"Error": msg, "Email": emailAddr, "FullName": fullName})
		return
	}
	auth.CreateSession(w, user.ID)
	// PRG redirect; the gate sends fresh accounts on to onboarding.
	http.Redirect(w, r, "/app", statusSeeOther)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		// If a valid session already exists, skip the form.
		if uid, ok := auth.UserIDFromContext(r.Context()); ok && uid != 0 {
			var count int64
			if err := h.DB.Model(&models.User{}).Where("id = ?", uid).Limit(1).Count(&count).Error; err == nil && count > 0 {
				http.Redirect(w, r, "/app", http.StatusSeeOther)
				return
			}
			// Stale session: clear and continue to render login
			auth.ClearSession(w)
		}
		renderTemplate(w, r, "login", nil)
		return
	}
	if err := r.ParseForm(); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_form", nil)
		return
	}
	emailAddr := strings.ToLower(strings.TrimSpace(r.FormValue("email")))
	pass := r.FormValue("password")
	if emailAddr == "" || pass == "" {
		renderTemplate(w, r, "login", map[string]any{"Error": "email and password required"})
		return
	}
	var user models.User
	if err := h.DB.Where("email = ?", emailAddr).First(&user).Error; err != nil {
		renderTemplate(w, r, "login", map[string]any{"Error": "invalid credentials"})
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(pass)) != nil {
		renderTemplate(w, r, "login", map[string]any{"Error": "invalid credentials"})
		return
	}
	auth.CreateSession(w, user.ID)
	http.Redirect(w, r, "/app", statusSeeOther)
}

// Session reports the current authenticated user. Sits behind
// auth.RequireAuth, so a missing or stale session never reaches it.
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	var user models.User
	if err := h.DB.Preload("Profile").First(&user, uid).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "user_load_failed", nil)
		return
	}
	complete := user.Profile != nil && user.Profile.Complete()
	httpx.JSON(w, http.StatusOK, map[string]any{
		"user_id":          user.ID,
		"email":            user.Email,
		"profile_complete": complete,
	})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	auth.ClearSession(w)
	http.Redirect(w, r, "/", statusSeeOther)
}
