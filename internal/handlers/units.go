package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"github.com/mactrack/mactrack/internal/auth"
	"github.com/mactrack/mactrack/internal/httpx"
	"github.com/mactrack/mactrack/internal/models"
	"github.com/mactrack/mactrack/internal/validation"
)

// UnitHandler manages the user's enrolled units from the dashboard.
type UnitHandler struct{ DB *gorm.DB }

func NewUnitHandler(db *gorm.DB) *UnitHandler { return &UnitHandler{DB: db} }

// List returns the user's units newest-first. JSON only; the dashboard
// renders the HTML version.
func (h *UnitHandler) List(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	var units []models.Unit
	if err := h.DB.Where("user_id = ?", uid).Order("created_at DESC").Find(&units).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "units_load_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": units})
}

// Create adds a unit. Prefix and number are always rederived from the
// submitted code; any client-supplied values are ignored.
func (h *UnitHandler) Create(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	var code, name string
	ct := r.Header.Get("Content-Type")
	if strings.HasPrefix(ct, "application/json") {
		var input struct {
			UnitCode string `json:"unit_code"`
			UnitName string `json:"unit_name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
			return
		}
		code, name = input.UnitCode, input.UnitName
	} else {
		if err := r.ParseForm(); err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_form", nil)
			return
		}
		code = r.FormValue("unit_code")
		name = r.FormValue("unit_name")
	}

	v := validation.Violations{}
	validation.Required("unit_code", code, v)
	validation.Required("unit_name", name, v)
	if !v.Empty() {
		h.respondListError(w, r, ct, http.StatusBadRequest, "validation_failed", v)
		return
	}

	normalized := models.NormalizeUnitCode(code)
	prefix, number := models.DeriveUnitCode(normalized)
	unit := models.Unit{
		UserID:     uid,
		UnitCode:   normalized,
		UnitName:   strings.TrimSpace(name),
		UnitPrefix: prefix,
		UnitNumber: number,
	}
	if err := h.DB.Create(&unit).Error; err != nil {
		if models.IsUniqueViolation(err) {
			h.respondListError(w, r, ct, http.StatusConflict, "unit_already_added", nil)
			return
		}
		h.respondListError(w, r, ct, http.StatusInternalServerError, "unit_create_failed", nil)
		return
	}

	if strings.HasPrefix(ct, "application/json") || httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusCreated, unit)
		return
	}
	http.Redirect(w, r, "/app", statusSeeOther)
}

// Delete removes a unit owned by the current user.
func (h *UnitHandler) Delete(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 64)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	res := h.DB.Where("id = ? AND user_id = ?", id, uid).Delete(&models.Unit{})
	if res.Error != nil {
		h.respondListError(w, r, r.Header.Get("Content-Type"), http.StatusInternalServerError, "unit_delete_failed", nil)
		return
	}
	if res.RowsAffected == 0 {
		httpx.JSONError(w, http.StatusNotFound, "unit_not_found", nil)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]any{"deleted": true})
		return
	}
	http.Redirect(w, r, "/app", statusSeeOther)
}

func (h *UnitHandler) respondListError(w http.ResponseWriter, r *http.Request, ct string, status int, code string, details any) {
	if strings.HasPrefix(ct, "application/json") || httpx.WantsJSON(r) {
		httpx.JSONError(w, status, code, details)
		return
	}
	http.Redirect(w, r, "/app?unit_error="+code, statusSeeOther)
}
