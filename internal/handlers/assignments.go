package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/mactrack/mactrack/internal/auth"
	"github.com/mactrack/mactrack/internal/httpx"
	"github.com/mactrack/mactrack/internal/models"
	"github.com/mactrack/mactrack/internal/validation"
)

// AssignmentHandler manages the assignment tracker screen.
type AssignmentHandler struct{ DB *gorm.DB }

func NewAssignmentHandler(db *gorm.DB) *AssignmentHandler { return &AssignmentHandler{DB: db} }

type assignmentInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	UnitID      string `json:"unit_id"`
	DueDate     string `json:"due_date"`
	DueTime     string `json:"due_time"`
	Priority    string `json:"priority"`
	Status      string `json:"status"`
}

func parseAssignmentInput(r *http.Request) (assignmentInput, error) {
	var in assignmentInput
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		err := json.NewDecoder(r.Body).Decode(&in)
		return in, err
	}
	if err := r.ParseForm(); err != nil {
		return in, err
	}
	in.Title = r.FormValue("title")
	in.Description = r.FormValue("description")
	in.UnitID = r.FormValue("unit_id")
	in.DueDate = r.FormValue("due_date")
	in.DueTime = r.FormValue("due_time")
	in.Priority = r.FormValue("priority")
	in.Status = r.FormValue("status")
	return in, nil
}

// assignmentView pairs a stored assignment with its display-time status.
type assignmentView struct {
	models.Assignment
	DisplayStatus string `json:"display_status"`
}

func (h *AssignmentHandler) load(uid uint) ([]assignmentView, error) {
	var rows []models.Assignment
	if err := h.DB.Preload("Unit").Where("user_id = ?", uid).Order("due_at ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	now := time.Now()
	views := make([]assignmentView, 0, len(rows))
	for _, a := range rows {
		views = append(views, assignmentView{
			Assignment:    a,
			DisplayStatus: models.DisplayStatus(a.Status, a.DueAt, now),
		})
	}
	return views, nil
}

// List renders the tracker ordered by due date, soonest first.
func (h *AssignmentHandler) List(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	views, err := h.load(uid)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "assignments_load_failed", nil)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]any{"items": views})
		return
	}
	var units []models.Unit
	h.DB.Where("user_id = ?", uid).Order("unit_code ASC").Find(&units)
	renderTemplate(w, r, "assignments", map[string]any{
		"Assignments": views,
		"Units":       units,
		"IsLoggedIn":  true,
	})
}

// Create adds an assignment. The due instant is combined from separate
// date and time fields as entered in the user's local timezone.
func (h *AssignmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	in, err := parseAssignmentInput(r)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_request", nil)
		return
	}

	v := validation.Violations{}
	validation.Required("title", in.Title, v)
	validation.Required("unit_id", in.UnitID, v)
	validation.Required("due_date", in.DueDate, v)
	validation.Required("due_time", in.DueTime, v)
	if !v.Empty() {
		h.respondError(w, r, http.StatusBadRequest, "validation_failed", v)
		return
	}

	dueAt, err := models.CombineDateTime(in.DueDate, in.DueTime)
	if err != nil {
		h.respondError(w, r, http.StatusBadRequest, "invalid_due_date", nil)
		return
	}

	unitID, err := h.resolveUnit(uid, in.UnitID)
	if err != nil {
		h.respondError(w, r, http.StatusBadRequest, "invalid_unit", nil)
		return
	}

	priority := in.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}
	if !models.ValidPriority(priority) {
		h.respondError(w, r, http.StatusBadRequest, "invalid_priority", nil)
		return
	}
	status := in.Status
	if status == "" {
		status = models.StatusPending
	}
	if !models.ValidStatus(status) {
		h.respondError(w, r, http.StatusBadRequest, "invalid_status", nil)
		return
	}

	a := models.Assignment{
		UserID:      uid,
		UnitID:      unitID,
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		DueAt:       dueAt,
		Priority:    priority,
		Status:      status,
	}
	if err := h.DB.Create(&a).Error; err != nil {
		h.respondError(w, r, http.StatusInternalServerError, "assignment_create_failed", nil)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusCreated, a)
		return
	}
	http.Redirect(w, r, "/app/assignments", statusSeeOther)
}

// Update edits an existing assignment's fields. Blank fields are left
// unchanged except date+time, which must come as a pair when present.
func (h *AssignmentHandler) Update(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	a, ok := h.find(w, r, uid)
	if !ok {
		return
	}
	in, err := parseAssignmentInput(r)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_request", nil)
		return
	}

	if t := strings.TrimSpace(in.Title); t != "" {
		a.Title = t
	}
	if in.Description != "" {
		a.Description = strings.TrimSpace(in.Description)
	}
	if in.UnitID != "" {
		unitID, err := h.resolveUnit(uid, in.UnitID)
		if err != nil {
			h.respondError(w, r, http.StatusBadRequest, "invalid_unit", nil)
			return
		}
		a.UnitID = unitID
	}
	if in.DueDate != "" || in.DueTime != "" {
		dueAt, err := models.CombineDateTime(in.DueDate, in.DueTime)
		if err != nil {
			h.respondError(w, r, http.StatusBadRequest, "invalid_due_date", nil)
			return
		}
		a.DueAt = dueAt
	}
	if in.Priority != "" {
		if !models.ValidPriority(in.Priority) {
			h.respondError(w, r, http.StatusBadRequest, "invalid_priority", nil)
			return
		}
		a.Priority = in.Priority
	}
	if in.Status != "" {
		if !models.ValidStatus(in.Status) {
			h.respondError(w, r, http.StatusBadRequest, "invalid_status", nil)
			return
		}
		a.Status = in.Status
	}

	if err := h.DB.Save(a).Error; err != nil {
		h.respondError(w, r, http.StatusInternalServerError, "assignment_update_failed", nil)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, a)
		return
	}
	http.Redirect(w, r, "/app/assignments", statusSeeOther)
}

// UpdateStatus changes only the stored status, e.g. marking submitted.
func (h *AssignmentHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	a, ok := h.find(w, r, uid)
	if !ok {
		return
	}
	in, err := parseAssignmentInput(r)
	if err != nil || !models.ValidStatus(in.Status) {
		h.respondError(w, r, http.StatusBadRequest, "invalid_status", nil)
		return
	}
	if err := h.DB.Model(a).Update("status", in.Status).Error; err != nil {
		h.respondError(w, r, http.StatusInternalServerError, "assignment_update_failed", nil)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, a)
		return
	}
	http.Redirect(w, r, "/app/assignments", statusSeeOther)
}

func (h *AssignmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 64)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	res := h.DB.Where("id = ? AND user_id = ?", id, uid).Delete(&models.Assignment{})
	if res.Error != nil {
		h.respondError(w, r, http.StatusInternalServerError, "assignment_delete_failed", nil)
		return
	}
	if res.RowsAffected == 0 {
		httpx.JSONError(w, http.StatusNotFound, "assignment_not_found", nil)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]any{"deleted": true})
		return
	}
	http.Redirect(w, r, "/app/assignments", statusSeeOther)
}

// resolveUnit parses the submitted unit id and checks the unit belongs to
// the user. Returns nil for an empty value.
func (h *AssignmentHandler) resolveUnit(uid uint, raw string) (*uint, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	id64, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return nil, err
	}
	var unit models.Unit
	if err := h.DB.Where("id = ? AND user_id = ?", id64, uid).First(&unit).Error; err != nil {
		return nil, err
	}
	id := unit.ID
	return &id, nil
}

func (h *AssignmentHandler) find(w http.ResponseWriter, r *http.Request, uid uint) (*models.Assignment, bool) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 64)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return nil, false
	}
	var a models.Assignment
	if err := h.DB.Where("id = ? AND user_id = ?", id, uid).First(&a).Error; err != nil {
		httpx.JSONError(w, http.StatusNotFound, "assignment_not_found", nil)
		return nil, false
	}
	return &a, true
}

func (h *AssignmentHandler) respondError(w http.ResponseWriter, r *http.Request, status int, code string, details any) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") || httpx.WantsJSON(r) {
		httpx.JSONError(w, status, code, details)
		return
	}
	http.Redirect(w, r, "/app/assignments?error="+code, statusSeeOther)
}
