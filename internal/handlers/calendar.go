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

// CalendarHandler manages the calendar screen.
type CalendarHandler struct{ DB *gorm.DB }

func NewCalendarHandler(db *gorm.DB) *CalendarHandler { return &CalendarHandler{DB: db} }

type eventInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	UnitID      string `json:"unit_id"`
	StartDate   string `json:"start_date"`
	StartTime   string `json:"start_time"`
	EndDate     string `json:"end_date"`
	EndTime     string `json:"end_time"`
	Location    string `json:"location"`
	EventType   string `json:"event_type"`
	IsRecurring bool   `json:"is_recurring"`
}

func parseEventInput(r *http.Request) (eventInput, error) {
	var in eventInput
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
	in.StartDate = r.FormValue("start_date")
	in.StartTime = r.FormValue("start_time")
	in.EndDate = r.FormValue("end_date")
	in.EndTime = r.FormValue("end_time")
	in.Location = r.FormValue("location")
	in.EventType = r.FormValue("event_type")
	in.IsRecurring = r.FormValue("is_recurring") == "on" || r.FormValue("is_recurring") == "true"
	return in, nil
}

// List renders upcoming events ordered by start time.
func (h *CalendarHandler) List(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	var events []models.CalendarEvent
	if err := h.DB.Preload("Unit").Where("user_id = ?", uid).Order("start_at ASC").Find(&events).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "events_load_failed", nil)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]any{"items": events})
		return
	}
	var units []models.Unit
	h.DB.Where("user_id = ?", uid).Order("unit_code ASC").Find(&units)
	renderTemplate(w, r, "calendar", map[string]any{
		"Events":     events,
		"Units":      units,
		"IsLoggedIn": true,
		"DeleteErr":  r.URL.Query().Get("error") == "event_delete_failed",
	})
}

// Create adds a calendar event. Start and end instants come as separate
// date and time fields; the end must not precede the start.
func (h *CalendarHandler) Create(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	in, err := parseEventInput(r)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_request", nil)
		return
	}

	v := validation.Violations{}
	validation.Required("title", in.Title, v)
	validation.Required("start_date", in.StartDate, v)
	validation.Required("start_time", in.StartTime, v)
	validation.Required("end_date", in.EndDate, v)
	validation.Required("end_time", in.EndTime, v)
	if !v.Empty() {
		h.respondError(w, r, http.StatusBadRequest, "validation_failed", v)
		return
	}

	startAt, err := models.CombineDateTime(in.StartDate, in.StartTime)
	if err != nil {
		h.respondError(w, r, http.StatusBadRequest, "invalid_start", nil)
		return
	}
	endAt, err := models.CombineDateTime(in.EndDate, in.EndTime)
	if err != nil {
		h.respondError(w, r, http.StatusBadRequest, "invalid_end", nil)
		return
	}
	if endAt.Before(startAt) {
		h.respondError(w, r, http.StatusBadRequest, "end_before_start", nil)
		return
	}

	eventType := in.EventType
	if eventType == "" {
		eventType = models.EventGeneral
	}
	if !models.ValidEventType(eventType) {
		h.respondError(w, r, http.StatusBadRequest, "invalid_event_type", nil)
		return
	}

	var unitID *uint
	if raw := strings.TrimSpace(in.UnitID); raw != "" {
		id64, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			h.respondError(w, r, http.StatusBadRequest, "invalid_unit", nil)
			return
		}
		var unit models.Unit
		if err := h.DB.Where("id = ? AND user_id = ?", id64, uid).First(&unit).Error; err != nil {
			h.respondError(w, r, http.StatusBadRequest, "invalid_unit", nil)
			return
		}
		unitID = &unit.ID
	}

	ev := models.CalendarEvent{
		UserID:      uid,
		UnitID:      unitID,
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		StartAt:     startAt,
		EndAt:       endAt,
		Location:    strings.TrimSpace(in.Location),
		EventType:   eventType,
		IsRecurring: in.IsRecurring,
	}
	if err := h.DB.Create(&ev).Error; err != nil {
		h.respondError(w, r, http.StatusInternalServerError, "event_create_failed", nil)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusCreated, ev)
		return
	}
	http.Redirect(w, r, "/app/calendar", statusSeeOther)
}

// Delete removes an event owned by the current user. A failed delete
// leaves the list untouched and reports the error.
func (h *CalendarHandler) Delete(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 64)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	res := h.DB.Where("id = ? AND user_id = ?", id, uid).Delete(&models.CalendarEvent{})
	if res.Error != nil {
		h.respondError(w, r, http.StatusInternalServerError, "event_delete_failed", nil)
		return
	}
	if res.RowsAffected == 0 {
		if httpx.WantsJSON(r) {
			httpx.JSONError(w, http.StatusNotFound, "event_not_found", nil)
			return
		}
		http.Redirect(w, r, "/app/calendar?error=event_delete_failed", statusSeeOther)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]any{"deleted": true})
		return
	}
	http.Redirect(w, r, "/app/calendar", statusSeeOther)
}

func (h *CalendarHandler) respondError(w http.ResponseWriter, r *http.Request, status int, code string, details any) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") || httpx.WantsJSON(r) {
		httpx.JSONError(w, status, code, details)
		return
	}
	http.Redirect(w, r, "/app/calendar?error="+code, statusSeeOther)
}
