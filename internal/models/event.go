package models

import "time"

// Calendar event types.
const (
	EventGeneral    = "general"
	EventLecture    = "lecture"
	EventTutorial   = "tutorial"
	EventExam       = "exam"
	EventAssignment = "assignment"
)

func ValidEventType(t string) bool {
	switch t {
	case EventGeneral, EventLecture, EventTutorial, EventExam, EventAssignment:
		return true
	}
	return false
}

type CalendarEvent struct {
	ID     uint  `gorm:"primaryKey" json:"id"`
	UserID uint  `gorm:"not null;index" json:"user_id"`
	UnitID *uint `gorm:"index" json:"unit_id"`
	Unit   *Unit `gorm:"foreignKey:UnitID" json:"unit,omitempty"`

	Title       string    `gorm:"not null" json:"title"`
	Description string    `json:"description"`
	StartAt     time.Time `gorm:"not null;index" json:"start_at"`
	EndAt       time.Time `gorm:"not null" json:"end_at"`
	Location    string    `json:"location"`
	EventType   string    `gorm:"not null;default:'general'" json:"event_type"`
	IsRecurring bool      `json:"is_recurring"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
