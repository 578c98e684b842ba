package models

import "time"

// Assignment priorities.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Assignment statuses. StatusOverdue is only ever stored when the user sets
// it explicitly; past-due classification for display happens in
// DisplayStatus.
const (
	StatusPending    = "pending"
	StatusInProgress = "in-progress"
	StatusSubmitted  = "submitted"
	StatusOverdue    = "overdue"
)

func ValidPriority(p string) bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

func ValidStatus(s string) bool {
	return s == StatusPending || s == StatusInProgress || s == StatusSubmitted || s == StatusOverdue
}

type Assignment struct {
	ID     uint  `gorm:"primaryKey" json:"id"`
	UserID uint  `gorm:"not null;index" json:"user_id"`
	UnitID *uint `gorm:"index" json:"unit_id"`
	Unit   *Unit `gorm:"foreignKey:UnitID" json:"unit,omitempty"`

	Title       string    `gorm:"not null" json:"title"`
	Description string    `json:"description"`
	DueAt       time.Time `gorm:"not null;index" json:"due_at"`
	Priority    string    `gorm:"not null;default:'medium'" json:"priority"`
	Status      string    `gorm:"not null;default:'pending'" json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// DisplayStatus classifies an assignment for rendering. A submitted
// assignment is never shown as overdue; anything else past its due instant
// is, regardless of what is stored. The stored status is left untouched.
func DisplayStatus(stored string, dueAt, now time.Time) string {
	if stored == StatusSubmitted {
		return stored
	}
	if now.After(dueAt) {
		return StatusOverdue
	}
	return stored
}
