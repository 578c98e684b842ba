package models

import (
	"strings"
	"time"
)

// User & auth related models. The auth identity (email + password hash) is
// kept separate from the academic Profile, which holds everything the app
// itself owns about a student.
type User struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Email    string `gorm:"unique;not null;index" json:"email"`
	Password string `gorm:"not null" json:"-"` // bcrypt hash
	// FullName is signup metadata; the profile's FullName is authoritative
	// once onboarding has run.
	FullName  string    `json:"full_name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Profile *Profile `gorm:"foreignKey:UserID" json:"profile,omitempty"`
}

// Profile is one-to-one with User. A row is created lazily on first
// authenticated request; the gate treats it as incomplete until onboarding
// fills the required fields.
type Profile struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	FullName  string    `json:"full_name"`
	Gender    string    `json:"gender"`
	Degree    string    `json:"degree"`
	Year      int       `json:"year"`    // 1..4, 0 = unset
	Session   int       `json:"session"` // academic term 1..3, 0 = unset
	IsAdmin   bool      `json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Complete reports whether the onboarding-required fields are all set.
func (p *Profile) Complete() bool {
	return p.FullName != "" && p.Degree != "" && p.Year != 0 && p.Session != 0
}

// EmailSignup captures a waitlist entry from the public marketing pages.
// Never read back by the app; the unique email constraint backs the
// "Already Registered" flow.
type EmailSignup struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `json:"name"`
	Email     string    `gorm:"unique;not null" json:"email"`
	Source    string    `json:"source"` // e.g. "hero-form", "cta-form"
	CreatedAt time.Time `json:"created_at"`
}

// IsUniqueViolation reports whether err is a unique-constraint violation.
// Both the postgres driver ("duplicate key value violates unique
// constraint") and the sqlite driver ("UNIQUE constraint failed") are
// matched on message content, as neither surfaces a portable code via gorm.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}

// CombineDateTime merges a date ("2006-01-02") and a clock time ("15:04")
// submitted as separate form fields into a single local instant.
func CombineDateTime(date, clock string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02 15:04", date+" "+clock, time.Local)
}
