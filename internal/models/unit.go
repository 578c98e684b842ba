package models

import (
	"regexp"
	"strings"
	"time"
)

// Unit is a course the student is enrolled in, e.g. MATH1007.
type Unit struct {
	ID     uint `gorm:"primaryKey" json:"id"`
	UserID uint `gorm:"not null;index:idx_user_unit_code,unique,priority:1" json:"user_id"`
	// Code is stored uppercased; one enrolment per code per user.
	UnitCode string `gorm:"size:20;not null;index:idx_user_unit_code,unique,priority:2" json:"unit_code"`
	UnitName string `gorm:"not null" json:"unit_name"`
	// Prefix/Number are derived from UnitCode on every write, never trusted
	// from input.
	UnitPrefix string    `json:"unit_prefix"`
	UnitNumber string    `json:"unit_number"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

var (
	trailingDigits = regexp.MustCompile(`[0-9]+$`)
	leadingLetters = regexp.MustCompile(`^[A-Za-z]+`)
)

// NormalizeUnitCode trims and uppercases a raw unit code.
func NormalizeUnitCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// DeriveUnitCode splits a normalized unit code into its letter prefix and
// numeric part (MATH1007 -> MATH, 1007). The derivation is idempotent:
// applying it to either output yields that output unchanged.
func DeriveUnitCode(code string) (prefix, number string) {
	c := NormalizeUnitCode(code)
	prefix = trailingDigits.ReplaceAllString(c, "")
	number = leadingLetters.ReplaceAllString(c, "")
	return prefix, number
}
