package models

import (
	"errors"
	"testing"
	"time"
)

func TestDeriveUnitCode(t *testing.T) {
	cases := []struct {
		code, prefix, number string
	}{
		{"MATH1007", "MATH", "1007"},
		{"math1007", "MATH", "1007"},
		{" comp2050 ", "COMP", "2050"},
		{"STAT170", "STAT", "170"},
		{"MATH", "MATH", ""},
		{"1007", "", "1007"},
		{"", "", ""},
	}
	for _, c := range cases {
		prefix, number := DeriveUnitCode(c.code)
		if prefix != c.prefix || number != c.number {
			t.Errorf("DeriveUnitCode(%q) = %q,%q want %q,%q", c.code, prefix, number, c.prefix, c.number)
		}
	}
}

func TestDeriveUnitCodeIdempotent(t *testing.T) {
	for _, code := range []string{"MATH1007", "COMP2050", "ABC", "123", "PSY104"} {
		prefix, number := DeriveUnitCode(code)
		p2, _ := DeriveUnitCode(prefix)
		_, n2 := DeriveUnitCode(number)
		if p2 != prefix {
			t.Errorf("prefix derivation not idempotent for %q: %q -> %q", code, prefix, p2)
		}
		if n2 != number {
			t.Errorf("number derivation not idempotent for %q: %q -> %q", code, number, n2)
		}
	}
}

func TestDeriveUnitCodeRecomposes(t *testing.T) {
	// prefix + number == code for any code of the form letters-then-digits
	for _, code := range []string{"MATH1007", "COMP2050", "STAT170", "A1"} {
		prefix, number := DeriveUnitCode(code)
		if prefix+number != code {
			t.Errorf("prefix+number = %q want %q", prefix+number, code)
		}
	}
}

func TestProfileComplete(t *testing.T) {
	complete := Profile{FullName: "Jo Bloggs", Degree: "Bachelor of Science", Year: 2, Session: 1}
	if !complete.Complete() {
		t.Fatal("expected profile to be complete")
	}
	cases := []Profile{
		{Degree: "BSc", Year: 1, Session: 1},
		{FullName: "Jo", Year: 1, Session: 1},
		{FullName: "Jo", Degree: "BSc", Session: 1},
		{FullName: "Jo", Degree: "BSc", Year: 1},
		{},
	}
	for i, p := range cases {
		if p.Complete() {
			t.Errorf("case %d: expected incomplete", i)
		}
	}
	// gender is optional and must not affect completeness
	complete.Gender = ""
	if !complete.Complete() {
		t.Fatal("gender must not be required")
	}
}

func TestDisplayStatus(t *testing.T) {
	now := time.Date(2024, 9, 21, 10, 0, 0, 0, time.UTC)
	past := now.Add(-24 * time.Hour)
	future := now.Add(24 * time.Hour)

	if got := DisplayStatus(StatusPending, past, now); got != StatusOverdue {
		t.Errorf("past-due pending: got %q want %q", got, StatusOverdue)
	}
	if got := DisplayStatus(StatusInProgress, past, now); got != StatusOverdue {
		t.Errorf("past-due in-progress: got %q want %q", got, StatusOverdue)
	}
	if got := DisplayStatus(StatusSubmitted, past, now); got != StatusSubmitted {
		t.Errorf("submitted never overdue: got %q", got)
	}
	if got := DisplayStatus(StatusPending, future, now); got != StatusPending {
		t.Errorf("future pending: got %q", got)
	}
}

func TestCombineDateTime(t *testing.T) {
	got, err := CombineDateTime("2024-09-20", "14:30")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Date(2024, 9, 20, 14, 30, 0, 0, time.Local)
	if !got.Equal(want) {
		t.Fatalf("got %v want %v", got, want)
	}
	if _, err := CombineDateTime("20/09/2024", "14:30"); err == nil {
		t.Fatal("expected error for bad date format")
	}
}

func TestIsUniqueViolation(t *testing.T) {
	if !IsUniqueViolation(errors.New("UNIQUE constraint failed: email_signups.email")) {
		t.Error("sqlite message not detected")
	}
	if !IsUniqueViolation(errors.New(`duplicate key value violates unique constraint "unique_email"`)) {
		t.Error("postgres message not detected")
	}
	if IsUniqueViolation(errors.New("connection refused")) {
		t.Error("unrelated error misclassified")
	}
	if IsUniqueViolation(nil) {
		t.Error("nil misclassified")
	}
}
