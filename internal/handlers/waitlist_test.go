package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mactrack/mactrack/internal/email"
	"github.com/mactrack/mactrack/internal/models"
)

func newWaitlistFixture(t *testing.T) (*WaitlistHandler, *email.ConsoleMailer) {
	db := setupHandlerTestDB(t)
	mailer := &email.ConsoleMailer{DisableOutput: true}
	return NewWaitlistHandler(db, mailer), mailer
}

func TestWaitlistJoinCreatesSignupAndSendsWelcome(t *testing.T) {
	h, mailer := newWaitlistFixture(t)

	r := jsonRequest(http.MethodPost, "/waitlist", `{"name":"Ada","email":"Ada@Example.COM"}`, 0)
	w := httptest.NewRecorder()
	h.Join(w, r)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201; body %s", w.Code, w.Body.String())
	}
	var signup models.EmailSignup
	if err := h.DB.First(&signup).Error; err != nil {
		t.Fatalf("signup not stored: %v", err)
	}
	if signup.Email != "ada@example.com" {
		t.Errorf("email = %q, want lowercased", signup.Email)
	}
	if signup.Source != "landing" {
		t.Errorf("source = %q, want default landing", signup.Source)
	}
	sent := mailer.Sent()
	if len(sent) != 1 {
		t.Fatalf("sent %d mails, want 1", len(sent))
	}
	if sent[0].To.Address != "ada@example.com" {
		t.Errorf("welcome sent to %q", sent[0].To.Address)
	}
}

func TestWaitlistJoinDuplicateEmail(t *testing.T) {
	h, mailer := newWaitlistFixture(t)
	if err := h.DB.Create(&models.EmailSignup{Email: "ada@example.com", Source: "landing"}).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	r := jsonRequest(http.MethodPost, "/waitlist", `{"email":"ada@example.com"}`, 0)
	w := httptest.NewRecorder()
	h.Join(w, r)

	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", w.Code)
	}
	var resp struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Error != "already_registered" {
		t.Errorf("error = %q", resp.Error)
	}
	var count int64
	h.DB.Model(&models.EmailSignup{}).Count(&count)
	if count != 1 {
		t.Errorf("signup rows = %d, want 1", count)
	}
	if len(mailer.Sent()) != 0 {
		t.Errorf("duplicate join must not send mail")
	}
}

func TestWaitlistJoinRejectsInvalidEmail(t *testing.T) {
	h, mailer := newWaitlistFixture(t)

	for _, bad := range []string{"", "not-an-email", "missing@tld@x"} {
		r := jsonRequest(http.MethodPost, "/waitlist", `{"email":"`+bad+`"}`, 0)
		w := httptest.NewRecorder()
		h.Join(w, r)
		if w.Code != http.StatusBadRequest {
			t.Errorf("email %q: status = %d, want 400", bad, w.Code)
		}
	}
	var count int64
	h.DB.Model(&models.EmailSignup{}).Count(&count)
	if count != 0 {
		t.Errorf("signup rows = %d, want 0", count)
	}
	if len(mailer.Sent()) != 0 {
		t.Errorf("invalid join must not send mail")
	}
}
