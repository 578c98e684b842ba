package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func sessionRequest(t *testing.T, uid uint) *http.Request {
	t.Helper()
	rec := httptest.NewRecorder()
	CreateSession(rec, uid)
	cookies := rec.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("no session cookie set")
	}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	return req
}

func TestSessionRoundTrip(t *testing.T) {
	req := sessionRequest(t, 42)
	uid, ok := ParseSession(req)
	if !ok || uid != 42 {
		t.Fatalf("expected uid=42 ok=true, got uid=%d ok=%v", uid, ok)
	}
}

func TestParseSessionRejectsTampering(t *testing.T) {
	rec := httptest.NewRecorder()
	CreateSession(rec, 7)
	c := rec.Result().Cookies()[0]

	parts := strings.SplitN(c.Value, ".", 2)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: c.Name, Value: "9999." + parts[1]})
	if _, ok := ParseSession(req); ok {
		t.Fatal("expected tampered session to be rejected")
	}
}

func TestMiddlewareInjectsUserID(t *testing.T) {
	var got uint
	var ok bool
	h := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, ok = UserIDFromContext(r.Context())
	}))
	h.ServeHTTP(httptest.NewRecorder(), sessionRequest(t, 5))
	if !ok || got != 5 {
		t.Fatalf("expected uid=5 in context, got uid=%d ok=%v", got, ok)
	}
}

func TestRequireAuthRedirectsAnonymous(t *testing.T) {
	h := Middleware(RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run")
	})))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/app", nil))
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303 got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/login" {
		t.Fatalf("expected redirect to /login got %s", loc)
	}
}

func TestRequireAuthJSON401(t *testing.T) {
	h := Middleware(RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})))
	req := httptest.NewRequest(http.MethodGet, "/app", nil)
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
}

func TestRequireAuthVerifierRejectsDeletedUser(t *testing.T) {
	SetUserVerifier(func(_ context.Context, uid uint) bool { return false })
	defer SetUserVerifier(nil)

	h := Middleware(RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run for deleted user")
	})))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, sessionRequest(t, 3))
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303 got %d", rec.Code)
	}
}
