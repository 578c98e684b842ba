package gate

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mactrack/mactrack/internal/auth"
	"github.com/mactrack/mactrack/internal/models"
)

func completeProfile(admin bool) *models.Profile {
	return &models.Profile{
		UserID:   1,
		FullName: "Jo Bloggs",
		Degree:   "Bachelor of Computer Science",
		Year:     2,
		Session:  1,
		IsAdmin:  admin,
	}
}

func TestDecide(t *testing.T) {
	incomplete := &models.Profile{UserID: 1, FullName: "Jo"}

	cases := []struct {
		name string
		in   Input
		want State
	}{
		{"no session", Input{}, Unauthenticated},
		{"no session ignores admin flag", Input{RequireAdmin: true}, Unauthenticated},
		{"session without profile", Input{SessionPresent: true}, NeedsOnboarding},
		{"session with incomplete profile", Input{SessionPresent: true, Profile: incomplete}, NeedsOnboarding},
		{"complete profile", Input{SessionPresent: true, Profile: completeProfile(false)}, Ready},
		{"admin screen as non-admin", Input{SessionPresent: true, Profile: completeProfile(false), RequireAdmin: true}, AdminDenied},
		{"admin screen as admin", Input{SessionPresent: true, Profile: completeProfile(true), RequireAdmin: true}, Ready},
		{"incomplete profile on admin screen", Input{SessionPresent: true, Profile: incomplete, RequireAdmin: true}, NeedsOnboarding},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := Decide(c.in); got != c.want {
				t.Fatalf("Decide(%+v) = %v want %v", c.in, got, c.want)
			}
		})
	}
}

func TestDecideIsPure(t *testing.T) {
	in := Input{SessionPresent: true, Profile: completeProfile(false)}
	first := Decide(in)
	for i := 0; i < 10; i++ {
		if got := Decide(in); got != first {
			t.Fatalf("Decide not deterministic: %v then %v", first, got)
		}
	}
}

type stubResolver struct {
	profile *models.Profile
	err     error
	calls   int
}

func (s *stubResolver) Resolve(_ context.Context, _ uint) (*models.Profile, error) {
	s.calls++
	return s.profile, s.err
}

func gatedRequest(t *testing.T, g *Gate, requireAdmin bool, authed bool) *httptest.ResponseRecorder {
	t.Helper()
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := ProfileFromContext(r.Context()); !ok {
			t.Error("profile missing from context in gated handler")
		}
		w.WriteHeader(http.StatusOK)
	})
	h := g.Require(requireAdmin)(next)
	req := httptest.NewRequest(http.MethodGet, "/app", nil)
	if authed {
		req = req.WithContext(auth.WithUserID(req.Context(), 1))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRequireRedirectsAnonymousToLogin(t *testing.T) {
	g := &Gate{Resolver: &stubResolver{}}
	rec := gatedRequest(t, g, false, false)
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/login" {
		t.Fatalf("got %d -> %q", rec.Code, rec.Header().Get("Location"))
	}
}

func TestRequireRedirectsIncompleteToOnboarding(t *testing.T) {
	g := &Gate{Resolver: &stubResolver{profile: &models.Profile{UserID: 1}}}
	rec := gatedRequest(t, g, false, true)
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/onboarding" {
		t.Fatalf("got %d -> %q", rec.Code, rec.Header().Get("Location"))
	}
}

func TestRequireResolverErrorRoutesToOnboarding(t *testing.T) {
	g := &Gate{Resolver: &stubResolver{err: errors.New("boom")}}
	rec := gatedRequest(t, g, false, true)
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/onboarding" {
		t.Fatalf("got %d -> %q", rec.Code, rec.Header().Get("Location"))
	}
}

func TestRequireAdminDenied(t *testing.T) {
	g := &Gate{Resolver: &stubResolver{profile: completeProfile(false)}}
	rec := gatedRequest(t, g, true, true)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", rec.Code)
	}
}

func TestRequireReadyPassesProfile(t *testing.T) {
	g := &Gate{Resolver: &stubResolver{profile: completeProfile(true)}}
	rec := gatedRequest(t, g, true, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
}

func TestRequireSessionSkipsCompletedOnboarding(t *testing.T) {
	g := &Gate{Resolver: &stubResolver{profile: completeProfile(false)}}
	h := g.RequireSession(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("onboarding handler should not run for complete profile")
	}))
	req := httptest.NewRequest(http.MethodGet, "/onboarding", nil)
	req = req.WithContext(auth.WithUserID(req.Context(), 1))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/app" {
		t.Fatalf("got %d -> %q", rec.Code, rec.Header().Get("Location"))
	}
}

func TestRequireSessionAllowsIncomplete(t *testing.T) {
	g := &Gate{Resolver: &stubResolver{profile: &models.Profile{UserID: 1}}}
	ran := false
	h := g.RequireSession(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { ran = true }))
	req := httptest.NewRequest(http.MethodGet, "/onboarding", nil)
	req = req.WithContext(auth.WithUserID(req.Context(), 1))
	h.ServeHTTP(httptest.NewRecorder(), req)
	if !ran {
		t.Fatal("onboarding handler did not run for incomplete profile")
	}
}
