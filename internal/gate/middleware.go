package gate

import (
	"context"
	"log"
	"net/http"

	"github.com/mactrack/mactrack/internal/auth"
	"github.com/mactrack/mactrack/internal/httpx"
	"github.com/mactrack/mactrack/internal/models"
)

// ProfileResolver loads (creating if absent) the profile for a user id.
type ProfileResolver interface {
	Resolve(ctx context.Context, userID uint) (*models.Profile, error)
}

// Gate evaluates the session/profile decision per request and routes
// accordingly. It subsumes the per-screen auth checks: handlers behind
// Require always find a complete profile in the request context.
type Gate struct {
	Resolver ProfileResolver
	// RenderDenied renders the admin-denied screen; when nil a plain 403
	// is written.
	RenderDenied func(w http.ResponseWriter, r *http.Request)
}

type profileCtxKey struct{}

// WithProfile stores the resolved profile in context.
func WithProfile(ctx context.Context, p *models.Profile) context.Context {
	return context.WithValue(ctx, profileCtxKey{}, p)
}

// ProfileFromContext extracts the profile resolved by the gate middleware.
func ProfileFromContext(ctx context.Context) (*models.Profile, bool) {
	p, ok := ctx.Value(profileCtxKey{}).(*models.Profile)
	return p, ok && p != nil
}

// evaluate resolves the inputs for Decide from the request. A resolver
// error is treated as "no profile": the user is routed to onboarding
// rather than shown a fatal error.
func (g *Gate) evaluate(r *http.Request, requireAdmin bool) (State, *models.Profile) {
	uid, ok := auth.UserIDFromContext(r.Context())
	if !ok || uid == 0 {
		return Decide(Input{SessionPresent: false}), nil
	}
	profile, err := g.Resolver.Resolve(r.Context(), uid)
	if err != nil {
		log.Printf("gate: resolving profile for user %d: %v", uid, err)
		profile = nil
	}
	return Decide(Input{SessionPresent: true, Profile: profile, RequireAdmin: requireAdmin}), profile
}

// Require gates a screen. Unauthenticated requests go to /login,
// incomplete profiles to /onboarding, failed admin checks to the denied
// screen. On Ready the profile is put in context and next runs.
func (g *Gate) Require(requireAdmin bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			state, profile := g.evaluate(r, requireAdmin)
			switch state {
			case Unauthenticated:
				if httpx.WantsJSON(r) {
					httpx.JSONError(w, http.StatusUnauthorized, "unauthenticated", nil)
					return
				}
				http.Redirect(w, r, "/login", http.StatusSeeOther)
			case NeedsOnboarding:
				if httpx.WantsJSON(r) {
					httpx.JSONError(w, http.StatusForbidden, "needs_onboarding", nil)
					return
				}
				http.Redirect(w, r, "/onboarding", http.StatusSeeOther)
			case AdminDenied:
				if httpx.WantsJSON(r) {
					httpx.JSONError(w, http.StatusForbidden, "admin_only", nil)
					return
				}
				w.WriteHeader(http.StatusForbidden)
				if g.RenderDenied != nil {
					g.RenderDenied(w, r)
					return
				}
				if _, err := w.Write([]byte("Access Denied")); err != nil {
					_ = err
				}
			case Ready:
				next.ServeHTTP(w, r.WithContext(WithProfile(r.Context(), profile)))
			default:
				// Loading never escapes evaluate; treat as server error.
				httpx.JSONError(w, http.StatusInternalServerError, "gate_error", nil)
			}
		})
	}
}

// RequireSession gates the onboarding screen itself: a session must exist
// and a profile row is resolved (created if missing), but completeness is
// not required. A profile that is already complete skips onboarding.
func (g *Gate) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		uid, ok := auth.UserIDFromContext(r.Context())
		if !ok || uid == 0 {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		profile, err := g.Resolver.Resolve(r.Context(), uid)
		if err != nil {
			log.Printf("gate: resolving profile for user %d: %v", uid, err)
			httpx.JSONError(w, http.StatusInternalServerError, "profile_load_failed", nil)
			return
		}
		if profile.Complete() && r.Method == http.MethodGet {
			http.Redirect(w, r, "/app", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithProfile(r.Context(), profile)))
	})
}
