// Package server assembles the HTTP application: routes, middleware and
// the session/profile gate that fronts every protected screen.
package server

import (
	"net/http"

	"gorm.io/gorm"

	"github.com/mactrack/mactrack/internal/auth"
	"github.com/mactrack/mactrack/internal/email"
	"github.com/mactrack/mactrack/internal/gate"
	"github.com/mactrack/mactrack/internal/handlers"
	"github.com/mactrack/mactrack/internal/httpx"
	"github.com/mactrack/mactrack/internal/middleware"
	"github.com/mactrack/mactrack/internal/services"
	"github.com/mactrack/mactrack/internal/view"
)

// App is the main application handler with all routes configured.
type App struct {
	mux      *http.ServeMux
	db       *gorm.DB
	gate     *gate.Gate
	profiles *services.ProfileLoader
}

// NewApp wires the handlers, the profile loader and the gate into a
// ready-to-serve application.
func NewApp(db *gorm.DB, mailer email.Mailer) *App {
	profiles := services.NewProfileLoader(db)
	g := &gate.Gate{
		Resolver: profiles,
		RenderDenied: func(w http.ResponseWriter, r *http.Request) {
			if err := view.Render(w, r, "403.html", map[string]any{"IsLoggedIn": true}); err != nil {
				if _, werr := w.Write([]byte("Access Denied")); werr != nil {
					_ = werr
				}
			}
		},
	}
	app := &App{mux: http.NewServeMux(), db: db, gate: g, profiles: profiles}

	// Templates show the admin nav entry only for admins. The resolver
	// callback keeps the view package free of a gate import.
	view.SetIsAdminResolver(func(r *http.Request) bool {
		uid, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			return false
		}
		profile, err := profiles.Resolve(r.Context(), uid)
		return err == nil && profile != nil && profile.IsAdmin
	})

	app.setupRoutes(mailer)
	return app
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	handler := auth.Middleware(middleware.Prefs(a.mux))
	handler.ServeHTTP(w, r)
}

func (a *App) setupRoutes(mailer email.Mailer) {
	profiles := a.profiles

	ah := handlers.NewAuthHandler(a.db)
	wh := handlers.NewWaitlistHandler(a.db, mailer)
	oh := handlers.NewOnboardingHandler(profiles)
	dh := handlers.NewDashboardHandler(a.db, profiles)
	uh := handlers.NewUnitHandler(a.db)
	sh := handlers.NewAssignmentHandler(a.db)
	ch := handlers.NewCalendarHandler(a.db)
	adh := handlers.NewAdminHandler(services.NewAdminService(a.db))

	// Public routes
	a.mux.HandleFunc("GET /", handlers.Landing)
	a.mux.HandleFunc("POST /waitlist", wh.Join)
	a.mux.HandleFunc("GET /login", ah.Login)
	a.mux.HandleFunc("POST /login", ah.Login)
	a.mux.HandleFunc("GET /signup", ah.Signup)
	a.mux.HandleFunc("POST /signup", ah.Signup)
	a.mux.HandleFunc("POST /logout", ah.Logout)
	a.mux.Handle("GET /api/session", auth.RequireAuth(http.HandlerFunc(ah.Session)))
	a.mux.HandleFunc("GET /healthz", a.healthz)

	// Onboarding: session required, incomplete profile allowed
	a.mux.Handle("GET /onboarding", a.gate.RequireSession(http.HandlerFunc(oh.Show)))
	a.mux.Handle("POST /onboarding", a.gate.RequireSession(http.HandlerFunc(oh.Complete)))

	// Gated app screens: complete profile required
	requireUser := a.gate.Require(false)
	a.mux.Handle("GET /app", requireUser(http.HandlerFunc(dh.Home)))
	a.mux.Handle("POST /app/profile", requireUser(http.HandlerFunc(dh.UpdateProfile)))

	a.mux.Handle("GET /app/units", requireUser(http.HandlerFunc(uh.List)))
	a.mux.Handle("POST /app/units", requireUser(http.HandlerFunc(uh.Create)))
	a.mux.Handle("POST /app/units/{id}/delete", requireUser(http.HandlerFunc(uh.Delete)))

	a.mux.Handle("GET /app/assignments", requireUser(http.HandlerFunc(sh.List)))
	a.mux.Handle("POST /app/assignments", requireUser(http.HandlerFunc(sh.Create)))
	a.mux.Handle("POST /app/assignments/{id}", requireUser(http.HandlerFunc(sh.Update)))
	a.mux.Handle("POST /app/assignments/{id}/status", requireUser(http.HandlerFunc(sh.UpdateStatus)))
	a.mux.Handle("POST /app/assignments/{id}/delete", requireUser(http.HandlerFunc(sh.Delete)))

	a.mux.Handle("GET /app/calendar", requireUser(http.HandlerFunc(ch.List)))
	a.mux.Handle("POST /app/calendar", requireUser(http.HandlerFunc(ch.Create)))
	a.mux.Handle("POST /app/calendar/{id}/delete", requireUser(http.HandlerFunc(ch.Delete)))

	// Admin console: complete profile + admin flag required
	requireAdmin := a.gate.Require(true)
	a.mux.Handle("GET /admin", requireAdmin(http.HandlerFunc(adh.Overview)))

	// Static files
	a.mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir("static"))))
}

func (a *App) healthz(w http.ResponseWriter, r *http.Request) {
	sqlDB, err := a.db.DB()
	if err == nil {
		err = sqlDB.PingContext(r.Context())
	}
	if err != nil {
		httpx.JSONError(w, http.StatusServiceUnavailable, "db_unavailable", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"status": "ok"})
}
