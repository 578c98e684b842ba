// Package gate decides which top-level screen a request may reach based on
// session and profile state. The decision itself is a pure function; the
// Gate type wraps it as HTTP middleware that loads the profile and routes
// denied requests to the right place.
package gate

import "github.com/mactrack/mactrack/internal/models"

// State is the outcome of a gate evaluation for one request.
type State int

const (
	// Loading is the initial state before session and profile have resolved.
	Loading State = iota
	// Unauthenticated: no session; show the login screen.
	Unauthenticated
	// NeedsOnboarding: session present but no profile or an incomplete one.
	NeedsOnboarding
	// AdminDenied: the screen requires admin and the profile is not admin.
	AdminDenied
	// Ready: render the requested screen.
	Ready
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Unauthenticated:
		return "unauthenticated"
	case NeedsOnboarding:
		return "needs-onboarding"
	case AdminDenied:
		return "admin-denied"
	case Ready:
		return "ready"
	}
	return "unknown"
}

// Input captures everything the decision depends on.
type Input struct {
	SessionPresent bool
	Profile        *models.Profile // nil when absent or load failed
	RequireAdmin   bool
}

// Decide maps gate inputs to a terminal state. It is pure: the same inputs
// always yield the same state. An incomplete profile wins over an admin
// check; a missing session wins over everything.
func Decide(in Input) State {
	if !in.SessionPresent {
		return Unauthenticated
	}
	if in.Profile == nil || !in.Profile.Complete() {
		return NeedsOnboarding
	}
	if in.RequireAdmin && !in.Profile.IsAdmin {
		return AdminDenied
	}
	return Ready
}
