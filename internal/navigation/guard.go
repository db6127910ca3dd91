package navigation

import "github.com/tastetrail/tastetrail/internal/core/domain"

// AuthState is the authenticated guard's state for one evaluation.
type AuthState int

const (
	StateLoading AuthState = iota
	StateAuthenticated
	StateUnauthenticated
)

func (s AuthState) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateAuthenticated:
		return "authenticated"
	case StateUnauthenticated:
		return "unauthenticated"
	default:
		return "unknown"
	}
}

// AuthGuard admits only sessions with a user. It is re-evaluated on every
// navigation into the guarded subtree.
type AuthGuard struct{}

// Evaluate decides access to requested. While the session is loading it
// makes no decision; a signed-out session is sent to login with requested
// kept as the return path.
func (AuthGuard) Evaluate(s domain.Session, requested string) (AuthState, domain.Decision) {
	switch {
	case s.Loading:
		return StateLoading, domain.Decision{Kind: domain.Pending, Path: requested}
	case s.User == nil:
		return StateUnauthenticated, domain.LoginRedirect(requested)
	default:
		return StateAuthenticated, domain.AllowDecision(requested)
	}
}

// RoleGuard admits only sessions holding Required. Denial is final: the
// forbidden redirect carries no return path.
type RoleGuard struct {
	Required domain.Role
}

// AdminGuard guards the admin-only subtree.
var AdminGuard = RoleGuard{Required: domain.RoleAdmin}

func (g RoleGuard) Evaluate(s domain.Session, requested string) domain.Decision {
	if s.Loading {
		return domain.Decision{Kind: domain.Pending, Path: requested}
	}
	// Reached without a user: behave like the authenticated guard.
	if s.User == nil {
		return domain.LoginRedirect(requested)
	}
	if s.User.Role != g.Required {
		return domain.ForbiddenRedirect()
	}
	return domain.AllowDecision(requested)
}

// ResolveDashboard picks the landing view for the dashboard root. Only an
// explicit admin role gets the admin view; anything else, including a missing
// or unrecognised role, gets the user view.
func ResolveDashboard(s domain.Session) domain.View {
	if s.User != nil && s.User.Role.IsAdmin() {
		return domain.ViewAdminDashboard
	}
	return domain.ViewUserDashboard
}

// Evaluate runs the guards that protect route for session s.
// Nothing is decided, not even for public routes, until the session has
// been restored.
func Evaluate(s domain.Session, route Route, requested string) domain.Decision {
	if s.Loading {
		return domain.Decision{Kind: domain.Pending, Path: requested}
	}
	if route.Access == AccessPublic {
		return domain.AllowDecision(requested)
	}
	if _, d := (AuthGuard{}).Evaluate(s, requested); d.Kind != domain.Allow {
		return d
	}
	if route.Access == AccessAdmin {
		return AdminGuard.Evaluate(s, requested)
	}
	return domain.AllowDecision(requested)
}
