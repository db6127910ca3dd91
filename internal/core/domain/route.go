package domain

import "net/url"

// Navigable paths.
const (
	PathRoot      = "/"
	PathLogin     = "/login"
	PathSignup    = "/signup"
	PathForbidden = "/forbidden"
	PathDashboard = "/dashboard"

	PathAllRecipes       = "/dashboard/all-recipes"
	PathPersonalCookbook = "/dashboard/personal-cookbook"
	PathMealPlanner      = "/dashboard/meal-planner"

	PathManageCategory = "/dashboard/manage-category"
	PathManageRecipe   = "/dashboard/manage-recipe"
	PathManageReviews  = "/dashboard/manage-reviews"
	PathManageUsers    = "/dashboard/manage-users"
)

// ReturnToParam is the query parameter carrying the original path through
// the login page.
const ReturnToParam = "next"

// View names the page a path resolves to.
type View string

const (
	ViewLogin            View = "login"
	ViewSignup           View = "signup"
	ViewForbidden        View = "forbidden"
	ViewUserDashboard    View = "user-dashboard"
	ViewAdminDashboard   View = "admin-dashboard"
	ViewAllRecipes       View = "all-recipes"
	ViewPersonalCookbook View = "personal-cookbook"
	ViewMealPlanner      View = "meal-planner"
	ViewManageCategory   View = "manage-category"
	ViewManageRecipe     View = "manage-recipe"
	ViewManageReviews    View = "manage-reviews"
	ViewManageUsers      View = "manage-users"
	ViewNotFound         View = "not-found"
)

// DecisionKind is the outcome of evaluating a guard.
type DecisionKind int

const (
	// Pending means the session is still being restored; no decision yet.
	Pending DecisionKind = iota
	Allow
	RedirectToLogin
	RedirectToForbidden
)

func (k DecisionKind) String() string {
	switch k {
	case Pending:
		return "pending"
	case Allow:
		return "allow"
	case RedirectToLogin:
		return "redirect_login"
	case RedirectToForbidden:
		return "redirect_forbidden"
	default:
		return "unknown"
	}
}

// Decision is a route access decision for Path. ReturnTo is only set on
// RedirectToLogin and holds the path to resume after authenticating.
type Decision struct {
	Kind     DecisionKind
	Path     string
	ReturnTo string
}

func AllowDecision(path string) Decision {
	return Decision{Kind: Allow, Path: path}
}

func LoginRedirect(returnTo string) Decision {
	return Decision{Kind: RedirectToLogin, Path: PathLogin, ReturnTo: returnTo}
}

func ForbiddenRedirect() Decision {
	return Decision{Kind: RedirectToForbidden, Path: PathForbidden}
}

// Location renders the decision as the path to navigate to.
func (d Decision) Location() string {
	if d.Kind == RedirectToLogin && d.ReturnTo != "" {
		return d.Path + "?" + url.Values{ReturnToParam: {d.ReturnTo}}.Encode()
	}
	return d.Path
}
