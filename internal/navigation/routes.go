// Package navigation decides which views a session may reach: the
// authenticated guard, the role guard, the dashboard entry resolver and the
// navigator that runs them on every navigation.
package navigation

import (
	"path"
	"strings"

	"github.com/tastetrail/tastetrail/internal/core/domain"
)

// Access is the protection level of a route.
type Access int

const (
	AccessPublic Access = iota
	AccessAuthenticated
	AccessAdmin
)

// Route binds a path to its view and protection level.
type Route struct {
	Path   string
	View   domain.View
	Access Access
}

// Routes is the application's route table. The dashboard root has no fixed
// view; the dashboard entry resolver picks one.
var Routes = []Route{
	{Path: domain.PathRoot, View: domain.ViewLogin, Access: AccessPublic},
	{Path: domain.PathLogin, View: domain.ViewLogin, Access: AccessPublic},
	{Path: domain.PathSignup, View: domain.ViewSignup, Access: AccessPublic},
	{Path: domain.PathForbidden, View: domain.ViewForbidden, Access: AccessPublic},

	{Path: domain.PathDashboard, Access: AccessAuthenticated},
	{Path: domain.PathAllRecipes, View: domain.ViewAllRecipes, Access: AccessAuthenticated},
	{Path: domain.PathPersonalCookbook, View: domain.ViewPersonalCookbook, Access: AccessAuthenticated},
	{Path: domain.PathMealPlanner, View: domain.ViewMealPlanner, Access: AccessAuthenticated},

	{Path: domain.PathManageCategory, View: domain.ViewManageCategory, Access: AccessAdmin},
	{Path: domain.PathManageRecipe, View: domain.ViewManageRecipe, Access: AccessAdmin},
	{Path: domain.PathManageReviews, View: domain.ViewManageReviews, Access: AccessAdmin},
	{Path: domain.PathManageUsers, View: domain.ViewManageUsers, Access: AccessAdmin},
}

var routeIndex = func() map[string]Route {
	m := make(map[string]Route, len(Routes))
	for _, r := range Routes {
		m[r.Path] = r
	}
	return m
}()

// Match looks up the route for p. Unknown paths under the dashboard still
// require authentication and render not-found; other unknown paths are public.
func Match(p string) Route {
	p = CleanPath(p)
	if r, ok := routeIndex[p]; ok {
		return r
	}
	if p == domain.PathDashboard || strings.HasPrefix(p, domain.PathDashboard+"/") {
		return Route{Path: p, View: domain.ViewNotFound, Access: AccessAuthenticated}
	}
	return Route{Path: p, View: domain.ViewNotFound, Access: AccessPublic}
}

// CleanPath normalises p to a rooted path without query, trailing slash or
// dot segments.
func CleanPath(p string) string {
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	if p == "" {
		return domain.PathRoot
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return path.Clean(p)
}

// AdminPaths lists every admin-only path.
func AdminPaths() []string {
	var out []string
	for _, r := range Routes {
		if r.Access == AccessAdmin {
			out = append(out, r.Path)
		}
	}
	return out
}
