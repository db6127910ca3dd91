package navigation

import (
	"net/url"
	"strings"

	"github.com/tastetrail/tastetrail/internal/core/domain"
)

const maxReturnToLen = 2048

// SanitizeReturnTo returns next if it is safe to resume after login, else "".
// Only local absolute paths are accepted, and never the auth pages themselves.
func SanitizeReturnTo(next string) string {
	next = strings.TrimSpace(next)
	if next == "" || len(next) > maxReturnToLen {
		return ""
	}
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") {
		return ""
	}
	if strings.ContainsAny(next, "\\\r\n\t") {
		return ""
	}

	u, err := url.Parse(next)
	if err != nil || u.IsAbs() || u.Host != "" || u.Scheme != "" {
		return ""
	}
	decoded, err := url.PathUnescape(u.EscapedPath())
	if err != nil || strings.HasPrefix(decoded, "//") || strings.Contains(decoded, "\\") {
		return ""
	}

	switch CleanPath(u.Path) {
	case domain.PathRoot, domain.PathLogin, domain.PathSignup:
		return ""
	}
	return next
}

// Destination is where to go after a successful login: the sanitised return
// path when there is one, otherwise the dashboard.
func Destination(returnTo string) string {
	if next := SanitizeReturnTo(returnTo); next != "" {
		return next
	}
	return domain.PathDashboard
}
