package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tastetrail/tastetrail/internal/api/middleware"
	"github.com/tastetrail/tastetrail/internal/core/ports"
)

// ctxClaims extracts the claims injected by the Auth middleware. A missing
// subject means the route was mounted without Auth.
func ctxClaims(c echo.Context) (ports.Claims, error) {
	claims, ok := c.Get(middleware.ClaimsKey).(ports.Claims)
	if !ok || claims.UserID == "" {
		return ports.Claims{}, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return claims, nil
}
