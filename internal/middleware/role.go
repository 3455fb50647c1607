package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/meuresidencial/condo-api/internal/auth"
)

// RequireRole aborts with 403 unless the session's role is in the
// allowed set. Must run after SessionAuth.
func RequireRole(roles ...auth.Role) echo.MiddlewareFunc {
	allowed := make(map[auth.Role]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			s, ok := CurrentSession(c)
			if !ok || !allowed[s.Role] {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
			}
			return next(c)
		}
	}
}
