// Package middleware provides reusable HTTP middleware: session
// authentication, role enforcement, Redis rate limiting and response
// caching.
package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/meuresidencial/condo-api/internal/auth"
)

// Context keys set by SessionAuth and read by handlers/middleware.
const (
	SessionKey = "session"
	UserIDKey  = "user_id"
)

// SessionAuth validates the Bearer access token and rebuilds the
// embedded auth.Session into the request context. Handlers read it with
// CurrentSession; no global session state exists anywhere else.
func SessionAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(h, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			s, err := auth.ParseAccessToken(secret, strings.TrimPrefix(h, "Bearer "))
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}
			c.Set(SessionKey, s)
			c.Set(UserIDKey, s.Subject())
			return next(c)
		}
	}
}

// CurrentSession returns the session stored by SessionAuth. The ok
// result is false when the middleware did not run (misrouted handler).
func CurrentSession(c echo.Context) (auth.Session, bool) {
	s, ok := c.Get(SessionKey).(auth.Session)
	return s, ok
}
