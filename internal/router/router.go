// Package router wires HTTP routes to handlers. The limiter and the
// response cache are group middlewares, not global ones: on the
// authenticated groups they run after SessionAuth so both key on the
// session, and the cache additionally runs after the role gate so it
// only ever stores responses an authorized caller produced.
package router

import (
	"database/sql"

	"github.com/labstack/echo/v4"

	"github.com/meuresidencial/condo-api/internal/handler"
	"github.com/meuresidencial/condo-api/internal/middleware"
)

// RegisterPublic registers routes that require no session. The health
// check stays unthrottled so load balancers never see a 429 from it.
func RegisterPublic(e *echo.Echo, db *sql.DB) {
	e.GET("/healthz", handler.Health(db))
}

// RegisterAuth registers the credential endpoints. Login and refresh
// are open; logout, me and the condominium switch require a session.
// The open group carries the limiter too, keyed by IP only since no
// session exists yet. Session endpoints are never cached.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string, limiter echo.MiddlewareFunc) {
	g := e.Group("/v1/auth", limiter)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	// Logout with a refresh token in the body works without a session;
	// the handler falls back to the bearer session for revoke-all.
	g.POST("/logout", a.Logout)

	auth := e.Group("/v1", middleware.SessionAuth(jwtSecret), limiter)
	auth.GET("/me", a.Me)
	auth.POST("/auth/logout-all", a.Logout)
	auth.PUT("/session/condominium", a.SwitchCondominium)
}
