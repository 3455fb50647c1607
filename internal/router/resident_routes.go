package router

import (
	"github.com/labstack/echo/v4"

	"github.com/meuresidencial/condo-api/internal/auth"
	"github.com/meuresidencial/condo-api/internal/handler"
	"github.com/meuresidencial/condo-api/internal/middleware"
)

// RegisterResident registers the resident-facing endpoints under /v1.
// Residents can browse their condominium's common areas, request a
// reservation and follow their own requests.
func RegisterResident(
	e *echo.Echo,
	jwtSecret string,
	limiter echo.MiddlewareFunc,
	cache echo.MiddlewareFunc,
	areas *handler.CommonAreaHandler,
	reservations *handler.ReservationHandler,
) {
	g := e.Group(
		"/v1",
		middleware.SessionAuth(jwtSecret),
		limiter,
		middleware.RequireRole(auth.RoleResident, auth.RoleManager, auth.RoleAdmin),
		cache,
	)
	// Managers share the common-area listing for their admin screen.
	g.GET("/common-areas", areas.List)

	r := e.Group(
		"/v1",
		middleware.SessionAuth(jwtSecret),
		limiter,
		middleware.RequireRole(auth.RoleResident),
	)
	r.POST("/common-areas/:id/reserve", reservations.Reserve)
	r.GET("/my-reservations", reservations.MyReservations)
}
