package router

import (
	"github.com/labstack/echo/v4"

	"github.com/meuresidencial/condo-api/internal/auth"
	"github.com/meuresidencial/condo-api/internal/handler"
	"github.com/meuresidencial/condo-api/internal/middleware"
)

// RegisterManager registers the condominium administration endpoints
// under /v1. Every route requires a manager (or operator) session; the
// active condominium comes from the session, never from the URL.
func RegisterManager(
	e *echo.Echo,
	jwtSecret string,
	limiter echo.MiddlewareFunc,
	cache echo.MiddlewareFunc,
	residents *handler.ResidentHandler,
	areas *handler.CommonAreaHandler,
	reservations *handler.ReservationHandler,
	announcements *handler.AnnouncementHandler,
	financials *handler.FinancialHandler,
) {
	// Order matters: SessionAuth first so the limiter keys on the
	// subject and the cache on the subject + matricula, role gate
	// before the cache so forbidden callers never get a cached body.
	g := e.Group(
		"/v1",
		middleware.SessionAuth(jwtSecret),
		limiter,
		middleware.RequireRole(auth.RoleManager, auth.RoleAdmin),
		cache,
	)

	// ---- Residents ----
	g.GET("/residents", residents.List)
	g.POST("/residents", residents.Create)
	g.PUT("/residents/:id", residents.Update)
	g.DELETE("/residents/:id", residents.Delete)

	// ---- Common areas ----
	g.POST("/common-areas", areas.Create)
	g.PUT("/common-areas/:id", areas.Update)
	g.DELETE("/common-areas/:id", areas.Delete)

	// ---- Reservation review ----
	g.GET("/reservations", reservations.ListForCondominium)
	g.PATCH("/reservations/:id/status", reservations.UpdateStatus)

	// ---- Announcements ----
	g.GET("/announcements", announcements.List)
	g.POST("/announcements", announcements.Create)
	g.PUT("/announcements/:id", announcements.Update)
	g.DELETE("/announcements/:id", announcements.Delete)

	// ---- Financials ----
	g.GET("/financials/incomes", financials.ListIncomes)
	g.POST("/financials/incomes", financials.CreateIncome)
	g.DELETE("/financials/incomes/:id", financials.DeleteIncome)
	g.GET("/financials/expenses", financials.ListExpenses)
	g.POST("/financials/expenses", financials.CreateExpense)
	g.DELETE("/financials/expenses/:id", financials.DeleteExpense)
	g.GET("/financials/balance", financials.GetBalance)
	g.PUT("/financials/balance", financials.SetBalance)
	g.GET("/financials/summary", financials.Summary)
}
