package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meuresidencial/condo-api/internal/auth"
)

const testSecret = "test-secret"

func newProtectedEcho(mw ...echo.MiddlewareFunc) *echo.Echo {
	e := echo.New()
	g := e.Group("", mw...)
	g.GET("/protected", func(c echo.Context) error {
		s, ok := CurrentSession(c)
		if !ok {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "no session"})
		}
		return c.JSON(http.StatusOK, echo.Map{"subject": s.Subject()})
	})
	return e
}

func bearerFor(t *testing.T, s auth.Session) string {
	t.Helper()
	tok, err := auth.NewAccessToken(testSecret, s, 15)
	require.NoError(t, err)
	return "Bearer " + tok.Token
}

func TestSessionAuth(t *testing.T) {
	e := newProtectedEcho(SessionAuth(testSecret))

	t.Run("valid token reaches the handler with its session", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", bearerFor(t, auth.Session{Role: auth.RoleResident, ResidentID: "res-1"}))
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "res:res-1")
	})

	t.Run("missing header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("token signed with another secret", func(t *testing.T) {
		tok, err := auth.NewAccessToken("other-secret", auth.Session{Role: auth.RoleAdmin, Email: "a@b.c"}, 15)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+tok.Token)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestRequireRole(t *testing.T) {
	e := newProtectedEcho(SessionAuth(testSecret), RequireRole(auth.RoleManager, auth.RoleAdmin))

	t.Run("allowed role passes", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", bearerFor(t, auth.Session{Role: auth.RoleManager, Email: "m@x.com", Matricula: "COND-001"}))
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("disallowed role gets 403", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", bearerFor(t, auth.Session{Role: auth.RoleResident, ResidentID: "res-1"}))
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}
