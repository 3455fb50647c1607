package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meuresidencial/condo-api/internal/auth"
	"github.com/meuresidencial/condo-api/internal/config"
)

// fakeCacheStore is an in-memory stand-in for the Redis client.
type fakeCacheStore struct {
	entries map[string][]byte
}

func newFakeCacheStore() *fakeCacheStore {
	return &fakeCacheStore{entries: make(map[string][]byte)}
}

func (f *fakeCacheStore) Get(_ context.Context, key string) *redis.StringCmd {
	if v, ok := f.entries[key]; ok {
		return redis.NewStringResult(string(v), nil)
	}
	return redis.NewStringResult("", redis.Nil)
}

func (f *fakeCacheStore) SetEx(_ context.Context, key string, value interface{}, _ time.Duration) *redis.StatusCmd {
	switch v := value.(type) {
	case []byte:
		f.entries[key] = append([]byte(nil), v...)
	case string:
		f.entries[key] = []byte(v)
	}
	return redis.NewStatusResult("OK", nil)
}

func testCacheConfig() config.CacheConfig {
	return config.CacheConfig{
		Enabled:      true,
		Methods:      map[string]bool{http.MethodGet: true},
		TTL:          time.Minute,
		KeyStrategy:  "route_query",
		Prefix:       "cache",
		MaxBodyBytes: 1 << 20,
	}
}

// Cached responses are scoped by the session: entries written for one
// manager must never be replayed to another tenant, and requests
// without a valid token must be rejected before the cache can answer.
func TestRedisCacheSessionScoping(t *testing.T) {
	store := newFakeCacheStore()
	handlerCalls := 0

	e := echo.New()
	g := e.Group("/v1", SessionAuth(testSecret), newRedisCache(testCacheConfig(), store))
	g.GET("/residents", func(c echo.Context) error {
		handlerCalls++
		s, ok := CurrentSession(c)
		require.True(t, ok)
		return c.JSON(http.StatusOK, echo.Map{"matricula": s.Matricula})
	})

	managerA := auth.Session{Role: auth.RoleManager, Email: "sindica@aurora.com", Matricula: "COND-A"}
	managerB := auth.Session{Role: auth.RoleManager, Email: "gestor@horizonte.com", Matricula: "COND-B"}

	list := func(t *testing.T, header string) *httptest.ResponseRecorder {
		t.Helper()
		req := httptest.NewRequest(http.MethodGet, "/v1/residents", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec
	}

	t.Run("first manager populates the cache", func(t *testing.T) {
		rec := list(t, bearerFor(t, managerA))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
		assert.Contains(t, rec.Body.String(), "COND-A")
		assert.Equal(t, 1, handlerCalls)
	})

	t.Run("second tenant gets its own data, not the first tenant's entry", func(t *testing.T) {
		rec := list(t, bearerFor(t, managerB))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
		assert.Contains(t, rec.Body.String(), "COND-B")
		assert.NotContains(t, rec.Body.String(), "COND-A")
		assert.Equal(t, 2, handlerCalls)
	})

	t.Run("unauthenticated caller is rejected, never served from cache", func(t *testing.T) {
		rec := list(t, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.NotContains(t, rec.Body.String(), "COND-A")
		assert.Equal(t, 2, handlerCalls)
	})

	t.Run("repeat request is a hit on the caller's own entry", func(t *testing.T) {
		rec := list(t, bearerFor(t, managerA))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "HIT", rec.Header().Get("X-Cache"))
		assert.Contains(t, rec.Body.String(), "COND-A")
		assert.Equal(t, 2, handlerCalls)
	})

	t.Run("switching tenancy moves to a fresh key", func(t *testing.T) {
		switched := managerA
		switched.Matricula = "COND-B"
		rec := list(t, bearerFor(t, switched))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
		assert.Contains(t, rec.Body.String(), "COND-B")
		assert.Equal(t, 3, handlerCalls)
	})
}

func TestCacheKey(t *testing.T) {
	cfg := testCacheConfig()
	e := echo.New()

	keyFor := func(s *auth.Session, target string) string {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		c := e.NewContext(req, httptest.NewRecorder())
		c.SetPath("/v1/residents")
		if s != nil {
			c.Set(SessionKey, *s)
			c.Set(UserIDKey, s.Subject())
		}
		return cacheKey(cfg, c)
	}

	a := auth.Session{Role: auth.RoleManager, Email: "a@x.com", Matricula: "COND-A"}
	b := auth.Session{Role: auth.RoleManager, Email: "b@x.com", Matricula: "COND-B"}

	t.Run("different subjects never share a key", func(t *testing.T) {
		assert.NotEqual(t, keyFor(&a, "/v1/residents"), keyFor(&b, "/v1/residents"))
	})

	t.Run("same session and request hash to the same key", func(t *testing.T) {
		assert.Equal(t, keyFor(&a, "/v1/residents"), keyFor(&a, "/v1/residents"))
	})

	t.Run("anonymous context gets a key of its own", func(t *testing.T) {
		assert.NotEqual(t, keyFor(nil, "/v1/residents"), keyFor(&a, "/v1/residents"))
	})

	t.Run("query string still differentiates within a session", func(t *testing.T) {
		assert.NotEqual(t, keyFor(&a, "/v1/residents?page=1"), keyFor(&a, "/v1/residents?page=2"))
	})

	t.Run("matricula switch changes the key for the same subject", func(t *testing.T) {
		switched := a
		switched.Matricula = "COND-B"
		assert.NotEqual(t, keyFor(&a, "/v1/residents"), keyFor(&switched, "/v1/residents"))
	})
}
