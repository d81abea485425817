package http

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/storesync/internal/session"
)

func newRateLimitedRouter(store *storeLimiters, sessionFor func(c *gin.Context) *session.Session) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	router := gin.New()
	router.Use(func(c *gin.Context) {
		if sess := sessionFor(c); sess != nil {
			c.Request = c.Request.WithContext(session.NewContext(c.Request.Context(), *sess))
		}
		c.Next()
	})
	router.Use(rateLimit(store, logger))
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return router
}

func storeSession(storeID uuid.UUID) func(c *gin.Context) *session.Session {
	return func(c *gin.Context) *session.Session {
		return &session.Session{StoreID: storeID, UserID: uuid.New(), Role: session.RoleClerk}
	}
}

func TestRateLimitMiddleware_AllowsRequestsWithinLimit(t *testing.T) {
	router := newRateLimitedRouter(newStoreLimiters(10, 20), storeSession(uuid.New()))

	for i := 0; i < 5; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

func TestRateLimitMiddleware_BlocksRequestsExceedingLimit(t *testing.T) {
	router := newRateLimitedRouter(newStoreLimiters(0.1, 2), storeSession(uuid.New()))

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), "rate_limit_exceeded")
}

func TestRateLimitMiddleware_StoresAreIndependent(t *testing.T) {
	first, second := uuid.New(), uuid.New()
	router := newRateLimitedRouter(newStoreLimiters(0.1, 1), func(c *gin.Context) *session.Session {
		storeID := first
		if c.Query("store") == "second" {
			storeID = second
		}
		return &session.Session{StoreID: storeID, UserID: uuid.New(), Role: session.RoleClerk}
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
	require.Equal(t, http.StatusTooManyRequests, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test?store=second", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimitMiddleware_RequiresSession(t *testing.T) {
	router := newRateLimitedRouter(newStoreLimiters(10, 10), func(*gin.Context) *session.Session { return nil })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestStoreLimiters_SweepsIdleEntries(t *testing.T) {
	store := newStoreLimiters(1, 1)
	now := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	store.lastSweep = now

	idle := uuid.New()
	store.get(idle)
	require.Equal(t, 1, store.size())

	now = now.Add(2 * limiterIdleTTL)
	store.get(uuid.New())

	assert.Equal(t, 1, store.size())
}
