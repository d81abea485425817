package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/allisson/storesync/internal/httputil"
	"github.com/allisson/storesync/internal/session"
)

const (
	limiterSweepInterval = 5 * time.Minute
	limiterIdleTTL       = time.Hour
)

// storeLimiters holds one token bucket per store.
type storeLimiters struct {
	mu        sync.Mutex
	limiters  map[uuid.UUID]*limiterEntry
	rps       float64
	burst     int
	lastSweep time.Time
	now       func() time.Time
}

type limiterEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

func newStoreLimiters(rps float64, burst int) *storeLimiters {
	if burst < 1 {
		burst = 1
	}
	return &storeLimiters{
		limiters:  make(map[uuid.UUID]*limiterEntry),
		rps:       rps,
		burst:     burst,
		lastSweep: time.Now(),
		now:       time.Now,
	}
}

// get returns the store's limiter, creating it on first use. Idle limiters are swept
// at most once per limiterSweepInterval.
func (s *storeLimiters) get(storeID uuid.UUID) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if now.Sub(s.lastSweep) >= limiterSweepInterval {
		threshold := now.Add(-limiterIdleTTL)
		for id, entry := range s.limiters {
			if entry.lastAccess.Before(threshold) {
				delete(s.limiters, id)
			}
		}
		s.lastSweep = now
	}

	entry, ok := s.limiters[storeID]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(rate.Limit(s.rps), s.burst)}
		s.limiters[storeID] = entry
	}
	entry.lastAccess = now
	return entry.limiter
}

func (s *storeLimiters) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.limiters)
}

// RateLimitMiddleware throttles requests per store with a token bucket.
//
// MUST be used after SessionMiddleware. Exceeding the limit answers
// 429 Too Many Requests with a Retry-After header in seconds.
func RateLimitMiddleware(rps float64, burst int, logger *slog.Logger) gin.HandlerFunc {
	return rateLimit(newStoreLimiters(rps, burst), logger)
}

func rateLimit(store *storeLimiters, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, err := session.MustFromContext(c.Request.Context())
		if err != nil {
			logger.Error("rate limit middleware: no session in context")
			httputil.HandleErrorGin(c, err, logger)
			c.Abort()
			return
		}

		limiter := store.get(sess.StoreID)
		if !limiter.Allow() {
			reservation := limiter.Reserve()
			retryAfter := int(reservation.Delay().Seconds()) + 1
			reservation.Cancel()

			logger.Debug("rate limit exceeded",
				slog.String("store_id", sess.StoreID.String()),
				slog.Int("retry_after", retryAfter))

			c.Header("Retry-After", fmt.Sprintf("%d", retryAfter))
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":   "rate_limit_exceeded",
				"message": "Too many requests. Please retry after the specified delay.",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
