package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RateLimitStore defines the persistence operations required by the middleware.
type RateLimitStore interface {
	CountAttempts(ctx context.Context, identifier string, window time.Duration, reference time.Time) (int, error)
	RecordAttempt(ctx context.Context, identifier string, at time.Time) error
}

// RateLimiter throttles workflow mutations with a sliding window per actor.
// Unauthenticated requests fall back to the client IP.
type RateLimiter struct {
	store  RateLimitStore
	logger *zap.Logger
	limit  int
	window time.Duration
	now    func() time.Time
}

// NewRateLimiter builds a reusable rate limiter middleware helper.
func NewRateLimiter(store RateLimitStore, limit int, window time.Duration, logger *zap.Logger) *RateLimiter {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &RateLimiter{
		store:  store,
		logger: logger,
		limit:  limit,
		window: window,
		now:    time.Now,
	}
}

// WithClock allows injection of a custom clock (primarily for testing).
func (rl *RateLimiter) WithClock(now func() time.Time) *RateLimiter {
	if now != nil {
		rl.now = now
	}
	return rl
}

func (rl *RateLimiter) identifier(c *gin.Context) string {
	if actor, ok := GetActor(c); ok && actor.ID != "" {
		return "actor:" + actor.ID
	}
	if ip := c.ClientIP(); ip != "" {
		return "ip:" + ip
	}
	return ""
}

// Limit returns a Gin middleware enforcing the configured window. A store
// failure lets the request through; throttling is best effort.
func (rl *RateLimiter) Limit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl.store == nil || rl.limit <= 0 || rl.window <= 0 {
			c.Next()
			return
		}

		identifier := rl.identifier(c)
		if identifier == "" {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		now := rl.now()

		count, err := rl.store.CountAttempts(ctx, identifier, rl.window, now)
		if err != nil {
			rl.logger.Warn("rate limit check failed", zap.String("identifier", identifier), zap.Error(err))
			c.Next()
			return
		}

		headers := c.Writer.Header()
		headers.Set("X-RateLimit-Limit", strconv.Itoa(rl.limit))

		if count >= rl.limit {
			retryAfter := int(rl.window.Seconds())
			headers.Set("X-RateLimit-Remaining", "0")
			headers.Set("Retry-After", strconv.Itoa(retryAfter))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, newErrorResponse(c,
				fmt.Sprintf("too many requests, try again in %d seconds", retryAfter)))
			return
		}

		if err := rl.store.RecordAttempt(ctx, identifier, now); err != nil {
			rl.logger.Warn("rate limit record failed", zap.String("identifier", identifier), zap.Error(err))
		}

		remaining := rl.limit - count - 1
		if remaining < 0 {
			remaining = 0
		}
		headers.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))

		c.Next()
	}
}
