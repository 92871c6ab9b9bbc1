package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// maxLocalKeys bounds the in-process limiter table; it is reset when full.
const maxLocalKeys = 10000

// RateLimiter decides whether another attempt under key is allowed within
// the current window.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// redisRateLimiter counts attempts per fixed one-minute window so the limit
// is shared by every API instance. When Redis fails the local limiter
// decides instead.
type redisRateLimiter struct {
	client   *redis.Client
	limit    int64
	window   time.Duration
	fallback RateLimiter
	logger   *slog.Logger
}

// NewRedisRateLimiter allows limit attempts per minute and key
func NewRedisRateLimiter(client *redis.Client, limit int64, logger *slog.Logger) RateLimiter {
	return &redisRateLimiter{
		client:   client,
		limit:    limit,
		window:   time.Minute,
		fallback: NewLocalRateLimiter(limit),
		logger:   logger,
	}
}

// windowKey generates the Redis key for the current window
// Format: rate:{key}:{unix minute}
func (r *redisRateLimiter) windowKey(key string) string {
	return fmt.Sprintf("rate:%s:%d", key, time.Now().Unix()/int64(r.window/time.Second))
}

func (r *redisRateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	windowKey := r.windowKey(key)

	pipe := r.client.Pipeline()
	incr := pipe.Incr(ctx, windowKey)
	pipe.Expire(ctx, windowKey, r.window)

	if _, err := pipe.Exec(ctx); err != nil {
		r.logger.Error("❌ [RateLimiter] Redis unavailable, using local limiter", "error", err)
		return r.fallback.Allow(ctx, key)
	}

	return incr.Val() <= r.limit, nil
}

// localRateLimiter keeps a token bucket per key in memory
type localRateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	every    rate.Limit
	burst    int
}

// NewLocalRateLimiter allows limit attempts per minute and key within this
// process only
func NewLocalRateLimiter(limit int64) RateLimiter {
	return &localRateLimiter{
		limiters: map[string]*rate.Limiter{},
		every:    rate.Every(time.Minute / time.Duration(max(limit, 1))),
		burst:    int(max(limit, 1)),
	}
}

func (l *localRateLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	limiter, ok := l.limiters[key]
	if !ok {
		if len(l.limiters) >= maxLocalKeys {
			l.limiters = map[string]*rate.Limiter{}
		}
		limiter = rate.NewLimiter(l.every, l.burst)
		l.limiters[key] = limiter
	}
	return limiter.Allow(), nil
}

// NoOpRateLimiter is a rate limiter that always allows requests
type NoOpRateLimiter struct{}

// NewNoOpRateLimiter creates a no-op rate limiter
func NewNoOpRateLimiter(logger *slog.Logger) RateLimiter {
	logger.Warn("⚠️ [RateLimiter] Using no-op rate limiter - rate limiting is disabled")
	return NoOpRateLimiter{}
}

func (NoOpRateLimiter) Allow(context.Context, string) (bool, error) {
	return true, nil
}

// RateLimit rejects requests with 429 once the client IP used up its
// attempts for scope.
func RateLimit(limiter RateLimiter, scope string, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		allowed, err := limiter.Allow(c.Request.Context(), scope+":"+c.ClientIP())
		if err != nil {
			// Never lock users out because the limiter broke.
			logger.Error("❌ [RateLimiter] Limit check failed", "scope", scope, "error", err)
			c.Next()
			return
		}
		if !allowed {
			rateLimitRejects.WithLabelValues(scope).Inc()
			logger.Warn("🚫 [RateLimiter] Too many attempts", "scope", scope, "client_ip", c.ClientIP())
			c.Header("Retry-After", "60")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Request was throttled. Expected available in 60 seconds."})
			return
		}
		c.Next()
	}
}
