package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Counter counts hits for a key inside a fixed window.
type Counter interface {
	// Hit increments key and returns the count and time left in the current window.
	Hit(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
}

// RedisCounter is a fixed-window Counter backed by INCR + EXPIRE.
type RedisCounter struct {
	client redis.Cmdable
}

// NewRedisCounter returns a Counter using client.
func NewRedisCounter(client redis.Cmdable) *RedisCounter {
	return &RedisCounter{client: client}
}

// Hit implements Counter.
func (c *RedisCounter) Hit(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	count, err := c.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, 0, err
	}
	if count == 1 {
		if err := c.client.Expire(ctx, key, window).Err(); err != nil {
			return 0, 0, err
		}
	}
	left, err := c.client.TTL(ctx, key).Result()
	if err != nil || left < 0 {
		left = window
	}
	return count, left, nil
}

// RateLimit allows limit requests per client IP per window and answers 429 beyond that.
// When the counter is unavailable the request is let through.
func RateLimit(counter Counter, limit int, window time.Duration, keyPrefix string, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := ClientIPFrom(r.Context())
			if ip == "" {
				ip = ClientIP(r)
			}
			key := keyPrefix + ":ip:" + ip

			count, ttl, err := counter.Hit(r.Context(), key, window)
			if err != nil {
				log.Warn("rate limit counter unavailable", zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}
			remaining := limit - int(count)
			if remaining < 0 {
				remaining = 0
			}
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			if count > int64(limit) {
				w.Header().Set("Retry-After", strconv.Itoa(int(ttl.Seconds())))
				http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
