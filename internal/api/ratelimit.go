package api

import (
	"fmt"
	"net"
	"net/http"
	"time"

	"support-desk/internal/common/logger"

	"github.com/redis/go-redis/v9"
)

// RateLimiter is a fixed-window per-IP limiter backed by Redis. Redis being
// unreachable fails open; throttling the form is never worth dropping it.
type RateLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
	logger logger.Logger
}

func NewRateLimiter(client *redis.Client, requestsPerMinute int, log logger.Logger) *RateLimiter {
	return &RateLimiter{
		client: client,
		limit:  requestsPerMinute,
		window: time.Minute,
		logger: log.WithFields(map[string]interface{}{"component": "rate-limiter"}),
	}
}

func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		key := fmt.Sprintf("ratelimit:%s:%d", ip, time.Now().Unix()/int64(rl.window.Seconds()))

		count, err := rl.client.Incr(r.Context(), key).Result()
		if err != nil {
			rl.logger.WithError(err).Warn("rate limit check failed, allowing request", nil)
			next.ServeHTTP(w, r)
			return
		}
		if count == 1 {
			rl.client.Expire(r.Context(), key, rl.window)
		}

		if count > int64(rl.limit) {
			rl.logger.Warn("rate limit exceeded", map[string]interface{}{
				"ip":    ip,
				"count": count,
			})
			writeError(w, http.StatusTooManyRequests, "Too many requests. Try again in a minute.", nil)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// clientIP trusts RemoteAddr, which the RealIP middleware has already
// rewritten from X-Forwarded-For / X-Real-IP when present.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
