package middlewares

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"researchhub/researchhub/utils/apperrors"
	"researchhub/researchhub/utils/logging"

	"go.uber.org/zap"
)

// Counter is the fixed-window counter behind RateLimit. sources/redis
// implements it.
type Counter interface {
	IncrWithExpire(ctx context.Context, key string, window time.Duration) (int64, error)
}

type RateLimitConfig struct {
	Prefix            string
	RequestsPerMinute int
}

// RateLimit caps requests per client IP. A client's counter resets once it
// has been quiet for a minute. A nil counter or a non-positive limit
// disables the check, and counter errors let the request through.
func RateLimit(counter Counter, cfg RateLimitConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if counter == nil || cfg.RequestsPerMinute <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			window := time.Minute
			key := fmt.Sprintf("ratelimit:%s:%s", cfg.Prefix, clientIP(r))

			count, err := counter.IncrWithExpire(r.Context(), key, window)
			if err != nil {
				logging.ErrorLogger.Error("rate limit counter failed", zap.String("key", key), zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}

			remaining := cfg.RequestsPerMinute - int(count)
			if remaining < 0 {
				remaining = 0
			}
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(cfg.RequestsPerMinute))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(window).Unix(), 10))

			if int(count) > cfg.RequestsPerMinute {
				w.Header().Set("Retry-After", strconv.Itoa(int(window.Seconds())))
				apperrors.Write(w, r, apperrors.RateLimited("Too many requests, try again later"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientIP relies on middleware.RealIP having rewritten RemoteAddr.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
