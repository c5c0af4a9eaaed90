package ratelimit

import (
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/plumeblog/plume/internal/platform/httpx"
)

// Middleware applies a policy's limiter to every request it wraps, keyed by
// client address. It must sit behind RealIP so the key survives proxies.
// Limiter backend failures fail open with a logged warning rather than
// taking the API down with the limiter store.
func Middleware(limiter Limiter, policy Policy, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			result, err := limiter.Consume(r.Context(), clientKey(r))
			if err != nil {
				if logger != nil {
					logger.Warn("rate limiter unavailable", slog.String("policy", policy.Name), slog.Any("error", err))
				}
				next.ServeHTTP(w, r)
				return
			}
			if !result.Allowed {
				w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds(result.RetryAfter)))
				w.Header().Set("X-RateLimit-Limit", strconv.Itoa(policy.Limit))
				w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
				w.Header().Set("X-RateLimit-Reset", result.ResetAt.UTC().Format(http.TimeFormat))
				httpx.JSON(w, http.StatusTooManyRequests, httpx.ErrorEnvelope{Error: policy.Message})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// retryAfterSeconds rounds the remaining window up to whole seconds, never
// below one.
func retryAfterSeconds(d time.Duration) int {
	secs := int((d + time.Second - 1) / time.Second)
	if secs < 1 {
		secs = 1
	}
	return secs
}

func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
