package api

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

type rateLimiter interface {
	Allow() bool
}

// WithRateLimit configures a token bucket shared by all clients. A non-positive
// rate or burst disables rate limiting.
func WithRateLimit(ratePerSecond float64, burst int) RouterOption {
	return func(cfg *routerConfig) {
		cfg.rateLimiter = newTokenBucketLimiter(ratePerSecond, burst)
	}
}

// WithRateLimiter overrides the request rate limiter (primarily for tests).
func WithRateLimiter(limiter rateLimiter) RouterOption {
	return func(cfg *routerConfig) {
		cfg.rateLimiter = limiter
	}
}

type tokenBucket struct {
	limiter *rate.Limiter
}

// newTokenBucketLimiter returns nil when limiting is disabled.
func newTokenBucketLimiter(ratePerSecond float64, burst int) rateLimiter {
	if ratePerSecond <= 0 || burst <= 0 {
		return nil
	}
	return &tokenBucket{limiter: rate.NewLimiter(rate.Limit(ratePerSecond), burst)}
}

func (l *tokenBucket) Allow() bool {
	return l.limiter.Allow()
}

// retryAfter is the time until the next token, rounded up to whole seconds.
func (l *tokenBucket) retryAfter() time.Duration {
	limit := l.limiter.Limit()
	if limit <= 0 {
		return time.Second
	}
	return time.Duration(math.Ceil(1/float64(limit))) * time.Second
}

func rateLimitMiddleware(limiter rateLimiter, next http.Handler) http.Handler {
	if limiter == nil {
		return next
	}
	retry := time.Second
	if tb, ok := limiter.(*tokenBucket); ok {
		retry = tb.retryAfter()
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if limiter.Allow() {
			next.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Retry-After", strconv.Itoa(int(retry/time.Second)))
		writeError(w, http.StatusTooManyRequests, "Too many requests", "rate limit exceeded, please retry shortly")
	})
}
