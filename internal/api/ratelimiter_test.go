package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

type staticLimiter struct {
	allow bool
}

func (s *staticLimiter) Allow() bool {
	return s.allow
}

func TestRateLimitMiddlewareBlocksWhenLimiterDenies(t *testing.T) {
	middleware := rateLimitMiddleware(&staticLimiter{allow: false}, http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		t.Fatalf("handler should not execute when rate limited")
	}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	middleware.ServeHTTP(rec, req)

	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
	if got := rec.Header().Get("Retry-After"); got != "1" {
		t.Fatalf("expected Retry-After 1, got %q", got)
	}
}

func TestRateLimitMiddlewarePassesWhenLimiterAllows(t *testing.T) {
	var called bool
	middleware := rateLimitMiddleware(&staticLimiter{allow: true}, http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		called = true
	}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	middleware.ServeHTTP(rec, req)

	if !called {
		t.Fatalf("expected handler to execute when limiter allows")
	}
}

func TestNewTokenBucketLimiterDisabledForNonPositive(t *testing.T) {
	tests := []struct {
		name  string
		rps   float64
		burst int
	}{
		{name: "zero rate", rps: 0, burst: 5},
		{name: "zero burst", rps: 5, burst: 0},
		{name: "negative", rps: -1, burst: -1},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if limiter := newTokenBucketLimiter(tc.rps, tc.burst); limiter != nil {
				t.Fatalf("expected limiter to be disabled")
			}
		})
	}
}

func TestTokenBucketRetryAfterRoundsUp(t *testing.T) {
	limiter := newTokenBucketLimiter(0.25, 1).(*tokenBucket)
	if got := limiter.retryAfter().Seconds(); got != 4 {
		t.Fatalf("expected 4s retry, got %v", got)
	}
	if !limiter.Allow() {
		t.Fatalf("expected first request to be allowed")
	}
	if limiter.Allow() {
		t.Fatalf("expected second request to be limited")
	}
}
