package handler

import (
	"testing"
	"time"
)

func TestRateLimiterPerKey(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	limiter := NewRateLimiter(2, time.Minute)
	limiter.now = func() time.Time { return now }

	if !limiter.Allow("a") || !limiter.Allow("a") {
		t.Fatal("expected burst of two to be allowed")
	}
	if limiter.Allow("a") {
		t.Fatal("expected third request to be throttled")
	}
	if !limiter.Allow("b") {
		t.Fatal("expected other keys to have their own bucket")
	}

	now = now.Add(30 * time.Second)
	if !limiter.Allow("a") {
		t.Fatal("expected a token to refill after half a minute")
	}
}

func TestRateLimiterSweepsIdleKeys(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	limiter := NewRateLimiter(1, time.Minute)
	limiter.now = func() time.Time { return now }

	limiter.Allow("a")
	limiter.Allow("b")
	if limiter.size() != 2 {
		t.Fatalf("expected 2 tracked keys, got %d", limiter.size())
	}

	now = now.Add(time.Hour)
	limiter.Allow("c")
	if limiter.size() != 1 {
		t.Fatalf("expected idle keys to be swept, got %d", limiter.size())
	}
}

func TestRateLimiterDisabled(t *testing.T) {
	limiter := NewRateLimiter(0, time.Minute)
	for i := 0; i < 100; i++ {
		if !limiter.Allow("a") {
			t.Fatal("expected disabled limiter to allow everything")
		}
	}

	var nilLimiter *RateLimiter
	if !nilLimiter.Allow("a") {
		t.Fatal("expected nil limiter to allow")
	}
}
