package server

import (
	"testing"
	"time"
)

func TestTokenBucketExhaustsAndRefills(t *testing.T) {
	bucket := newTokenBucket(100, 2)

	if !bucket.Allow() || !bucket.Allow() {
		t.Fatal("expected burst capacity to be available")
	}
	if bucket.Allow() {
		t.Fatal("expected bucket to be empty after burst")
	}

	time.Sleep(30 * time.Millisecond)
	if !bucket.Allow() {
		t.Fatal("expected bucket to refill over time")
	}
}

func TestRateLimiterGlobalDisabledByDefault(t *testing.T) {
	rl := newRateLimiter(RateLimitConfig{})
	for i := 0; i < 100; i++ {
		if !rl.AllowRequest() {
			t.Fatal("expected unlimited requests without a configured rate")
		}
	}
}

func TestRateLimiterLoginThrottle(t *testing.T) {
	rl := newRateLimiter(RateLimitConfig{LoginLimit: 2, LoginWindow: time.Minute})

	for i := 0; i < 2; i++ {
		allowed, _, err := rl.AllowLogin("203.0.113.9")
		if err != nil {
			t.Fatalf("AllowLogin returned error: %v", err)
		}
		if !allowed {
			t.Fatalf("expected attempt %d to be allowed", i+1)
		}
	}

	allowed, retryAfter, err := rl.AllowLogin("203.0.113.9")
	if err != nil {
		t.Fatalf("AllowLogin returned error: %v", err)
	}
	if allowed {
		t.Fatal("expected third attempt to be throttled")
	}
	if retryAfter <= 0 {
		t.Fatalf("expected a retry-after hint, got %v", retryAfter)
	}

	// a different address has its own bucket
	otherAllowed, _, err := rl.AllowLogin("198.51.100.1")
	if err != nil {
		t.Fatalf("AllowLogin returned error: %v", err)
	}
	if !otherAllowed {
		t.Fatal("expected other address to be unaffected")
	}
}

func TestRateLimiterLoginDisabledWithoutLimit(t *testing.T) {
	rl := newRateLimiter(RateLimitConfig{})
	for i := 0; i < 50; i++ {
		allowed, _, err := rl.AllowLogin("203.0.113.9")
		if err != nil {
			t.Fatalf("AllowLogin returned error: %v", err)
		}
		if !allowed {
			t.Fatal("expected unlimited logins without a configured limit")
		}
	}
}
