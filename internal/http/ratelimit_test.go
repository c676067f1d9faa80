package http

import (
	"testing"
	"time"
)

func TestRateLimiter_Window(t *testing.T) {
	now := time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)
	rl := newRateLimiter(3)
	defer rl.stop()
	rl.now = func() time.Time { return now }
	metrics := &securityMetrics{}

	for i := 0; i < 3; i++ {
		if !rl.allow("10.0.0.1", metrics) {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if rl.allow("10.0.0.1", metrics) {
		t.Fatal("fourth request should be rejected")
	}
	if !rl.allow("10.0.0.2", metrics) {
		t.Error("other clients have their own window")
	}
	if got := metrics.snapshot().RateLimitHits; got != 1 {
		t.Errorf("RateLimitHits = %d, want 1", got)
	}

	now = now.Add(20 * time.Second)
	if got := rl.retryAfter("10.0.0.1"); got != 40 {
		t.Errorf("retryAfter = %d, want 40", got)
	}

	now = now.Add(40 * time.Second)
	if !rl.allow("10.0.0.1", metrics) {
		t.Error("a new window should allow requests again")
	}
}

func TestRateLimiter_DefaultLimit(t *testing.T) {
	rl := newRateLimiter(0)
	defer rl.stop()
	if rl.limit != defaultRateLimit {
		t.Errorf("limit = %d, want %d", rl.limit, defaultRateLimit)
	}
}

func TestRateLimiter_Cleanup(t *testing.T) {
	now := time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)
	rl := newRateLimiter(10)
	rl.now = func() time.Time { return now }

	rl.allow("10.0.0.1", nil)
	now = now.Add(5 * time.Minute)
	rl.allow("10.0.0.2", nil)
	now = now.Add(6 * time.Minute)

	if removed := rl.cleanupStaleEntries(); removed != 1 {
		t.Errorf("cleanupStaleEntries() = %d, want 1", removed)
	}
	if _, ok := rl.clients["10.0.0.2"]; !ok {
		t.Error("recent client should be kept")
	}

	rl.stop()
	rl.stop()
}
