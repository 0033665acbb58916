package provider

import (
	"context"
	"testing"
	"time"
)

func TestRateLimiterAllowsBurst(t *testing.T) {
	limiter := NewRateLimiter(2, time.Minute)
	ctx := context.Background()

	start := time.Now()
	if err := limiter.Wait(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := limiter.Wait(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if time.Since(start) > 10*time.Millisecond {
		t.Fatalf("burst waits should return immediately")
	}
	if limiter.take() {
		t.Fatal("bucket should be empty after the burst")
	}
}

func TestRateLimiterRefill(t *testing.T) {
	limiter := NewRateLimiter(2, time.Minute)
	clock := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return clock }
	limiter.lastRefill = clock

	if !limiter.take() || !limiter.take() {
		t.Fatal("expected the initial burst available")
	}
	if limiter.take() {
		t.Fatal("bucket should be empty")
	}

	clock = clock.Add(90 * time.Second)
	if !limiter.take() {
		t.Fatal("expected one token back after one interval")
	}
	if limiter.take() {
		t.Fatal("only one interval elapsed, only one token")
	}

	clock = clock.Add(time.Hour)
	if !limiter.take() || !limiter.take() {
		t.Fatal("expected refill up to the burst size")
	}
	if limiter.take() {
		t.Fatal("refill must cap at the burst size")
	}
}

func TestRateLimiterHonorsContext(t *testing.T) {
	limiter := NewRateLimiter(1, time.Second)
	ctx := context.Background()
	_ = limiter.Wait(ctx)

	timeoutCtx, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
	defer cancel()

	start := time.Now()
	if err := limiter.Wait(timeoutCtx); err == nil {
		t.Fatal("expected context deadline error")
	}
	if time.Since(start) > 200*time.Millisecond {
		t.Fatalf("wait should stop after context cancellation")
	}
}
