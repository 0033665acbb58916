package provider

import (
	"context"
	"sync"
	"time"
)

// RateLimiter is a token bucket sized for polite use of the public
// market data APIs: up to burst calls go through immediately, then one
// token comes back per refillEvery.
type RateLimiter struct {
	mu          sync.Mutex
	now         func() time.Time
	tokens      int
	burst       int
	refillEvery time.Duration
	lastRefill  time.Time
}

// NewRateLimiter creates a limiter allowing burst calls, refilled one
// token per refillEvery.
func NewRateLimiter(burst int, refillEvery time.Duration) *RateLimiter {
	r := &RateLimiter{
		now:         time.Now,
		tokens:      burst,
		burst:       burst,
		refillEvery: refillEvery,
	}
	r.lastRefill = r.now()
	return r
}

// Wait blocks until a token is available or ctx is done.
func (r *RateLimiter) Wait(ctx context.Context) error {
	for {
		if r.take() {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(r.refillEvery):
		}
	}
}

func (r *RateLimiter) take() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	elapsed := r.now().Sub(r.lastRefill)
	if refilled := int(elapsed / r.refillEvery); refilled > 0 {
		r.tokens += refilled
		if r.tokens > r.burst {
			r.tokens = r.burst
		}
		r.lastRefill = r.lastRefill.Add(time.Duration(refilled) * r.refillEvery)
	}

	if r.tokens > 0 {
		r.tokens--
		return true
	}
	return false
}
