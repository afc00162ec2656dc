package workflow

import (
	"context"
	"sync"
	"time"
)

// rateLimiter enforces a sliding-window ceiling on stage dequeues so a burst
// of queued jobs cannot overwhelm the external service a stage wraps.
type rateLimiter struct {
	limit  int
	window time.Duration
	now    func() time.Time

	mu     sync.Mutex
	starts []time.Time
}

func newRateLimiter(limit int, window time.Duration) *rateLimiter {
	return &rateLimiter{limit: limit, window: window, now: time.Now}
}

// Acquire blocks until a slot is available within the window or the context
// is cancelled. A limiter with no limit admits immediately.
func (r *rateLimiter) Acquire(ctx context.Context) error {
	if r == nil || r.limit <= 0 || r.window <= 0 {
		return ctx.Err()
	}
	for {
		wait := r.tryReserve()
		if wait <= 0 {
			return nil
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// tryReserve records a start when under the limit, otherwise returns how long
// until the oldest recorded start slides out of the window.
func (r *rateLimiter) tryReserve() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	cutoff := now.Add(-r.window)
	kept := r.starts[:0]
	for _, start := range r.starts {
		if start.After(cutoff) {
			kept = append(kept, start)
		}
	}
	r.starts = kept

	if len(r.starts) < r.limit {
		r.starts = append(r.starts, now)
		return 0
	}
	return r.starts[0].Sub(cutoff)
}
