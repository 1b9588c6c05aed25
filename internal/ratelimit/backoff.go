package ratelimit

import (
	"context"
	"time"
)

// Backoff is the retry policy for transient fetch failures: explicit state
// inspected before each attempt, not nested retry loops, so the policy is
// testable without network calls.
type Backoff struct {
	Base        time.Duration // delay before the first retry
	Max         time.Duration // cap on any single delay
	MaxAttempts int           // total attempts including the first
}

// DefaultBackoff matches the documented retry bound: 3 attempts with
// exponential spacing.
func DefaultBackoff() Backoff {
	return Backoff{Base: 2 * time.Second, Max: 30 * time.Second, MaxAttempts: 3}
}

// Delay returns the wait before retry number attempt (0-based: Delay(0) is
// the wait after the first failure).
func (b Backoff) Delay(attempt int) time.Duration {
	d := b.Base << uint(attempt)
	if b.Max > 0 && d > b.Max {
		return b.Max
	}
	return d
}

// Exhausted reports whether attempt (0-based) was the last allowed one.
func (b Backoff) Exhausted(attempt int) bool {
	return attempt >= b.MaxAttempts-1
}

// Sleep waits for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
