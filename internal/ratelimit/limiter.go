package ratelimit

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

// Limiter paces outbound requests for one source: a minimum inter-request
// interval plus jitter, and a suspension gate for blocked sources. State is
// scoped per source, so one blocked board never stalls the others.
type Limiter struct {
	interval time.Duration
	jitter   float64 // fraction of interval added as random extra delay

	mu        sync.Mutex
	next      time.Time
	suspended time.Time
}

// NewLimiter creates a Limiter with the given minimum interval and jitter
// fraction (0 disables jitter).
func NewLimiter(interval time.Duration, jitter float64) *Limiter {
	if jitter < 0 {
		jitter = 0
	}
	return &Limiter{interval: interval, jitter: jitter}
}

// Wait blocks until the next request slot, or returns early when ctx is
// done. It reserves the slot before sleeping so concurrent callers space out
// instead of bunching.
func (l *Limiter) Wait(ctx context.Context) error {
	l.mu.Lock()
	now := time.Now()
	slot := l.next
	if slot.Before(now) {
		slot = now
	}
	gap := l.interval
	if l.jitter > 0 {
		gap += time.Duration(rand.Float64() * l.jitter * float64(l.interval))
	}
	l.next = slot.Add(gap)
	l.mu.Unlock()

	delay := time.Until(slot)
	if delay <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Suspend puts the source into cool-down for d. Used on BlockedError;
// repeated immediate retries against a block signal are a correctness bug,
// not resilience.
func (l *Limiter) Suspend(d time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	until := time.Now().Add(d)
	if until.After(l.suspended) {
		l.suspended = until
	}
}

// Suspended reports whether the source is currently in cool-down.
func (l *Limiter) Suspended() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return time.Now().Before(l.suspended)
}
