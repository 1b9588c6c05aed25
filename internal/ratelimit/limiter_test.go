package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestLimiterSpacesRequests(t *testing.T) {
	l := NewLimiter(30*time.Millisecond, 0)
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 3; i++ {
		if err := l.Wait(ctx); err != nil {
			t.Fatalf("Wait: %v", err)
		}
	}
	elapsed := time.Since(start)

	// First call is immediate; the next two each wait the interval.
	if elapsed < 55*time.Millisecond {
		t.Errorf("3 waits took %v, want at least ~60ms of spacing", elapsed)
	}
}

func TestLimiterWaitHonorsCancellation(t *testing.T) {
	l := NewLimiter(5*time.Second, 0)
	ctx, cancel := context.WithCancel(context.Background())

	if err := l.Wait(ctx); err != nil {
		t.Fatalf("first Wait: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- l.Wait(ctx) }()
	cancel()

	select {
	case err := <-done:
		if err == nil {
			t.Error("Wait returned nil after cancellation")
		}
	case <-time.After(time.Second):
		t.Fatal("Wait did not return promptly after cancellation")
	}
}

func TestSuspendIsScopedPerLimiter(t *testing.T) {
	blocked := NewLimiter(time.Millisecond, 0)
	healthy := NewLimiter(time.Millisecond, 0)

	blocked.Suspend(time.Hour)

	if !blocked.Suspended() {
		t.Error("suspended limiter should report suspended")
	}
	if healthy.Suspended() {
		t.Error("suspension must not leak to another source's limiter")
	}
}

func TestSuspendExpires(t *testing.T) {
	l := NewLimiter(time.Millisecond, 0)
	l.Suspend(10 * time.Millisecond)
	if !l.Suspended() {
		t.Fatal("should be suspended immediately after Suspend")
	}
	time.Sleep(20 * time.Millisecond)
	if l.Suspended() {
		t.Error("suspension should expire")
	}
}

func TestBackoffDelayGrowth(t *testing.T) {
	b := Backoff{Base: time.Second, Max: 10 * time.Second, MaxAttempts: 3}

	testCases := []struct {
		attempt int
		want    time.Duration
	}{
		{0, time.Second},
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{4, 10 * time.Second}, // capped
	}
	for _, tc := range testCases {
		if got := b.Delay(tc.attempt); got != tc.want {
			t.Errorf("Delay(%d) = %v, want %v", tc.attempt, got, tc.want)
		}
	}
}

func TestBackoffExhausted(t *testing.T) {
	b := Backoff{Base: time.Second, MaxAttempts: 3}
	if b.Exhausted(0) || b.Exhausted(1) {
		t.Error("attempts 0 and 1 should not be exhausted with 3 allowed")
	}
	if !b.Exhausted(2) {
		t.Error("attempt 2 is the last of 3 and should be exhausted")
	}
}

func TestSleepCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := Sleep(ctx, time.Minute); err == nil {
		t.Error("Sleep should return the context error when cancelled")
	}
}
