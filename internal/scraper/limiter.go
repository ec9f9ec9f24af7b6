package scraper

import (
	"context"
	"time"
)

// DelayLimiter enforces a minimum wall-clock gap between consecutive
// fetch attempts against the target host. The reference timestamp is
// the completion of the previous attempt, recorded via MarkCompleted;
// the first attempt of a run never waits. Single sequential caller, no
// locking.
type DelayLimiter struct {
	delay         time.Duration
	clock         Clock
	lastCompleted time.Time
}

// NewDelayLimiter builds a limiter with the given minimum delay.
func NewDelayLimiter(delay time.Duration, clock Clock) *DelayLimiter {
	return &DelayLimiter{
		delay: delay,
		clock: clock,
	}
}

// Wait suspends the caller until at least the configured delay has
// passed since the last completed fetch. Returns early if ctx is done.
func (l *DelayLimiter) Wait(ctx context.Context) error {
	if l.lastCompleted.IsZero() {
		return nil
	}
	elapsed := l.clock.Now().Sub(l.lastCompleted)
	if elapsed >= l.delay {
		return nil
	}
	return pause(ctx, l.delay-elapsed)
}

// MarkCompleted records that a fetch attempt finished now.
func (l *DelayLimiter) MarkCompleted() {
	l.lastCompleted = l.clock.Now()
}

// pause blocks for delay or until ctx is done, whichever comes first.
func pause(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
