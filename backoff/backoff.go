// Package backoff provides delay strategies and a retry loop for replaying
// ranked writes against a store. A ranked upsert is idempotent, so the whole
// write can be re-issued after a transient store failure.
package backoff

import (
	"context"
	"math"
	"math/rand/v2"
	"time"
)

// Strategy computes the delay before a retry attempt.
type Strategy interface {
	// Delay returns how long to wait before retry n (1-indexed).
	Delay(retry int) time.Duration
}

// ──────────────────────────────────────────────────
// Constant
// ──────────────────────────────────────────────────

// Constant waits the same interval before every retry.
type Constant struct {
	Interval time.Duration
}

// NewConstant creates a constant strategy.
func NewConstant(interval time.Duration) *Constant {
	return &Constant{Interval: interval}
}

// Delay returns the fixed interval.
func (c *Constant) Delay(_ int) time.Duration {
	return c.Interval
}

// ──────────────────────────────────────────────────
// Exponential
// ──────────────────────────────────────────────────

// Exponential doubles the delay with each retry, capped at Max.
// With Jitter set the delay is drawn uniformly from [0, cap].
type Exponential struct {
	Initial time.Duration
	Max     time.Duration
	Jitter  bool
}

// NewExponential creates an exponential strategy without jitter.
func NewExponential(initial, maxDelay time.Duration) *Exponential {
	return &Exponential{Initial: initial, Max: maxDelay}
}

// Delay returns Initial * 2^(retry-1), capped at Max, optionally jittered.
func (e *Exponential) Delay(retry int) time.Duration {
	if retry < 1 {
		retry = 1
	}
	d := float64(e.Initial) * math.Pow(2, float64(retry-1))
	if e.Max > 0 && d > float64(e.Max) {
		d = float64(e.Max)
	}
	if e.Jitter {
		d = rand.Float64() * d //nolint:gosec // jitter does not need crypto rand
	}
	return time.Duration(d)
}

// DefaultStrategy is the strategy used when a writer enables retries
// without naming one: jittered exponential from 50ms up to 2s.
func DefaultStrategy() Strategy {
	return &Exponential{Initial: 50 * time.Millisecond, Max: 2 * time.Second, Jitter: true}
}

// ──────────────────────────────────────────────────
// Retry loop
// ──────────────────────────────────────────────────

// Retry calls fn up to attempts times, sleeping s.Delay between calls.
// fn receives the 1-indexed attempt number. The last error is returned
// when every attempt fails; ctx cancellation during a wait returns the
// context error. attempts < 1 is treated as 1. A nil s uses
// DefaultStrategy.
func Retry(ctx context.Context, s Strategy, attempts int, fn func(ctx context.Context, attempt int) error) error {
	if attempts < 1 {
		attempts = 1
	}
	if s == nil {
		s = DefaultStrategy()
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = fn(ctx, attempt); err == nil {
			return nil
		}
		if attempt == attempts {
			break
		}

		timer := time.NewTimer(s.Delay(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return err
}
