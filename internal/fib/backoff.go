// Package fib provides retry backoff whose delays follow the Fibonacci
// sequence.
package fib

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hackebrot/go-fibonacci"
)

// maxStep bounds the sequence index so delays stop growing.
const maxStep = 12

// Backoff yields delays of unit*F(1), unit*F(2), ... capped at unit*F(maxStep).
type Backoff struct {
	unit     time.Duration
	step     int
	strategy fibonacci.Strategy
}

// NewBackoff creates a Backoff that scales the sequence by unit.
func NewBackoff(unit time.Duration) *Backoff {
	return &Backoff{
		unit:     unit,
		step:     1,
		strategy: fibonacci.NewRecursive(),
	}
}

// Next returns the next delay in the sequence.
func (b *Backoff) Next() time.Duration {
	d := b.unit * time.Duration(b.strategy.Compute(b.step))
	if b.step < maxStep {
		b.step++
	}
	return d
}

// Reset restarts the sequence.
func (b *Backoff) Reset() {
	b.step = 1
}

// Retry calls fn up to attempts times, waiting b.Next() between failures.
// It returns nil on the first success, ctx.Err() if ctx ends while waiting,
// and the last error otherwise.
func Retry(ctx context.Context, attempts int, b *Backoff, fn func(context.Context) error) error {
	if attempts <= 0 {
		attempts = 1
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = fn(ctx); err == nil {
			return nil
		}
		if attempt == attempts {
			break
		}

		delay := b.Next()
		slog.Warn("attempt failed, retrying", "attempt", attempt, "attempts", attempts, "delay", delay, "error", err)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	return fmt.Errorf("giving up after %d attempts: %w", attempts, err)
}
