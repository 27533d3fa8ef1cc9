package fib

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackoffFollowsFibonacci(t *testing.T) {
	b := NewBackoff(time.Second)

	want := []time.Duration{1, 1, 2, 3, 5, 8, 13}
	for i, w := range want {
		assert.Equal(t, w*time.Second, b.Next(), "step %d", i+1)
	}
}

func TestBackoffCapsGrowth(t *testing.T) {
	b := NewBackoff(time.Millisecond)

	var last time.Duration
	for range maxStep + 5 {
		last = b.Next()
	}
	assert.Equal(t, 144*time.Millisecond, last)
	assert.Equal(t, last, b.Next())
}

func TestBackoffReset(t *testing.T) {
	b := NewBackoff(time.Second)
	b.Next()
	b.Next()
	b.Next()

	b.Reset()
	assert.Equal(t, time.Second, b.Next())
}

func TestRetrySucceedsAfterFailures(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), 5, NewBackoff(time.Millisecond), func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("not yet")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryGivesUp(t *testing.T) {
	sentinel := errors.New("bus unavailable")

	calls := 0
	err := Retry(context.Background(), 3, NewBackoff(time.Millisecond), func(context.Context) error {
		calls++
		return sentinel
	})

	assert.ErrorIs(t, err, sentinel)
	assert.Equal(t, 3, calls)
}

func TestRetryStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	err := Retry(ctx, 10, NewBackoff(time.Hour), func(context.Context) error {
		calls++
		cancel()
		return errors.New("fail")
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestRetryNonPositiveAttemptsRunsOnce(t *testing.T) {
	calls := 0
	_ = Retry(context.Background(), 0, NewBackoff(time.Millisecond), func(context.Context) error {
		calls++
		return errors.New("fail")
	})
	assert.Equal(t, 1, calls)
}
