package scheduler

import (
	"errors"
	"fmt"
	"time"
)

const (
	// WorkPeriod is how long a work phase lasts before a break is enforced.
	WorkPeriod = 90 * time.Minute

	// RestPeriod is how long a break lasts.
	RestPeriod = 20 * time.Minute

	// MinCheckinInterval and MaxCheckinInterval bound the randomized spacing
	// between check-in reminders during a work phase.
	MinCheckinInterval = 4 * time.Minute
	MaxCheckinInterval = 6 * time.Minute

	// MaxSleep caps a single suspension so wall-clock jumps (suspend, NTP
	// steps) are noticed within a minute.
	MaxSleep = 60 * time.Second
)

// ErrInvalidTimings is returned when a Timings value cannot drive the cycle.
var ErrInvalidTimings = errors.New("invalid timings")

// Timings holds the durations that shape the work/rest rhythm.
type Timings struct {
	Work        time.Duration
	Rest        time.Duration
	MinInterval time.Duration
	MaxInterval time.Duration
	MaxSleep    time.Duration
}

// DefaultTimings returns the fixed production rhythm.
func DefaultTimings() Timings {
	return Timings{
		Work:        WorkPeriod,
		Rest:        RestPeriod,
		MinInterval: MinCheckinInterval,
		MaxInterval: MaxCheckinInterval,
		MaxSleep:    MaxSleep,
	}
}

// Validate reports whether t describes a usable rhythm.
func (t Timings) Validate() error {
	switch {
	case t.Work <= 0:
		return fmt.Errorf("%w: work period must be positive, got %s", ErrInvalidTimings, t.Work)
	case t.Rest <= 0:
		return fmt.Errorf("%w: rest period must be positive, got %s", ErrInvalidTimings, t.Rest)
	case t.MinInterval <= 0:
		return fmt.Errorf("%w: minimum interval must be positive, got %s", ErrInvalidTimings, t.MinInterval)
	case t.MaxInterval < t.MinInterval:
		return fmt.Errorf("%w: maximum interval %s is below minimum %s", ErrInvalidTimings, t.MaxInterval, t.MinInterval)
	case t.MaxSleep < 0:
		return fmt.Errorf("%w: max sleep must not be negative, got %s", ErrInvalidTimings, t.MaxSleep)
	}
	return nil
}
