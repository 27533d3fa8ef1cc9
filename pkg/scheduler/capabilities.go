package scheduler

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
)

// Urgency is the severity tag attached to a notification.
type Urgency int

const (
	UrgencyNormal Urgency = iota
	UrgencyCritical
)

func (u Urgency) String() string {
	if u == UrgencyCritical {
		return "critical"
	}
	return "normal"
}

// SoundKind selects which alert a SoundPlayer plays.
type SoundKind int

const (
	SoundCheckin SoundKind = iota
	SoundBoundaryComplete
	SoundMessage
)

func (k SoundKind) String() string {
	switch k {
	case SoundCheckin:
		return "checkin"
	case SoundBoundaryComplete:
		return "boundary_complete"
	case SoundMessage:
		return "message"
	default:
		return "unknown"
	}
}

// Notification is a single reminder surfaced to the user.
type Notification struct {
	Title   string
	Body    string
	Urgency Urgency

	// IconPath is optional; an empty path lets the notifier pick its default.
	IconPath string

	// Replaceable marks notifications that may replace the previous
	// replaceable one on screen instead of stacking.
	Replaceable bool
}

// Notifier surfaces reminders to the user.
type Notifier interface {
	// Show displays the notification and returns once it has been handed off.
	Show(ctx context.Context, n Notification) error
}

// SoundPlayer plays audible alerts.
type SoundPlayer interface {
	// Play plays the alert for kind. Errors are reported, never fatal.
	Play(ctx context.Context, kind SoundKind) error
}

// Clock is the subset of clockwork.Clock the scheduler needs.
type Clock interface {
	Now() time.Time
	NewTimer(d time.Duration) clockwork.Timer
}

// RandomSource yields jittered check-in intervals.
type RandomSource interface {
	// Interval returns a duration uniformly distributed in [min, max].
	Interval(min, max time.Duration) time.Duration
}

type nopPlayer struct{}

func (nopPlayer) Play(context.Context, SoundKind) error { return nil }

// NopPlayer is a SoundPlayer that never makes a sound.
var NopPlayer SoundPlayer = nopPlayer{}
