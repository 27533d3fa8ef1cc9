package scheduler

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"
)

var epoch = time.Date(2026, time.January, 5, 9, 0, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []Notification
	err  error
}

func (r *recordingNotifier) Show(_ context.Context, n Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, n)
	return r.err
}

func (r *recordingNotifier) notifications() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification(nil), r.sent...)
}

type recordingPlayer struct {
	mu     sync.Mutex
	played []SoundKind
	err    error
}

func (r *recordingPlayer) Play(_ context.Context, kind SoundKind) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.played = append(r.played, kind)
	return r.err
}

func (r *recordingPlayer) sounds() []SoundKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]SoundKind(nil), r.played...)
}

// fixedRandom always returns the same interval, clamped to the requested range.
type fixedRandom time.Duration

func (f fixedRandom) Interval(lo, hi time.Duration) time.Duration {
	return min(max(time.Duration(f), lo), hi)
}

// scenarioTimings is the 90/20 minute rhythm with 4-6 minute check-ins.
func scenarioTimings() Timings {
	return Timings{
		Work:        90 * time.Minute,
		Rest:        20 * time.Minute,
		MinInterval: 4 * time.Minute,
		MaxInterval: 6 * time.Minute,
		MaxSleep:    time.Minute,
	}
}
