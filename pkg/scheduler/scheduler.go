package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// ErrNoNotifier is returned by New when no Notifier is supplied.
var ErrNoNotifier = errors.New("scheduler: notifier is required")

// State is a snapshot of the work/rest bookkeeping.
type State struct {
	Running      bool
	Resting      bool
	CheckinCount uint
	LastBoundary time.Time

	// NextCheckin is only meaningful while Resting is false.
	NextCheckin time.Time
}

type eventKind int

const (
	eventNone eventKind = iota
	eventBreakStart
	eventBreakEnd
	eventCheckin
)

func (k eventKind) String() string {
	switch k {
	case eventBreakStart:
		return "break_start"
	case eventBreakEnd:
		return "break_end"
	case eventCheckin:
		return "checkin"
	default:
		return "none"
	}
}

// event is a transition detected by advance, carried out of the lock so its
// side effects run without blocking Stop.
type event struct {
	kind         eventKind
	checkinCount uint
	untilRest    time.Duration
}

// Options configures a Scheduler. Only Notifier is required.
type Options struct {
	Timings  Timings
	Notifier Notifier
	Sound    SoundPlayer
	Clock    Clock
	Random   RandomSource
	IconPath string
	Logger   *slog.Logger
}

// Scheduler drives the work/rest cycle and the check-in cadence within a
// work period. All state lives behind mu; side effects run on the goroutine
// that called Start, one at a time, in detection order.
type Scheduler struct {
	mu    sync.Mutex
	state State

	timings  Timings
	notifier Notifier
	sound    SoundPlayer
	clock    Clock
	random   RandomSource
	iconPath string
	logger   *slog.Logger

	wake chan struct{}
}

// New creates a Scheduler in the Working phase, starting now.
func New(opts Options) (*Scheduler, error) {
	if opts.Notifier == nil {
		return nil, ErrNoNotifier
	}
	if opts.Timings == (Timings{}) {
		opts.Timings = DefaultTimings()
	}
	if err := opts.Timings.Validate(); err != nil {
		return nil, err
	}
	if opts.Sound == nil {
		opts.Sound = NopPlayer
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Random == nil {
		opts.Random = NewUniformSource(uint64(time.Now().UnixNano()))
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	s := &Scheduler{
		timings:  opts.Timings,
		notifier: opts.Notifier,
		sound:    opts.Sound,
		clock:    opts.Clock,
		random:   opts.Random,
		iconPath: opts.IconPath,
		logger:   opts.Logger,
		wake:     make(chan struct{}, 1),
	}

	now := s.now()
	s.state = State{
		Running:      true,
		LastBoundary: now,
		NextCheckin:  now.Add(s.interval()),
	}

	return s, nil
}

// Start runs the control loop until Stop is called or ctx is done.
//
// Notifications and sounds are issued synchronously, so their latency delays
// the next deadline check. The bundled implementations bound each call with a
// timeout of a few seconds, well under the minute-scale granularity here.
func (s *Scheduler) Start(ctx context.Context) {
	snap := s.Snapshot()
	s.logger.Info("starting break scheduler",
		"work_period", s.timings.Work,
		"rest_period", s.timings.Rest,
		"next_checkin", snap.NextCheckin,
	)

	for {
		ev, deadline, running := s.advance(s.now())
		if !running {
			s.logger.Info("scheduler stopped")
			return
		}

		if ev.kind != eventNone {
			s.emit(ctx, ev)
			continue
		}

		s.sleepUntil(ctx, deadline)
	}
}

// Stop requests shutdown and wakes a sleeping loop. It is idempotent and safe
// to call from any goroutine, including a signal handler goroutine.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	s.state.Running = false
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Snapshot returns a copy of the current state.
func (s *Scheduler) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// advance evaluates the state machine at now. It returns the event that fired,
// if any, otherwise the next deadline to sleep towards. Phase boundaries take
// precedence over check-ins; at most one event fires per call.
func (s *Scheduler) advance(now time.Time) (event, time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := &s.state
	if !st.Running {
		return event{}, time.Time{}, false
	}

	if now.Before(st.LastBoundary) {
		s.logger.Warn("clock moved backwards, restarting current phase",
			"last_boundary", st.LastBoundary,
			"now", now,
		)
		st.LastBoundary = now
		if !st.Resting {
			st.NextCheckin = now.Add(s.interval())
		}
	}

	if st.Resting {
		restEnd := st.LastBoundary.Add(s.timings.Rest)
		if now.Before(restEnd) {
			return event{}, restEnd, true
		}

		st.Resting = false
		st.LastBoundary = now
		st.CheckinCount = 0
		st.NextCheckin = now.Add(s.interval())
		return event{kind: eventBreakEnd}, time.Time{}, true
	}

	workEnd := st.LastBoundary.Add(s.timings.Work)
	if !now.Before(workEnd) {
		st.Resting = true
		st.LastBoundary = now
		return event{kind: eventBreakStart}, time.Time{}, true
	}

	if !now.Before(st.NextCheckin) {
		st.CheckinCount++
		st.NextCheckin = now.Add(s.interval())
		return event{
			kind:         eventCheckin,
			checkinCount: st.CheckinCount,
			untilRest:    workEnd.Sub(now),
		}, time.Time{}, true
	}

	if st.NextCheckin.Before(workEnd) {
		return event{}, st.NextCheckin, true
	}
	return event{}, workEnd, true
}

// sleepUntil suspends until deadline, a Stop call, or ctx is done, whichever
// comes first. A single suspension never exceeds timings.MaxSleep.
func (s *Scheduler) sleepUntil(ctx context.Context, deadline time.Time) {
	d := deadline.Sub(s.now())
	if d <= 0 {
		return
	}
	if s.timings.MaxSleep > 0 && d > s.timings.MaxSleep {
		d = s.timings.MaxSleep
	}

	s.logger.Debug("sleeping until next event", "deadline", deadline, "sleep", d)

	timer := s.clock.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		s.logger.Info("context cancelled, stopping scheduler")
		s.Stop()
	case <-s.wake:
	case <-timer.Chan():
	}
}

// emit performs the side effects for ev. Failures are logged and never change
// scheduling state.
func (s *Scheduler) emit(ctx context.Context, ev event) {
	switch ev.kind {
	case eventBreakStart:
		s.logger.Info("work period complete, starting break", "rest_period", s.timings.Rest)
		s.notify(ctx, ev, Notification{
			Title: "Time for a break",
			Body: fmt.Sprintf("You have been working for %s. Step away for %s.",
				formatMinutes(s.timings.Work), formatMinutes(s.timings.Rest)),
			Urgency:  UrgencyCritical,
			IconPath: s.iconPath,
		})
		s.play(ctx, ev, SoundBoundaryComplete)

	case eventBreakEnd:
		s.logger.Info("break complete, back to work", "work_period", s.timings.Work)
		s.notify(ctx, ev, Notification{
			Title:    "Back to work",
			Body:     fmt.Sprintf("Break is over. Next break in %s.", formatMinutes(s.timings.Work)),
			Urgency:  UrgencyNormal,
			IconPath: s.iconPath,
		})
		s.play(ctx, ev, SoundBoundaryComplete)

	case eventCheckin:
		s.logger.Info("check-in", "checkin_count", ev.checkinCount, "until_rest", ev.untilRest)
		s.notify(ctx, ev, Notification{
			Title:       "Check-in",
			Body:        fmt.Sprintf("Check-in #%d. %s until your break.", ev.checkinCount, formatMinutes(ev.untilRest)),
			Urgency:     UrgencyNormal,
			IconPath:    s.iconPath,
			Replaceable: true,
		})
		s.play(ctx, ev, SoundCheckin)
	}
}

func (s *Scheduler) notify(ctx context.Context, ev event, n Notification) {
	if err := s.notifier.Show(ctx, n); err != nil {
		s.logger.Warn("failed to show notification", "event", ev.kind.String(), "urgency", n.Urgency.String(), "error", err)
	}
}

func (s *Scheduler) play(ctx context.Context, ev event, kind SoundKind) {
	if err := s.sound.Play(ctx, kind); err != nil {
		s.logger.Warn("failed to play sound", "event", ev.kind.String(), "sound", kind.String(), "error", err)
	}
}

// now reads the clock with the monotonic reading stripped, so deadlines
// follow the wall clock across system suspend.
func (s *Scheduler) now() time.Time {
	return s.clock.Now().Round(0)
}

func (s *Scheduler) interval() time.Duration {
	return s.random.Interval(s.timings.MinInterval, s.timings.MaxInterval)
}

// formatMinutes renders d rounded to whole minutes.
func formatMinutes(d time.Duration) string {
	m := int(d.Round(time.Minute) / time.Minute)
	if m < 1 {
		return "less than a minute"
	}
	if m == 1 {
		return "1 minute"
	}
	return fmt.Sprintf("%d minutes", m)
}
