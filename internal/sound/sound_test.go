package sound

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackebrot/breaktime/pkg/scheduler"
)

type stubStrategy struct {
	name  string
	err   error
	calls int
}

func (s *stubStrategy) Name() string { return s.name }

func (s *stubStrategy) Play(context.Context, scheduler.SoundKind) error {
	s.calls++
	return s.err
}

func TestPlayerStopsAtFirstSuccess(t *testing.T) {
	first := &stubStrategy{name: "paplay", err: errors.New("no pulse")}
	second := &stubStrategy{name: "pw-play"}
	third := &stubStrategy{name: "bell"}

	p := NewPlayer(time.Second, first, second, third)
	require.NoError(t, p.Play(context.Background(), scheduler.SoundCheckin))

	assert.Equal(t, 1, first.calls)
	assert.Equal(t, 1, second.calls)
	assert.Zero(t, third.calls)
}

func TestPlayerAggregatesFailures(t *testing.T) {
	p := NewPlayer(time.Second,
		&stubStrategy{name: "paplay", err: errors.New("no pulse")},
		&stubStrategy{name: "bell", err: errors.New("stderr closed")},
	)

	err := p.Play(context.Background(), scheduler.SoundBoundaryComplete)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "paplay: no pulse")
	assert.Contains(t, err.Error(), "bell: stderr closed")
}

func TestPlayerWithoutStrategies(t *testing.T) {
	err := NewPlayer(0).Play(context.Background(), scheduler.SoundMessage)
	assert.ErrorIs(t, err, ErrNoStrategy)
}

func TestPlayerStopsWhenContextDone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	first := &stubStrategy{name: "paplay", err: context.Canceled}
	second := &stubStrategy{name: "bell"}

	err := NewPlayer(time.Second, first, second).Play(ctx, scheduler.SoundCheckin)
	assert.Error(t, err)
	assert.Zero(t, second.calls)
}

func TestEventID(t *testing.T) {
	assert.Equal(t, "bell", EventID(scheduler.SoundCheckin))
	assert.Equal(t, "complete", EventID(scheduler.SoundBoundaryComplete))
	assert.Equal(t, "message-new-instant", EventID(scheduler.SoundMessage))
	assert.Equal(t, "message-new-instant", EventID(scheduler.SoundKind(99)))
}

type runRecorder struct {
	name string
	args []string
	err  error
}

func (r *runRecorder) run(_ context.Context, name string, args ...string) error {
	r.name = name
	r.args = args
	return r.err
}

func found(name string) (string, error) { return "/usr/bin/" + name, nil }

func TestFilePlayerRunsProgramWithThemeFile(t *testing.T) {
	rec := &runRecorder{}
	c := FilePlayer("paplay", "/usr/share/sounds/freedesktop/stereo")
	c.lookPath = found
	c.stat = func(string) (os.FileInfo, error) { return nil, nil }
	c.run = rec.run

	require.NoError(t, c.Play(context.Background(), scheduler.SoundBoundaryComplete))
	assert.Equal(t, "paplay", rec.name)
	assert.Equal(t, []string{"/usr/share/sounds/freedesktop/stereo/complete.oga"}, rec.args)
}

func TestFilePlayerMissingFile(t *testing.T) {
	rec := &runRecorder{}
	c := FilePlayer("pw-play", "/nowhere")
	c.lookPath = found
	c.stat = func(string) (os.FileInfo, error) { return nil, fs.ErrNotExist }
	c.run = rec.run

	err := c.Play(context.Background(), scheduler.SoundCheckin)
	assert.ErrorIs(t, err, fs.ErrNotExist)
	assert.Empty(t, rec.name)
}

func TestCommandNotInstalled(t *testing.T) {
	c := Canberra()
	c.lookPath = func(string) (string, error) { return "", errors.New("executable file not found in $PATH") }

	err := c.Play(context.Background(), scheduler.SoundCheckin)
	assert.ErrorContains(t, err, "canberra-gtk-play not installed")
}

func TestCanberraUsesEventID(t *testing.T) {
	rec := &runRecorder{}
	c := Canberra()
	c.lookPath = found
	c.run = rec.run

	require.NoError(t, c.Play(context.Background(), scheduler.SoundMessage))
	assert.Equal(t, []string{"--id", "message-new-instant"}, rec.args)
}

func TestParseCommandSubstitutesFile(t *testing.T) {
	rec := &runRecorder{}
	c, err := ParseCommand(`mpv --really-quiet --volume=50 "{file}"`, "/sounds")
	require.NoError(t, err)
	c.lookPath = found
	c.run = rec.run

	require.NoError(t, c.Play(context.Background(), scheduler.SoundCheckin))
	assert.Equal(t, "custom:mpv", c.Name())
	assert.Equal(t, "mpv", rec.name)
	assert.Equal(t, []string{"--really-quiet", "--volume=50", "/sounds/bell.oga"}, rec.args)
}

func TestParseCommandErrors(t *testing.T) {
	_, err := ParseCommand("   ", "/sounds")
	assert.ErrorIs(t, err, ErrEmptyCommand)

	_, err = ParseCommand(`mpv "unterminated`, "/sounds")
	assert.Error(t, err)
}

func TestBellWritesBellCharacter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewBell(&buf).Play(context.Background(), scheduler.SoundCheckin))
	assert.Equal(t, "\a", buf.String())
}

func TestDefaultStrategiesOrder(t *testing.T) {
	strategies, err := DefaultStrategies(Options{Dir: "/sounds", Command: "mpv {file}"})
	require.NoError(t, err)

	var names []string
	for _, s := range strategies {
		names = append(names, s.Name())
	}
	assert.Equal(t, []string{"custom:mpv", "paplay", "pw-play", "canberra-gtk-play", "bell"}, names)

	strategies, err = DefaultStrategies(Options{Dir: "/sounds"})
	require.NoError(t, err)
	assert.Len(t, strategies, 4)
}
