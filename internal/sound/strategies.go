package sound

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/kballard/go-shellquote"

	"github.com/hackebrot/breaktime/pkg/scheduler"
)

// FilePlaceholder in a custom command is replaced with the sound file path.
const FilePlaceholder = "{file}"

// ErrEmptyCommand is returned by ParseCommand for a blank command line.
var ErrEmptyCommand = errors.New("empty sound command")

// theme maps each alert to its freedesktop sound theme event id.
var theme = map[scheduler.SoundKind]string{
	scheduler.SoundCheckin:          "bell",
	scheduler.SoundBoundaryComplete: "complete",
	scheduler.SoundMessage:          "message-new-instant",
}

// EventID returns the freedesktop sound theme id for kind.
func EventID(kind scheduler.SoundKind) string {
	if id, ok := theme[kind]; ok {
		return id
	}
	return theme[scheduler.SoundMessage]
}

type runFunc func(ctx context.Context, name string, args ...string) error

func runCommand(ctx context.Context, name string, args ...string) error {
	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	if err != nil {
		if msg := strings.TrimSpace(string(out)); msg != "" {
			return fmt.Errorf("%w: %s", err, msg)
		}
		return err
	}
	return nil
}

// Command plays alerts by running an external program.
type Command struct {
	name string
	argv func(kind scheduler.SoundKind) ([]string, error)

	lookPath func(string) (string, error)
	stat     func(string) (os.FileInfo, error)
	run      runFunc
}

func newCommand(name string, argv func(scheduler.SoundKind) ([]string, error)) *Command {
	return &Command{
		name:     name,
		argv:     argv,
		lookPath: exec.LookPath,
		stat:     os.Stat,
		run:      runCommand,
	}
}

// Name implements Strategy.
func (c *Command) Name() string { return c.name }

// Play implements Strategy.
func (c *Command) Play(ctx context.Context, kind scheduler.SoundKind) error {
	argv, err := c.argv(kind)
	if err != nil {
		return err
	}
	if _, err := c.lookPath(argv[0]); err != nil {
		return fmt.Errorf("%s not installed: %w", argv[0], err)
	}
	return c.run(ctx, argv[0], argv[1:]...)
}

// fileArgs builds argv for players that take a sound file as the last
// argument, checking that the file exists first.
func (c *Command) fileArgs(dir string, prefix ...string) func(scheduler.SoundKind) ([]string, error) {
	return func(kind scheduler.SoundKind) ([]string, error) {
		path := filepath.Join(dir, EventID(kind)+".oga")
		if _, err := c.stat(path); err != nil {
			return nil, fmt.Errorf("sound file: %w", err)
		}
		return append(append([]string{}, prefix...), path), nil
	}
}

// FilePlayer plays the theme file for each alert from dir with program,
// e.g. paplay or pw-play.
func FilePlayer(program, dir string) *Command {
	c := newCommand(program, nil)
	c.argv = c.fileArgs(dir, program)
	return c
}

// Canberra plays alerts by theme event id through canberra-gtk-play.
func Canberra() *Command {
	return newCommand("canberra-gtk-play", func(kind scheduler.SoundKind) ([]string, error) {
		return []string{"canberra-gtk-play", "--id", EventID(kind)}, nil
	})
}

// ParseCommand builds a strategy from a user supplied command line. The
// line is split with shell quoting rules and every FilePlaceholder is
// replaced with the theme file for the alert inside dir.
func ParseCommand(line, dir string) (*Command, error) {
	words, err := shellquote.Split(line)
	if err != nil {
		return nil, fmt.Errorf("parsing sound command: %w", err)
	}
	if len(words) == 0 {
		return nil, ErrEmptyCommand
	}

	c := newCommand("custom:"+words[0], nil)
	c.argv = func(kind scheduler.SoundKind) ([]string, error) {
		path := filepath.Join(dir, EventID(kind)+".oga")
		argv := make([]string, len(words))
		for i, w := range words {
			argv[i] = strings.ReplaceAll(w, FilePlaceholder, path)
		}
		return argv, nil
	}
	return c, nil
}

// Bell is the last resort: it writes the terminal bell character.
type Bell struct {
	w io.Writer
}

// NewBell creates a Bell writing to w, or to stderr when w is nil.
func NewBell(w io.Writer) *Bell {
	if w == nil {
		w = os.Stderr
	}
	return &Bell{w: w}
}

// Name implements Strategy.
func (b *Bell) Name() string { return "bell" }

// Play implements Strategy.
func (b *Bell) Play(context.Context, scheduler.SoundKind) error {
	_, err := io.WriteString(b.w, "\a")
	return err
}

// Options selects the default strategy chain.
type Options struct {
	// Dir holds the freedesktop theme .oga files.
	Dir string

	// Command is an optional custom command line tried before the built-ins.
	Command string
}

// DefaultStrategies returns the fallback chain: the custom command if any,
// then paplay, pw-play, canberra-gtk-play and finally the terminal bell.
func DefaultStrategies(opts Options) ([]Strategy, error) {
	var strategies []Strategy

	if strings.TrimSpace(opts.Command) != "" {
		custom, err := ParseCommand(opts.Command, opts.Dir)
		if err != nil {
			return nil, err
		}
		strategies = append(strategies, custom)
	}

	strategies = append(strategies,
		FilePlayer("paplay", opts.Dir),
		FilePlayer("pw-play", opts.Dir),
		Canberra(),
		NewBell(nil),
	)
	return strategies, nil
}
