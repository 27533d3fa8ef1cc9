// Package sound plays alert sounds by trying an ordered list of playback
// strategies until one works.
package sound

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/hackebrot/breaktime/pkg/scheduler"
)

const defaultTimeout = 5 * time.Second

// ErrNoStrategy is returned by Play when the player has nothing to try.
var ErrNoStrategy = errors.New("no playback strategy configured")

// Strategy is one way of playing an alert.
type Strategy interface {
	Name() string
	Play(ctx context.Context, kind scheduler.SoundKind) error
}

// Player tries each strategy in order and stops at the first success.
type Player struct {
	strategies []Strategy
	timeout    time.Duration
}

// NewPlayer creates a Player over strategies. Each attempt is bounded by
// timeout; zero means five seconds.
func NewPlayer(timeout time.Duration, strategies ...Strategy) *Player {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Player{
		strategies: strategies,
		timeout:    timeout,
	}
}

// Play plays kind with the first strategy that succeeds. The returned error
// lists every strategy's failure.
func (p *Player) Play(ctx context.Context, kind scheduler.SoundKind) error {
	if len(p.strategies) == 0 {
		return ErrNoStrategy
	}

	var result *multierror.Error
	for _, s := range p.strategies {
		attemptCtx, cancel := context.WithTimeout(ctx, p.timeout)
		err := s.Play(attemptCtx, kind)
		cancel()

		if err == nil {
			slog.Debug("played sound", "sound", kind.String(), "strategy", s.Name())
			return nil
		}

		slog.Debug("sound strategy failed", "sound", kind.String(), "strategy", s.Name(), "error", err)
		result = multierror.Append(result, fmt.Errorf("%s: %w", s.Name(), err))

		if ctx.Err() != nil {
			break
		}
	}

	return result.ErrorOrNil()
}

var _ scheduler.SoundPlayer = (*Player)(nil)
