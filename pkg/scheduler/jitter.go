package scheduler

import (
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"gonum.org/v1/gonum/stat/distuv"
)

// UniformSource draws check-in intervals from a continuous uniform
// distribution at nanosecond resolution.
type UniformSource struct {
	mu  sync.Mutex
	src rand.Source
}

// NewUniformSource creates a UniformSource seeded once with seed.
func NewUniformSource(seed uint64) *UniformSource {
	return &UniformSource{
		src: rand.NewPCG(seed, seed^0x9e3779b97f4a7c15),
	}
}

// Interval returns a duration in [lo, hi], both ends inclusive.
func (u *UniformSource) Interval(lo, hi time.Duration) time.Duration {
	if hi <= lo {
		return lo
	}

	u.mu.Lock()
	defer u.mu.Unlock()

	// Sampling [lo, hi+1) and flooring gives every nanosecond in [lo, hi]
	// an equal share, including hi itself.
	dist := distuv.Uniform{
		Min: float64(lo),
		Max: float64(hi) + 1,
		Src: u.src,
	}
	d := time.Duration(math.Floor(dist.Rand()))

	return min(max(d, lo), hi)
}

var _ RandomSource = (*UniformSource)(nil)
