package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestUniformSourceStaysInRange(t *testing.T) {
	for seed := uint64(0); seed < 50; seed++ {
		u := NewUniformSource(seed)
		for range 200 {
			d := u.Interval(MinCheckinInterval, MaxCheckinInterval)
			assert.GreaterOrEqual(t, d, MinCheckinInterval)
			assert.LessOrEqual(t, d, MaxCheckinInterval)
		}
	}
}

func TestUniformSourceIncludesBothEnds(t *testing.T) {
	u := NewUniformSource(42)

	seen := map[time.Duration]bool{}
	for range 2000 {
		seen[u.Interval(10, 12)] = true
	}

	assert.True(t, seen[10])
	assert.True(t, seen[11])
	assert.True(t, seen[12])
	assert.Len(t, seen, 3)
}

func TestUniformSourceDegenerateRange(t *testing.T) {
	u := NewUniformSource(7)
	assert.Equal(t, 5*time.Minute, u.Interval(5*time.Minute, 5*time.Minute))
	assert.Equal(t, 5*time.Minute, u.Interval(5*time.Minute, time.Minute))
}

func TestUniformSourceIsDeterministicPerSeed(t *testing.T) {
	a := NewUniformSource(99)
	b := NewUniformSource(99)
	for range 20 {
		assert.Equal(t, a.Interval(time.Second, time.Hour), b.Interval(time.Second, time.Hour))
	}
}

func TestTimingsValidateDefaults(t *testing.T) {
	assert.NoError(t, DefaultTimings().Validate())
}
