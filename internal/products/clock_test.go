package product

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTickClockStrictlyIncreasing(t *testing.T) {
	frozen := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := newTickClock()
	clock.now = func() time.Time { return frozen }

	prev := clock.Now()
	for i := 0; i < 100; i++ {
		next := clock.Now()
		assert.True(t, next.After(prev), "tick %d not after previous", i)
		prev = next
	}
}

func TestTickClockFollowsWallClock(t *testing.T) {
	clock := newTickClock()

	first := clock.Now()
	second := clock.Now()
	assert.True(t, second.After(first))
	assert.Equal(t, time.UTC, second.Location())
}
