package product

import (
	"sync"
	"time"
)

// tickClock hands out strictly increasing instants. Interval boundaries must
// be distinct per product, so two mutations that observe the same wall-clock
// reading still close intervals at different instants.
type tickClock struct {
	mu   sync.Mutex
	now  func() time.Time
	last time.Time
}

func newTickClock() *tickClock {
	return &tickClock{
		now: func() time.Time { return time.Now().UTC() },
	}
}

func (c *tickClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := c.now().UTC()
	if !t.After(c.last) {
		t = c.last.Add(time.Nanosecond)
	}
	c.last = t
	return t
}
