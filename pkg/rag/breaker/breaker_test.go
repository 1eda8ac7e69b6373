package breaker

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestBreaker_OpensAndRecovers(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	b := New(clock)

	assert.False(t, b.IsOpen())

	b.Trip(30 * time.Minute)
	assert.True(t, b.IsOpen())

	clock.Advance(29 * time.Minute)
	assert.True(t, b.IsOpen())

	clock.Advance(2 * time.Minute)
	assert.False(t, b.IsOpen())
}

func TestBreaker_TripNeverShortensWindow(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	b := New(clock)

	b.Trip(30 * time.Minute)
	b.Trip(1 * time.Minute)

	clock.Advance(10 * time.Minute)
	assert.True(t, b.IsOpen())
}
