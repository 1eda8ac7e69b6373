package breaker

import (
	"sync"
	"time"
)

// Clock abstracts time for tests.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns the wall clock.
func SystemClock() Clock { return systemClock{} }

// Breaker is a time-based circuit breaker. Trip opens it for a cooldown
// window and it closes on its own once the window passes. It protects every
// caller at once: one quota rejection pauses model calls globally.
type Breaker struct {
	mu        sync.Mutex
	openUntil time.Time
	clock     Clock
}

func New(clock Clock) *Breaker {
	if clock == nil {
		clock = systemClock{}
	}
	return &Breaker{clock: clock}
}

// IsOpen reports whether calls should be rejected right now.
func (b *Breaker) IsOpen() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.clock.Now().Before(b.openUntil)
}

// Trip opens the breaker for the given cooldown.
func (b *Breaker) Trip(cooldown time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()
	until := b.clock.Now().Add(cooldown)
	if until.After(b.openUntil) {
		b.openUntil = until
	}
}
