package app

import (
	"math/rand"
	"time"
)

// Default backoff configuration values.
const (
	DefaultBackoffInitial = 500 * time.Millisecond
	DefaultBackoffMax     = 30 * time.Second
)

// backoff implements exponential backoff with jitter for delivery retries.
type backoff struct {
	initial time.Duration
	max     time.Duration
	current time.Duration
}

func newBackoff(initial, max time.Duration) *backoff {
	return &backoff{
		initial: initial,
		max:     max,
		current: initial,
	}
}

// Sleep sleeps for the current backoff duration (±20% jitter) and doubles it
// up to the maximum.
func (b *backoff) Sleep() {
	jitter := float64(b.current) * 0.2 * (rand.Float64()*2 - 1)
	time.Sleep(time.Duration(float64(b.current) + jitter))

	b.current *= 2
	if b.current > b.max {
		b.current = b.max
	}
}

// Reset returns the backoff to its initial duration.
func (b *backoff) Reset() {
	b.current = b.initial
}
