package channel

import (
	"math"
	"math/rand/v2"
	"time"
)

// Default reconnect policy: 3s, doubling, capped at 30s, ±20% jitter.
const (
	DefaultInitialDelay = 3 * time.Second
	DefaultMaxDelay     = 30 * time.Second
	DefaultMultiplier   = 2.0
	DefaultJitter       = 0.2
)

// Backoff produces the delay before each reconnection attempt.
// Reset is called after a successful open.
type Backoff interface {
	Next() time.Duration
	Reset()
}

type fixedBackoff struct {
	delay time.Duration
}

// FixedBackoff waits the same delay before every attempt.
func FixedBackoff(delay time.Duration) Backoff {
	return fixedBackoff{delay: delay}
}

func (b fixedBackoff) Next() time.Duration { return b.delay }
func (b fixedBackoff) Reset()              {}

// ExponentialBackoff grows the delay by Multiplier on each attempt up to Max,
// then spreads it by ±Jitter.
type ExponentialBackoff struct {
	Initial    time.Duration
	Max        time.Duration
	Multiplier float64
	Jitter     float64

	attempt int
	rand    func() float64
}

// NewExponentialBackoff returns a jittered exponential policy.
func NewExponentialBackoff(initial, max time.Duration, multiplier, jitter float64) *ExponentialBackoff {
	if multiplier < 1 {
		multiplier = 1
	}
	if max < initial {
		max = initial
	}
	if jitter < 0 {
		jitter = 0
	}
	if jitter > 1 {
		jitter = 1
	}
	return &ExponentialBackoff{
		Initial:    initial,
		Max:        max,
		Multiplier: multiplier,
		Jitter:     jitter,
		rand:       rand.Float64,
	}
}

// DefaultBackoff returns the default reconnect policy.
func DefaultBackoff() *ExponentialBackoff {
	return NewExponentialBackoff(DefaultInitialDelay, DefaultMaxDelay, DefaultMultiplier, DefaultJitter)
}

// Base returns the un-jittered delay for the next attempt.
func (b *ExponentialBackoff) Base() time.Duration {
	d := float64(b.Initial) * math.Pow(b.Multiplier, float64(b.attempt))
	if d > float64(b.Max) || math.IsInf(d, 0) {
		return b.Max
	}
	return time.Duration(d)
}

func (b *ExponentialBackoff) Next() time.Duration {
	base := b.Base()
	b.attempt++

	if b.Jitter == 0 {
		return base
	}
	r := b.rand
	if r == nil {
		r = rand.Float64
	}
	spread := float64(base) * b.Jitter * (2*r() - 1)
	d := time.Duration(float64(base) + spread)
	if d <= 0 {
		return base
	}
	return d
}

func (b *ExponentialBackoff) Reset() {
	b.attempt = 0
}
