package channel

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFixedBackoff(t *testing.T) {
	b := FixedBackoff(3 * time.Second)
	for i := 0; i < 5; i++ {
		assert.Equal(t, 3*time.Second, b.Next())
	}
	b.Reset()
	assert.Equal(t, 3*time.Second, b.Next())
}

func TestExponentialBackoff_GrowsAndCaps(t *testing.T) {
	b := NewExponentialBackoff(3*time.Second, 30*time.Second, 2, 0)

	want := []time.Duration{
		3 * time.Second,
		6 * time.Second,
		12 * time.Second,
		24 * time.Second,
		30 * time.Second,
		30 * time.Second,
	}
	for i, w := range want {
		assert.Equal(t, w, b.Next(), "attempt %d", i)
	}

	b.Reset()
	assert.Equal(t, 3*time.Second, b.Next())
}

func TestExponentialBackoff_Jitter(t *testing.T) {
	tests := []struct {
		name string
		r    float64
		want time.Duration
	}{
		{name: "lowest", r: 0, want: 2400 * time.Millisecond},
		{name: "middle", r: 0.5, want: 3 * time.Second},
		{name: "highest", r: 1, want: 3600 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := DefaultBackoff()
			b.rand = func() float64 { return tt.r }
			assert.Equal(t, tt.want, b.Next())
		})
	}
}

func TestExponentialBackoff_JitterStaysInBounds(t *testing.T) {
	b := DefaultBackoff()
	for i := 0; i < 100; i++ {
		base := b.Base()
		d := b.Next()
		assert.GreaterOrEqual(t, d, time.Duration(float64(base)*0.8)-time.Nanosecond)
		assert.LessOrEqual(t, d, time.Duration(float64(base)*1.2)+time.Nanosecond)
	}
}

func TestNewExponentialBackoff_Clamps(t *testing.T) {
	b := NewExponentialBackoff(5*time.Second, time.Second, 0.5, 3)
	assert.Equal(t, 5*time.Second, b.Max)
	assert.Equal(t, 1.0, b.Multiplier)
	assert.Equal(t, 1.0, b.Jitter)
}
