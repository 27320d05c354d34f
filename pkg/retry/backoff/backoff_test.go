package backoff

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStrategies(t *testing.T) {
	for _, tc := range []struct {
		name     string
		strategy Strategy
		expected []time.Duration
	}{
		{
			name:     "constant",
			strategy: Constant(100 * time.Millisecond),
			expected: []time.Duration{100 * time.Millisecond, 100 * time.Millisecond, 100 * time.Millisecond},
		},
		{
			name:     "linear",
			strategy: Linear(500 * time.Millisecond),
			expected: []time.Duration{500 * time.Millisecond, time.Second, 1500 * time.Millisecond, 2 * time.Second},
		},
		{
			name:     "exponential",
			strategy: Exponential(2*time.Second, 3),
			expected: []time.Duration{2 * time.Second, 6 * time.Second, 18 * time.Second, 54 * time.Second},
		},
		{
			name:     "binary exponential",
			strategy: BinaryExponential(2 * time.Second),
			expected: []time.Duration{2 * time.Second, 4 * time.Second, 8 * time.Second, 16 * time.Second},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			for i, expected := range tc.expected {
				assert.Equal(t, expected, tc.strategy(uint(i+1)))
			}
		})
	}
}

func TestSaturation(t *testing.T) {
	assert.Equal(t, time.Duration(math.MaxInt64), Linear(time.Hour)(math.MaxUint32*1000))
	assert.Equal(t, time.Duration(math.MaxInt64), BinaryExponential(time.Second)(200))
	assert.Equal(t, time.Second, BinaryExponential(time.Second)(0))
}
