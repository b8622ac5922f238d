package tick

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTicks(t *testing.T) {
	tests := []struct {
		name string
		base int
		tps  float64
		mode ScalingMode
		want int
	}{
		{"default rate unchanged", 10, 20, Scaled, 10},
		{"half rate halves count", 10, 10, Scaled, 5},
		{"double rate doubles count", 10, 40, Scaled, 20},
		{"unscaled ignores rate", 10, 40, Unscaled, 10},
		{"rounds to nearest", 10, 15, Scaled, 8},
		{"never drops to zero", 1, 1, Scaled, 1},
		{"zero stays zero", 0, 10, Scaled, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Ticks(tt.base, tt.tps, tt.mode))
		})
	}
}

func TestPerTick(t *testing.T) {
	assert.Equal(t, 0.05, PerTick(0.05, 20, Scaled))
	assert.Equal(t, 0.1, PerTick(0.05, 10, Scaled))
	assert.Equal(t, 0.05, PerTick(0.05, 40, Unscaled))
}

func TestRetention(t *testing.T) {
	assert.Equal(t, 0.99, Retention(0.99, 20, Scaled))
	assert.Equal(t, 0.99, Retention(0.99, 40, Unscaled))

	// Applying the scaled factor tps times must equal applying the base
	// factor 20 times over one second.
	scaled := Retention(0.99, 40, Scaled)
	assert.Less(t, 0.99, scaled)
	assert.Greater(t, 1.0, scaled)
}

func TestRate(t *testing.T) {
	assert.Equal(t, 20.0, Rate(20, Scaled))
	assert.Equal(t, 40.0, Rate(40, Scaled))
	assert.Equal(t, 20.0, Rate(40, Unscaled))
	assert.Equal(t, 20.0, Rate(0, Scaled))
}
