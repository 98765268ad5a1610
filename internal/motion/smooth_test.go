package motion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSmoothIdentityWindowOne(t *testing.T) {
	xs := []float64{0.1, 0.2, 0.3}
	out := Smooth(xs, 1)
	require.Equal(t, xs, out)

	// Must be a copy, not the same backing array.
	out[0] = 99
	assert.Equal(t, 0.1, xs[0])
}

func TestSmoothDoesNotMutateInput(t *testing.T) {
	xs := []float64{0, 1, 0, 1, 0}
	cp := append([]float64{}, xs...)
	_ = Smooth(xs, 3)
	assert.Equal(t, cp, xs)
}

func TestSmoothMeanOverActualWindow(t *testing.T) {
	xs := []float64{1, 2, 3, 4, 5}
	out := Smooth(xs, 3)

	// i=0: window [0,2) -> mean(1,2) = 1.5
	assert.InDelta(t, 1.5, out[0], 1e-9)
	// i=1: window [0,3) -> mean(1,2,3) = 2
	assert.InDelta(t, 2.0, out[1], 1e-9)
	// i=2: window [1,4) -> mean(2,3,4) = 3
	assert.InDelta(t, 3.0, out[2], 1e-9)
	// i=4: window [3,5) -> mean(4,5) = 4.5
	assert.InDelta(t, 4.5, out[4], 1e-9)
}
