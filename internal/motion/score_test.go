package motion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoreIdenticalFramesAreZero(t *testing.T) {
	frameSize := 4
	buf := make([]byte, frameSize*5)
	for i := range buf {
		buf[i] = 42
	}

	scores := Score(buf, frameSize)
	require.Len(t, scores, 5)
	for i, s := range scores {
		assert.Zero(t, s, "frame %d", i)
	}
}

func TestScoreInversionIsMaximum(t *testing.T) {
	frameSize := 8
	buf := make([]byte, frameSize*2)
	for i := 0; i < frameSize; i++ {
		buf[i] = 0
	}
	for i := frameSize; i < 2*frameSize; i++ {
		buf[i] = 255
	}

	scores := Score(buf, frameSize)
	require.Len(t, scores, 2)
	assert.Zero(t, scores[0])
	assert.InDelta(t, 1.0, scores[1], 1e-9)
}

func TestScoreFirstFrameAlwaysZero(t *testing.T) {
	frameSize := 4
	buf := make([]byte, frameSize*3)
	for i := range buf {
		buf[i] = byte(i % 251)
	}

	scores := Score(buf, frameSize)
	require.Len(t, scores, 3)
	assert.Zero(t, scores[0])
}

func TestScoreEmptyAndSingleFrame(t *testing.T) {
	assert.Equal(t, []float64{}, Score(nil, 14400))

	frameSize := 4
	buf := make([]byte, frameSize)
	assert.Equal(t, []float64{0}, Score(buf, frameSize))
}

func TestScoreLengthInvariant(t *testing.T) {
	frameSize := 14400
	buf := make([]byte, frameSize*3+100) // partial trailing frame dropped
	scores := Score(buf, frameSize)
	assert.Len(t, scores, 3)
}
