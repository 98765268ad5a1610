package motion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scoresWithActiveRange(n, lo, hi int, active float64) []float64 {
	out := make([]float64, n)
	for i := lo; i <= hi && i < n; i++ {
		out[i] = active
	}
	return out
}

func TestSegmentAllQuiet(t *testing.T) {
	scores := make([]float64, 40)
	opts := Options{SampleFPS: 2, Threshold: 0.02, MinSegmentLength: 3, PreRoll: 1, PostRoll: 1}
	segs := Segment(scores, opts, 20)
	assert.Empty(t, segs)
}

func TestSegmentSingleActiveRegion(t *testing.T) {
	scores := scoresWithActiveRange(20, 4, 11, 0.1)
	opts := Options{SampleFPS: 2, Threshold: 0.02, MinSegmentLength: 3, PreRoll: 0, PostRoll: 0}
	segs := Segment(scores, opts, 20)
	require.Len(t, segs, 1)
	assert.InDelta(t, 2.0, segs[0].Start, 1e-9)
	assert.InDelta(t, 6.0, segs[0].End, 1e-9)
}

func TestSegmentTooShortIsDropped(t *testing.T) {
	scores := scoresWithActiveRange(20, 4, 5, 0.1)
	opts := Options{SampleFPS: 2, Threshold: 0.02, MinSegmentLength: 3}
	segs := Segment(scores, opts, 20)
	assert.Empty(t, segs)
}

func TestSegmentPaddingApplied(t *testing.T) {
	scores := scoresWithActiveRange(40, 10, 19, 0.1)
	opts := Options{SampleFPS: 2, Threshold: 0.02, MinSegmentLength: 3, PreRoll: 1, PostRoll: 2}
	segs := Segment(scores, opts, 20)
	require.Len(t, segs, 1)
	assert.InDelta(t, 4.0, segs[0].Start, 1e-9)
	assert.InDelta(t, 12.0, segs[0].End, 1e-9)
}

func TestSegmentOverlapMerges(t *testing.T) {
	scores := make([]float64, 20)
	for i := 4; i <= 10; i++ {
		scores[i] = 0.1
	}
	for i := 12; i <= 18; i++ {
		scores[i] = 0.1
	}
	opts := Options{SampleFPS: 2, Threshold: 0.02, MinSegmentLength: 0, PreRoll: 1, PostRoll: 1}
	segs := Segment(scores, opts, 20)
	require.Len(t, segs, 1)
}

func TestSegmentMonotonicAndBounded(t *testing.T) {
	scores := make([]float64, 40)
	for i := 4; i <= 8; i++ {
		scores[i] = 0.5
	}
	for i := 20; i <= 25; i++ {
		scores[i] = 0.5
	}
	opts := Options{SampleFPS: 2, Threshold: 0.02, MinSegmentLength: 1, PreRoll: 0.5, PostRoll: 0.5}
	segs := Segment(scores, opts, 20)

	for i, s := range segs {
		assert.GreaterOrEqual(t, s.Start, 0.0)
		assert.LessOrEqual(t, s.End, 20.0)
		assert.Less(t, s.Start, s.End)
		if i > 0 {
			assert.Less(t, segs[i-1].End, s.Start)
		}
	}
}

func TestSegmentRunReachingEndExtendsToDuration(t *testing.T) {
	scores := make([]float64, 10)
	for i := 5; i < 10; i++ {
		scores[i] = 0.5
	}
	opts := Options{SampleFPS: 2, Threshold: 0.02, MinSegmentLength: 0, PreRoll: 0, PostRoll: 0}
	segs := Segment(scores, opts, 7.3)
	require.Len(t, segs, 1)
	assert.InDelta(t, 7.3, segs[0].End, 1e-9)
}
