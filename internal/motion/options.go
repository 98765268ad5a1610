package motion

import "math"

// Options configures the motion detector end to end (spec.md §3
// MotionOptions). All fields have defaults and must be finite and
// non-negative after Normalize.
type Options struct {
	SampleFPS        float64
	Threshold        float64
	MinSegmentLength float64
	PreRoll          float64
	PostRoll         float64
	SmoothingWindow  int
}

// DefaultOptions returns the spec.md §3 defaults.
func DefaultOptions() Options {
	return Options{
		SampleFPS:        2,
		Threshold:        0.02,
		MinSegmentLength: 3,
		PreRoll:          1,
		PostRoll:         1,
		SmoothingWindow:  3,
	}
}

// Normalize replaces non-finite values, a non-positive SampleFPS or
// SmoothingWindow, and a negative Threshold, MinSegmentLength,
// PreRoll or PostRoll with the defaults, and caps Threshold at 1.
// A zero Threshold, MinSegmentLength, PreRoll or PostRoll is kept
// as zero. Adapter layers (HTTP/CLI parsing) are responsible for
// the "parse float, default on NaN-or-zero" coercion described in
// spec.md §6 before calling Normalize; the detector itself only
// clamps, it never parses strings.
func (o Options) Normalize() Options {
	d := DefaultOptions()

	nonFinite := func(v float64) bool { return math.IsNaN(v) || math.IsInf(v, 0) }

	out := o
	if nonFinite(out.SampleFPS) || out.SampleFPS <= 0 {
		out.SampleFPS = d.SampleFPS
	}
	if nonFinite(out.Threshold) || out.Threshold < 0 {
		out.Threshold = d.Threshold
	}
	if out.Threshold > 1 {
		out.Threshold = 1
	}
	if nonFinite(out.MinSegmentLength) || out.MinSegmentLength < 0 {
		out.MinSegmentLength = d.MinSegmentLength
	}
	if nonFinite(out.PreRoll) || out.PreRoll < 0 {
		out.PreRoll = d.PreRoll
	}
	if nonFinite(out.PostRoll) || out.PostRoll < 0 {
		out.PostRoll = d.PostRoll
	}
	if out.SmoothingWindow <= 0 {
		out.SmoothingWindow = d.SmoothingWindow
	}
	return out
}
