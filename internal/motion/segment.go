package motion

// Segment converts a smoothed score sequence into time ranges
// (spec.md §4.E): threshold -> run-length -> min-length filter ->
// pre/post padding -> merge overlaps.
func Segment(smoothed []float64, opts Options, duration float64) []TimeRange {
	runs := runLength(smoothed, opts.Threshold, opts.SampleFPS, duration)
	runs = filterMinLength(runs, opts.MinSegmentLength)
	padded := pad(runs, opts.PreRoll, opts.PostRoll, duration)
	return merge(padded)
}

// runLength walks the active/inactive boolean sequence (v >= threshold
// is the tie-break rule, spec.md §4.E step 1) and emits one TimeRange
// per contiguous active run, mapping index i to time i/sampleFPS.
//
// A run that reaches the end of the score array extends to duration
// rather than to len(smoothed)/sampleFPS — an intentional asymmetry
// with inner runs, preserved from the source per spec.md §9 Open
// Questions, not a bug to fix here.
func runLength(smoothed []float64, thresh, sampleFPS, duration float64) []TimeRange {
	var runs []TimeRange
	inRun := false
	var runStartIdx int

	for i, v := range smoothed {
		active := v >= thresh
		switch {
		case active && !inRun:
			inRun = true
			runStartIdx = i
		case !active && inRun:
			inRun = false
			runs = append(runs, TimeRange{
				Start: float64(runStartIdx) / sampleFPS,
				End:   float64(i) / sampleFPS,
			})
		}
	}
	if inRun {
		runs = append(runs, TimeRange{
			Start: float64(runStartIdx) / sampleFPS,
			End:   duration,
		})
	}
	return runs
}

// filterMinLength drops runs shorter than minSegLen, pre-padding
// (spec.md §4.E step 3 / invariant P7).
func filterMinLength(runs []TimeRange, minSegLen float64) []TimeRange {
	out := make([]TimeRange, 0, len(runs))
	for _, r := range runs {
		if r.End-r.Start >= minSegLen {
			out = append(out, r)
		}
	}
	return out
}

// pad adds pre/post-roll to each surviving run, clamping to
// [0, duration] (spec.md §4.E step 4). When pre-roll would push start
// below 0, start clamps to 0 without shortening end.
func pad(runs []TimeRange, preRoll, postRoll, duration float64) []TimeRange {
	out := make([]TimeRange, len(runs))
	for i, r := range runs {
		start := r.Start - preRoll
		if start < 0 {
			start = 0
		}
		end := r.End + postRoll
		if end > duration {
			end = duration
		}
		out[i] = TimeRange{Start: start, End: end}
	}
	return out
}

// merge collapses overlapping/touching padded segments in order
// (spec.md §4.E step 5 / invariant P8). Segments must already be
// ordered by Start, which pad preserves from runLength's ascending
// index walk.
func merge(runs []TimeRange) []TimeRange {
	if len(runs) == 0 {
		return []TimeRange{}
	}

	out := make([]TimeRange, 0, len(runs))
	last := runs[0]
	for _, r := range runs[1:] {
		if r.Start <= last.End {
			if r.End > last.End {
				last.End = r.End
			}
			continue
		}
		out = append(out, last)
		last = r
	}
	out = append(out, last)
	return out
}
