package motion

// Smooth applies a symmetric rolling average over scores with window
// size w (spec.md §4.D). It never mutates scores and always returns a
// fresh slice (P4). If w <= 1, the result is an unmodified copy.
func Smooth(scores []float64, w int) []float64 {
	out := make([]float64, len(scores))

	if w <= 1 {
		copy(out, scores)
		return out
	}

	half := w / 2
	n := len(scores)
	for i := 0; i < n; i++ {
		lo := i - half
		if lo < 0 {
			lo = 0
		}
		hi := i + half + 1
		if hi > n {
			hi = n
		}

		var sum float64
		for j := lo; j < hi; j++ {
			sum += scores[j]
		}
		out[i] = sum / float64(hi-lo)
	}
	return out
}
