package motion

// Score computes the per-frame L1 mean-absolute-difference motion
// score from a headerless buffer of consecutive frameSize-byte
// grayscale frames (spec.md §4.C).
//
// score[0] is always 0. For i >= 1, score[i] is the mean absolute
// difference between frame i and frame i-1, normalized to [0,1] by
// dividing by 255. The returned slice has length
// floor(len(buf)/frameSize) (invariant 1).
func Score(buf []byte, frameSize int) []float64 {
	n := len(buf) / frameSize
	if n == 0 {
		return []float64{}
	}

	scores := make([]float64, n)
	for i := 1; i < n; i++ {
		cur := buf[i*frameSize : (i+1)*frameSize]
		prev := buf[(i-1)*frameSize : i*frameSize]

		var sum int64
		for j := 0; j < frameSize; j++ {
			d := int(cur[j]) - int(prev[j])
			if d < 0 {
				d = -d
			}
			sum += int64(d)
		}
		scores[i] = float64(sum) / float64(frameSize) / 255.0
	}
	return scores
}
