package audio

import "math"

// Resample converts samples from one rate to another by linear interpolation.
// It runs once over the full buffer after capture completes; amplitude is
// clipped to the 16-bit signed range. Identical rates return the input
// unchanged.
func Resample(in []int16, from, to int) []int16 {
	if from == to || len(in) == 0 || from <= 0 || to <= 0 {
		return in
	}

	n := int(math.Round(float64(len(in)) * float64(to) / float64(from)))
	if n <= 0 {
		return nil
	}

	out := make([]int16, n)
	step := float64(from) / float64(to)
	for i := range out {
		pos := float64(i) * step
		j := int(pos)
		if j >= len(in)-1 {
			out[i] = in[len(in)-1]
			continue
		}
		frac := pos - float64(j)
		v := float64(in[j])*(1-frac) + float64(in[j+1])*frac
		out[i] = clipInt16(v)
	}
	return out
}

func clipInt16(v float64) int16 {
	if v > math.MaxInt16 {
		return math.MaxInt16
	}
	if v < math.MinInt16 {
		return math.MinInt16
	}
	return int16(math.Round(v))
}
