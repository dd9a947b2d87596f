package scoring

import "math"

// MinMax scales a value into [0,1] relative to the range [min, max].
// A degenerate range (min == max) yields 0.0.
func MinMax(value, min, max float64) float64 {
	if min == max {
		return 0.0
	}
	return (value - min) / (max - min)
}

// ZScore standardizes a value against a mean and standard deviation.
// A zero standard deviation yields 0.0.
func ZScore(value, mean, std float64) float64 {
	if std == 0 {
		return 0.0
	}
	return (value - mean) / std
}

// L2Normalize scales a vector to unit length. A zero-norm vector is
// returned unchanged; the input slice is never modified.
func L2Normalize(vector []float64) []float64 {
	var sumSquares float64
	for _, v := range vector {
		sumSquares += v * v
	}
	if sumSquares == 0 {
		return vector
	}

	norm := math.Sqrt(sumSquares)
	out := make([]float64, len(vector))
	for i, v := range vector {
		out[i] = v / norm
	}
	return out
}

// Clamp01 bounds a value to [0,1]. Used when assembling feature vectors
// from counters that may overshoot their expected range.
func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
