package processing

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// median returns the middle value of xs, averaging the two central values
// for an even count. NaN values are ignored.
func median(xs []float64) float64 {
	sorted := make([]float64, 0, len(xs))
	for _, x := range xs {
		if !math.IsNaN(x) {
			sorted = append(sorted, x)
		}
	}
	if len(sorted) == 0 {
		return math.NaN()
	}

	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

// meanStdDev returns the mean and the sample standard deviation (n-1).
// The deviation is NaN for fewer than two values.
func meanStdDev(xs []float64) (float64, float64) {
	if len(xs) < 2 {
		return stat.Mean(xs, nil), math.NaN()
	}
	return stat.MeanStdDev(xs, nil)
}

// minNonZeroAbs returns the smallest non-zero absolute value, or 0 if none
func minNonZeroAbs(xs []float64) float64 {
	smallest := 0.0
	for _, x := range xs {
		a := math.Abs(x)
		if a == 0 || math.IsNaN(a) {
			continue
		}
		if smallest == 0 || a < smallest {
			smallest = a
		}
	}
	return smallest
}

// usable reports whether v is a finite, non-zero divisor
func usable(v float64) bool {
	return v != 0 && !math.IsNaN(v) && !math.IsInf(v, 0)
}

// centre subtracts the mean from every element of col in place
func centre(col []float64, mean float64) {
	floats.AddConst(-mean, col)
}
