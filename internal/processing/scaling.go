package processing

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// scaleColumns centres every column and divides it by the spread returned
// for it. A spread that is not a usable divisor leaves the centred column.
func scaleColumns(f Frame, spread func(col []float64, mean, sd float64) (float64, bool)) Frame {
	r, c := f.Dims()
	out := mat.NewDense(r, c, nil)
	col := make([]float64, r)
	for j := 0; j < c; j++ {
		mat.Col(col, j, f.Values)
		mean, sd := meanStdDev(col)
		d, keep := spread(col, mean, sd)
		if !keep {
			centre(col, mean)
			if usable(d) {
				floats.Scale(1/d, col)
			}
		}
		out.SetCol(j, col)
	}
	return f.withValues(out)
}

func autoScale(f Frame, _ string) (Frame, error) {
	return scaleColumns(f, func(_ []float64, _, sd float64) (float64, bool) {
		return sd, false
	}), nil
}

func paretoScale(f Frame, _ string) (Frame, error) {
	return scaleColumns(f, func(_ []float64, _, sd float64) (float64, bool) {
		return math.Sqrt(sd), false
	}), nil
}

// rangeScale returns a constant column unchanged
func rangeScale(f Frame, _ string) (Frame, error) {
	return scaleColumns(f, func(col []float64, _, _ float64) (float64, bool) {
		lo, hi := floats.Min(col), floats.Max(col)
		if hi == lo {
			return 0, true
		}
		return hi - lo, false
	}), nil
}

// vastScale is auto scaling weighted by the coefficient of variation
func vastScale(f Frame, _ string) (Frame, error) {
	return scaleColumns(f, func(_ []float64, mean, sd float64) (float64, bool) {
		if !usable(sd) || !usable(mean) {
			return 0, false
		}
		return sd * sd / mean, false
	}), nil
}

func levelScale(f Frame, _ string) (Frame, error) {
	return scaleColumns(f, func(_ []float64, mean, _ float64) (float64, bool) {
		return mean, false
	}), nil
}
