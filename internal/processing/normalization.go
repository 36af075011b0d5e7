package processing

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// sumTarget is the total every sample is rescaled to
const sumTarget = 1000.0

// normalizeRows divides every row by the factor returned for it
func normalizeRows(f Frame, factor func(i int, row []float64) (float64, error)) (Frame, error) {
	out := mat.DenseCopyOf(f.Values)
	rows, _ := out.Dims()
	for i := 0; i < rows; i++ {
		row := out.RawRowView(i)
		d, err := factor(i, row)
		if err != nil {
			return Frame{}, err
		}
		floats.Scale(1/d, row)
	}
	return f.withValues(out), nil
}

func sumNormalize(f Frame, _ string) (Frame, error) {
	return normalizeRows(f, func(i int, row []float64) (float64, error) {
		total := floats.Sum(row)
		if !usable(total) {
			return 0, fmt.Errorf("sample %q sums to %v: %w", f.Index[i], total, ErrDegenerate)
		}
		return total / sumTarget, nil
	})
}

func medianNormalize(f Frame, _ string) (Frame, error) {
	return normalizeRows(f, func(i int, row []float64) (float64, error) {
		m := median(row)
		if !usable(m) {
			return 0, fmt.Errorf("sample %q has median %v: %w", f.Index[i], m, ErrDegenerate)
		}
		return m, nil
	})
}

func checkReferenceSample(f Frame, argument string) error {
	if argument == "" {
		return fmt.Errorf("a reference sample key is required: %w", ErrInvalidArgument)
	}
	if f.SampleIndex(argument) < 0 {
		return fmt.Errorf("no sample with key %q: %w", argument, ErrInvalidArgument)
	}
	return nil
}

// referenceNormalize is probabilistic quotient normalization: each sample
// is divided by the median of its quotients against the reference sample
func referenceNormalize(f Frame, argument string) (Frame, error) {
	ref := mat.Row(nil, f.SampleIndex(argument), f.Values)

	return normalizeRows(f, func(i int, row []float64) (float64, error) {
		quotients := make([]float64, 0, len(row))
		for j, x := range row {
			if ref[j] == 0 || math.IsNaN(ref[j]) {
				continue
			}
			quotients = append(quotients, x/ref[j])
		}
		if len(quotients) == 0 {
			return 0, fmt.Errorf("reference sample %q has no non-zero values: %w", argument, ErrDegenerate)
		}
		m := median(quotients)
		if !usable(m) {
			return 0, fmt.Errorf("sample %q has quotient median %v: %w", f.Index[i], m, ErrDegenerate)
		}
		return m, nil
	})
}
