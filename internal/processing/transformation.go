package processing

import (
	"fmt"
	"math"
	"strconv"

	"gonum.org/v1/gonum/mat"
)

// offsetFraction of the smallest non-zero magnitude is used as the
// generalized log offset when none is given
const offsetFraction = 10.0

// checkOffset accepts an empty argument or a positive number
func checkOffset(_ Frame, argument string) error {
	if argument == "" {
		return nil
	}
	v, err := strconv.ParseFloat(argument, 64)
	if err != nil || !(v > 0) || math.IsInf(v, 0) {
		return fmt.Errorf("offset must be a positive number, got %q: %w", argument, ErrInvalidArgument)
	}
	return nil
}

// offset returns the numeric argument or a tenth of the smallest non-zero
// absolute value of the frame
func offset(f Frame, argument string) (float64, error) {
	if argument != "" {
		return strconv.ParseFloat(argument, 64)
	}
	m := minNonZeroAbs(f.Values.RawMatrix().Data)
	if m == 0 {
		return 0, fmt.Errorf("every value is zero: %w", ErrDegenerate)
	}
	return m / offsetFraction, nil
}

func mapElements(f Frame, fn func(x float64) float64) Frame {
	r, c := f.Dims()
	out := mat.NewDense(r, c, nil)
	out.Apply(func(_, _ int, v float64) float64 { return fn(v) }, f.Values)
	return f.withValues(out)
}

// generalized returns (x + sqrt(x² + m²)) / 2, which is positive for any x
func generalized(x, m float64) float64 {
	return (x + math.Sqrt(x*x+m*m)) / 2
}

func glogTransform(f Frame, argument string, log func(float64) float64) (Frame, error) {
	m, err := offset(f, argument)
	if err != nil {
		return Frame{}, err
	}
	return mapElements(f, func(x float64) float64 { return log(generalized(x, m)) }), nil
}

func log2Transform(f Frame, argument string) (Frame, error) {
	return glogTransform(f, argument, math.Log2)
}

func log10Transform(f Frame, argument string) (Frame, error) {
	return glogTransform(f, argument, math.Log10)
}

func sqrtTransform(f Frame, argument string) (Frame, error) {
	return glogTransform(f, argument, math.Sqrt)
}

func cubeRootTransform(f Frame, _ string) (Frame, error) {
	return mapElements(f, math.Cbrt), nil
}
