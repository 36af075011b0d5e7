package processing

import (
	"fmt"

	"metabulo/pkg/contracts/domain"
)

// method is one processing function with an optional argument check
type method struct {
	apply func(f Frame, argument string) (Frame, error)
	// check validates the argument against the frame it will be applied to
	check func(f Frame, argument string) error
}

var (
	normalizations = map[string]method{
		"sum":              {apply: sumNormalize},
		"median":           {apply: medianNormalize},
		"reference-sample": {apply: referenceNormalize, check: checkReferenceSample},
	}

	transformations = map[string]method{
		"log2":       {apply: log2Transform, check: checkOffset},
		"log10":      {apply: log10Transform, check: checkOffset},
		"squareroot": {apply: sqrtTransform, check: checkOffset},
		"cuberoot":   {apply: cubeRootTransform},
	}

	scalings = map[string]method{
		"auto":   {apply: autoScale},
		"pareto": {apply: paretoScale},
		"range":  {apply: rangeScale},
		"vast":   {apply: vastScale},
		"level":  {apply: levelScale},
	}

	methodOrder = map[domain.StepKind][]string{
		domain.StepNormalization:  {"sum", "reference-sample", "median"},
		domain.StepTransformation: {"log2", "log10", "squareroot", "cuberoot"},
		domain.StepScaling:        {"auto", "pareto", "range", "vast", "level"},
	}
)

func registry(kind domain.StepKind) map[string]method {
	switch kind {
	case domain.StepNormalization:
		return normalizations
	case domain.StepTransformation:
		return transformations
	case domain.StepScaling:
		return scalings
	}
	return nil
}

// Methods lists the method names available for a step kind
func Methods(kind domain.StepKind) []string {
	return append([]string(nil), methodOrder[kind]...)
}

// Supported reports whether name is a method of the given step kind
func Supported(kind domain.StepKind, name string) bool {
	_, ok := registry(kind)[name]
	return ok
}

// CheckArgument validates a method argument against the frame it will be
// applied to, without running the method
func CheckArgument(kind domain.StepKind, name, argument string, f Frame) error {
	m, ok := registry(kind)[name]
	if !ok {
		return fmt.Errorf("%s %q: %w", kind, name, ErrUnknownMethod)
	}
	if m.check == nil {
		return nil
	}
	if err := m.check(f, argument); err != nil {
		return fmt.Errorf("%s %q: %w", kind, name, err)
	}
	return nil
}

// Apply runs one method of the given kind. An empty name returns a copy of f.
func Apply(kind domain.StepKind, name, argument string, f Frame) (Frame, error) {
	if err := f.validate(); err != nil {
		return Frame{}, err
	}
	if name == "" {
		return f.Clone(), nil
	}

	m, ok := registry(kind)[name]
	if !ok {
		return Frame{}, fmt.Errorf("%s %q: %w", kind, name, ErrUnknownMethod)
	}
	if m.check != nil {
		if err := m.check(f, argument); err != nil {
			return Frame{}, fmt.Errorf("%s %q: %w", kind, name, err)
		}
	}

	out, err := m.apply(f, argument)
	if err != nil {
		return Frame{}, fmt.Errorf("%s %q: %w", kind, name, err)
	}
	return out, nil
}

// Normalize applies a row-wise normalization
func Normalize(f Frame, name, argument string) (Frame, error) {
	return Apply(domain.StepNormalization, name, argument, f)
}

// Transform applies an element-wise transformation
func Transform(f Frame, name, argument string) (Frame, error) {
	return Apply(domain.StepTransformation, name, argument, f)
}

// Scale applies a column-wise scaling
func Scale(f Frame, name, argument string) (Frame, error) {
	return Apply(domain.StepScaling, name, argument, f)
}
