package processing

import (
	"time"

	"metabulo/pkg/contracts/domain"
)

// Step is a method name and its optional argument. An empty method is
// the identity.
type Step struct {
	Method   string
	Argument string
}

// StepFrom converts a stored step
func StepFrom(s domain.ProcessingStep) Step {
	var step Step
	if s.Method != nil {
		step.Method = *s.Method
	}
	if s.Argument != nil {
		step.Argument = *s.Argument
	}
	return step
}

// Pipeline is the chain of steps applied to a validated table
type Pipeline struct {
	Normalization  Step
	Transformation Step
	Scaling        Step
}

// PipelineFor builds the pipeline configured on a validated table
func PipelineFor(v *domain.ValidatedTable) Pipeline {
	return Pipeline{
		Normalization:  StepFrom(v.Step(domain.StepNormalization)),
		Transformation: StepFrom(v.Step(domain.StepTransformation)),
		Scaling:        StepFrom(v.Step(domain.StepScaling)),
	}
}

// Step returns the step of the given kind
func (p Pipeline) Step(kind domain.StepKind) Step {
	switch kind {
	case domain.StepNormalization:
		return p.Normalization
	case domain.StepTransformation:
		return p.Transformation
	case domain.StepScaling:
		return p.Scaling
	}
	return Step{}
}

// StepObserver is told about every step that ran
type StepObserver func(kind domain.StepKind, method string, elapsed time.Duration, err error)

// Apply runs normalization, transformation and scaling in that order
func (p Pipeline) Apply(f Frame) (Frame, error) {
	return p.ApplyObserved(f, nil)
}

// ApplyObserved is Apply with a callback after each configured step
func (p Pipeline) ApplyObserved(f Frame, observe StepObserver) (Frame, error) {
	if err := f.validate(); err != nil {
		return Frame{}, err
	}

	out := f.Clone()
	for _, kind := range domain.Steps {
		step := p.Step(kind)
		if step.Method == "" {
			continue
		}

		start := time.Now()
		next, err := Apply(kind, step.Method, step.Argument, out)
		if observe != nil {
			observe(kind, step.Method, time.Since(start), err)
		}
		if err != nil {
			return Frame{}, err
		}
		out = next
	}
	return out, nil
}
