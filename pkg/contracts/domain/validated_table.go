package domain

import (
	"time"
)

// StepKind names one stage of the processing pipeline
type StepKind string

const (
	StepNormalization  StepKind = "normalization"
	StepTransformation StepKind = "transformation"
	StepScaling        StepKind = "scaling"
)

// Steps lists the pipeline stages in the order they are applied
var Steps = []StepKind{StepNormalization, StepTransformation, StepScaling}

// ProcessingStep is a chosen method and its optional argument.
// A nil Method means the step is not applied.
type ProcessingStep struct {
	Kind     StepKind `json:"kind"`
	Method   *string  `json:"method"`
	Argument *string  `json:"argument"`
}

// Enabled reports whether the step has a method
func (s ProcessingStep) Enabled() bool {
	return s.Method != nil && *s.Method != ""
}

// Severity of a validation issue
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// ValidationIssue describes a problem found while validating a table
type ValidationIssue struct {
	Type     string   `json:"type"`
	Title    string   `json:"title"`
	Severity Severity `json:"severity"`
	Rows     []int    `json:"rows,omitempty"`
	Columns  []int    `json:"columns,omitempty"`
}

// ValidatedTable is the numeric snapshot produced by validation together
// with the processing methods chosen for it
type ValidatedTable struct {
	CSVFileID              string            `json:"csv_file_id" db:"csv_file_id"`
	Measurements           string            `json:"measurements" db:"measurements"`
	Metadata               string            `json:"metadata" db:"metadata"`
	SampleCount            int               `json:"sample_count" db:"sample_count"`
	MeasurementCount       int               `json:"measurement_count" db:"measurement_count"`
	MissingCells           int               `json:"missing_cells" db:"missing_cells"`
	Normalization          *string           `json:"normalization" db:"normalization"`
	NormalizationArgument  *string           `json:"normalization_argument" db:"normalization_argument"`
	Transformation         *string           `json:"transformation" db:"transformation"`
	TransformationArgument *string           `json:"transformation_argument" db:"transformation_argument"`
	Scaling                *string           `json:"scaling" db:"scaling"`
	ScalingArgument        *string           `json:"scaling_argument" db:"scaling_argument"`
	Warnings               []ValidationIssue `json:"warnings,omitempty" db:"-"`
	CreatedAt              time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt              time.Time         `json:"updated_at" db:"updated_at"`
}

// Step returns the configured step of the given kind
func (v *ValidatedTable) Step(kind StepKind) ProcessingStep {
	step := ProcessingStep{Kind: kind}
	switch kind {
	case StepNormalization:
		step.Method, step.Argument = v.Normalization, v.NormalizationArgument
	case StepTransformation:
		step.Method, step.Argument = v.Transformation, v.TransformationArgument
	case StepScaling:
		step.Method, step.Argument = v.Scaling, v.ScalingArgument
	}
	return step
}

// SetStep replaces the method and argument of the step's kind
func (v *ValidatedTable) SetStep(step ProcessingStep) {
	switch step.Kind {
	case StepNormalization:
		v.Normalization, v.NormalizationArgument = step.Method, step.Argument
	case StepTransformation:
		v.Transformation, v.TransformationArgument = step.Method, step.Argument
	case StepScaling:
		v.Scaling, v.ScalingArgument = step.Method, step.Argument
	}
}

// ClearSteps removes every configured method
func (v *ValidatedTable) ClearSteps() {
	for _, kind := range Steps {
		v.SetStep(ProcessingStep{Kind: kind})
	}
}
