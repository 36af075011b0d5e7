package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func TestValidatedTable_StepRoundTrip(t *testing.T) {
	v := &ValidatedTable{}

	v.SetStep(ProcessingStep{Kind: StepNormalization, Method: strPtr("reference-sample"), Argument: strPtr("S1")})
	v.SetStep(ProcessingStep{Kind: StepScaling, Method: strPtr("pareto")})

	norm := v.Step(StepNormalization)
	assert.True(t, norm.Enabled())
	assert.Equal(t, "reference-sample", *norm.Method)
	assert.Equal(t, "S1", *norm.Argument)

	assert.False(t, v.Step(StepTransformation).Enabled())
	assert.Equal(t, "pareto", *v.Step(StepScaling).Method)

	v.ClearSteps()
	for _, kind := range Steps {
		assert.False(t, v.Step(kind).Enabled(), string(kind))
	}
}

func TestAxisTypes_Valid(t *testing.T) {
	assert.True(t, RowTypeKey.Valid())
	assert.True(t, RowTypeMasked.Valid())
	assert.False(t, RowType("header").Valid())

	assert.True(t, ColumnTypeMeasurement.Valid())
	assert.False(t, ColumnType("sample").Valid())
}
