// Package api contains API contract definitions for the metabulo HTTP API.
// Version v1 represents the current stable API version.
package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"metabulo/pkg/contracts/domain"
)

// Argument is a processing method argument. Clients send it as a JSON
// string, a JSON number or null; it is kept in its textual form.
type Argument string

// UnmarshalJSON accepts strings and numbers
func (a *Argument) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = Argument(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("argument must be a string or a number")
	}
	if _, err := strconv.ParseFloat(n.String(), 64); err != nil {
		return fmt.Errorf("argument is not a valid number: %w", err)
	}
	*a = Argument(n.String())
	return nil
}

// Ptr returns the argument as an optional string
func (a *Argument) Ptr() *string {
	if a == nil {
		return nil
	}
	s := string(*a)
	return &s
}

// NormalizationRequest sets the normalization step
type NormalizationRequest struct {
	Method   *string   `json:"method" validate:"omitempty,oneof=sum reference-sample median"`
	Argument *Argument `json:"argument"`
}

// TransformationRequest sets the transformation step
type TransformationRequest struct {
	Method   *string   `json:"method" validate:"omitempty,oneof=log2 log10 cuberoot squareroot"`
	Argument *Argument `json:"argument"`
}

// ScalingRequest sets the scaling step
type ScalingRequest struct {
	Method   *string   `json:"method" validate:"omitempty,oneof=auto pareto range vast level"`
	Argument *Argument `json:"argument"`
}

// RowUpdateRequest relabels one row of an upload
type RowUpdateRequest struct {
	RowType domain.RowType `json:"row_type" validate:"required,oneof=key metadata sample masked"`
}

// ColumnUpdateRequest relabels one column of an upload
type ColumnUpdateRequest struct {
	ColumnType domain.ColumnType `json:"column_type" validate:"required,oneof=key metadata measurement masked"`
}
