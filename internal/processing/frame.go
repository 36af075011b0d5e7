package processing

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Frame is a numeric table: one row per sample, one column per measurement
type Frame struct {
	// Name labels the index column, usually the header of the key column
	Name    string
	Index   []string
	Columns []string
	Values  *mat.Dense
}

// NewFrame builds a frame from row-major values
func NewFrame(name string, index, columns []string, rows [][]float64) (Frame, error) {
	if len(index) == 0 || len(columns) == 0 {
		return Frame{}, ErrEmptyFrame
	}
	if len(rows) != len(index) {
		return Frame{}, fmt.Errorf("frame has %d index labels but %d rows", len(index), len(rows))
	}

	data := make([]float64, 0, len(index)*len(columns))
	for i, row := range rows {
		if len(row) != len(columns) {
			return Frame{}, fmt.Errorf("row %d has %d values, expected %d", i, len(row), len(columns))
		}
		data = append(data, row...)
	}

	return Frame{
		Name:    name,
		Index:   append([]string(nil), index...),
		Columns: append([]string(nil), columns...),
		Values:  mat.NewDense(len(index), len(columns), data),
	}, nil
}

// Dims returns the number of samples and measurements
func (f Frame) Dims() (int, int) {
	if f.Values == nil {
		return 0, 0
	}
	return f.Values.Dims()
}

// Clone returns a deep copy of the frame
func (f Frame) Clone() Frame {
	out := Frame{
		Name:    f.Name,
		Index:   append([]string(nil), f.Index...),
		Columns: append([]string(nil), f.Columns...),
	}
	if f.Values != nil {
		out.Values = mat.DenseCopyOf(f.Values)
	}
	return out
}

// Rows returns the values as freshly allocated row slices
func (f Frame) Rows() [][]float64 {
	r, _ := f.Dims()
	rows := make([][]float64, r)
	for i := range rows {
		rows[i] = mat.Row(nil, i, f.Values)
	}
	return rows
}

// SampleIndex returns the row of the sample with the given key, or -1
func (f Frame) SampleIndex(key string) int {
	for i, k := range f.Index {
		if k == key {
			return i
		}
	}
	return -1
}

// withValues returns a frame sharing the labels of f with new values
func (f Frame) withValues(values *mat.Dense) Frame {
	return Frame{
		Name:    f.Name,
		Index:   append([]string(nil), f.Index...),
		Columns: append([]string(nil), f.Columns...),
		Values:  values,
	}
}

func (f Frame) validate() error {
	if r, c := f.Dims(); r == 0 || c == 0 {
		return ErrEmptyFrame
	}
	return nil
}
