package table

import (
	"strings"

	"metabulo/internal/processing"
	"metabulo/pkg/contracts/domain"
)

// imputeFraction of the smallest positive value replaces a missing cell
const imputeFraction = 5.0

// Measurements extracts the numeric sample × measurement frame and the
// number of imputed cells. A table with error issues returns a
// *ValidationError.
func (t *Table) Measurements() (processing.Frame, int, error) {
	if errs := Errors(t.Validate()); len(errs) > 0 {
		return processing.Frame{}, 0, &ValidationError{Issues: errs}
	}

	keyRow := t.rowsOf(domain.RowTypeKey)[0]
	keyColumn := t.columnsOf(domain.ColumnTypeKey)[0]
	samples := t.rowsOf(domain.RowTypeSample)
	measurements := t.columnsOf(domain.ColumnTypeMeasurement)

	index := make([]string, len(samples))
	for k, i := range samples {
		index[k] = strings.TrimSpace(t.cell(i, keyColumn))
	}

	columns := make([]string, len(measurements))
	for k, j := range measurements {
		columns[k] = strings.TrimSpace(t.cell(keyRow, j))
	}

	values := make([][]float64, len(samples))
	for k := range values {
		values[k] = make([]float64, len(measurements))
	}

	imputed := 0
	for m, j := range measurements {
		var missing []int
		smallest := 0.0
		for k, i := range samples {
			v, ok := parseNumber(t.cell(i, j))
			if !ok {
				missing = append(missing, k)
				continue
			}
			values[k][m] = v
			if v > 0 && (smallest == 0 || v < smallest) {
				smallest = v
			}
		}
		for _, k := range missing {
			values[k][m] = smallest / imputeFraction
		}
		imputed += len(missing)
	}

	name := strings.TrimSpace(t.cell(keyRow, keyColumn))
	frame, err := processing.NewFrame(name, index, columns, values)
	if err != nil {
		return processing.Frame{}, 0, err
	}
	return frame, imputed, nil
}

// Metadata returns the metadata columns keyed by sample, with a header
// row. It is nil when the table has no metadata columns or is invalid.
func (t *Table) Metadata() [][]string {
	keyRows := t.rowsOf(domain.RowTypeKey)
	keyColumns := t.columnsOf(domain.ColumnTypeKey)
	metadata := t.columnsOf(domain.ColumnTypeMetadata)
	if len(keyRows) != 1 || len(keyColumns) != 1 || len(metadata) == 0 {
		return nil
	}

	columns := append([]int{keyColumns[0]}, metadata...)
	rows := append([]int{keyRows[0]}, t.rowsOf(domain.RowTypeSample)...)

	out := make([][]string, len(rows))
	for k, i := range rows {
		out[k] = make([]string, len(columns))
		for m, j := range columns {
			out[k][m] = t.cell(i, j)
		}
	}
	return out
}
