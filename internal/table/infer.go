package table

import (
	"metabulo/pkg/contracts/domain"
)

// InferRowTypes labels the first row as key, blank rows as masked and
// every other row as a sample
func InferRowTypes(cells [][]string) []domain.RowType {
	types := make([]domain.RowType, len(cells))
	for i, row := range cells {
		switch {
		case i == 0:
			types[i] = domain.RowTypeKey
		case blank(row):
			types[i] = domain.RowTypeMasked
		default:
			types[i] = domain.RowTypeSample
		}
	}
	return types
}

// InferColumnTypes labels the first column as key. Other columns are
// judged by their sample cells: all missing is masked, all numeric or
// missing is a measurement, anything else is metadata.
func InferColumnTypes(cells [][]string, rowTypes []domain.RowType) []domain.ColumnType {
	width := 0
	if len(cells) > 0 {
		width = len(cells[0])
	}

	types := make([]domain.ColumnType, width)
	for j := range types {
		if j == 0 {
			types[j] = domain.ColumnTypeKey
			continue
		}

		empty, numeric := true, true
		for i, row := range cells {
			if rowTypes[i] != domain.RowTypeSample || j >= len(row) {
				continue
			}
			if isMissing(row[j]) {
				continue
			}
			empty = false
			if _, ok := parseNumber(row[j]); !ok {
				numeric = false
				break
			}
		}

		switch {
		case empty:
			types[j] = domain.ColumnTypeMasked
		case numeric:
			types[j] = domain.ColumnTypeMeasurement
		default:
			types[j] = domain.ColumnTypeMetadata
		}
	}
	return types
}
