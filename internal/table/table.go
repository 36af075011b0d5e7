package table

import (
	"fmt"

	"metabulo/pkg/contracts/domain"
)

// Table is a raw grid together with its row and column labels
type Table struct {
	Cells       [][]string
	RowTypes    []domain.RowType
	ColumnTypes []domain.ColumnType
}

// New labels cells with inferred row and column types
func New(cells [][]string) *Table {
	rowTypes := InferRowTypes(cells)
	return &Table{
		Cells:       cells,
		RowTypes:    rowTypes,
		ColumnTypes: InferColumnTypes(cells, rowTypes),
	}
}

// FromCSVFile rebuilds the table of a stored upload
func FromCSVFile(file *domain.CSVFile) (*Table, error) {
	cells, err := Decode(file.Table)
	if err != nil {
		return nil, err
	}

	if len(file.Rows) != len(cells) {
		return nil, fmt.Errorf("upload %s has %d row labels for %d rows", file.ID, len(file.Rows), len(cells))
	}
	if len(file.Columns) != len(cells[0]) {
		return nil, fmt.Errorf("upload %s has %d column labels for %d columns", file.ID, len(file.Columns), len(cells[0]))
	}

	t := &Table{
		Cells:       cells,
		RowTypes:    make([]domain.RowType, len(file.Rows)),
		ColumnTypes: make([]domain.ColumnType, len(file.Columns)),
	}
	for _, r := range file.Rows {
		if r.RowIndex < 0 || r.RowIndex >= len(cells) {
			return nil, fmt.Errorf("upload %s has a label for missing row %d", file.ID, r.RowIndex)
		}
		t.RowTypes[r.RowIndex] = r.RowType
	}
	for _, c := range file.Columns {
		if c.ColumnIndex < 0 || c.ColumnIndex >= len(t.ColumnTypes) {
			return nil, fmt.Errorf("upload %s has a label for missing column %d", file.ID, c.ColumnIndex)
		}
		t.ColumnTypes[c.ColumnIndex] = c.ColumnType
	}
	return t, nil
}

// Dims returns the number of rows and columns
func (t *Table) Dims() (int, int) {
	if len(t.Cells) == 0 {
		return 0, 0
	}
	return len(t.Cells), len(t.Cells[0])
}

// RowLabels returns the row labels bound to an upload id
func (t *Table) RowLabels(csvFileID string) []domain.TableRow {
	rows := make([]domain.TableRow, len(t.RowTypes))
	for i, rt := range t.RowTypes {
		rows[i] = domain.TableRow{CSVFileID: csvFileID, RowIndex: i, RowType: rt}
	}
	return rows
}

// ColumnLabels returns the column labels bound to an upload id
func (t *Table) ColumnLabels(csvFileID string) []domain.TableColumn {
	columns := make([]domain.TableColumn, len(t.ColumnTypes))
	for j, ct := range t.ColumnTypes {
		columns[j] = domain.TableColumn{CSVFileID: csvFileID, ColumnIndex: j, ColumnType: ct}
	}
	return columns
}

func (t *Table) rowsOf(rt domain.RowType) []int {
	var idx []int
	for i, v := range t.RowTypes {
		if v == rt {
			idx = append(idx, i)
		}
	}
	return idx
}

func (t *Table) columnsOf(ct domain.ColumnType) []int {
	var idx []int
	for j, v := range t.ColumnTypes {
		if v == ct {
			idx = append(idx, j)
		}
	}
	return idx
}

func (t *Table) cell(i, j int) string {
	if i < 0 || i >= len(t.Cells) || j < 0 || j >= len(t.Cells[i]) {
		return ""
	}
	return t.Cells[i][j]
}
