package domain

import (
	"time"
)

// CSVFile represents an uploaded table and its axis labels
type CSVFile struct {
	ID              string            `json:"id" db:"id" validate:"required,uuid"`
	Name            string            `json:"name" db:"name" validate:"required,max=255"`
	Table           string            `json:"table" db:"table_data"`
	Checksum        string            `json:"checksum" db:"checksum"`
	Size            int64             `json:"size" db:"size"`
	CreatedAt       time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at" db:"updated_at"`
	Rows            []TableRow        `json:"rows" db:"-"`
	Columns         []TableColumn     `json:"columns" db:"-"`
	// TableValidation lists the issues of the table under its current labels
	TableValidation []ValidationIssue `json:"table_validation" db:"-"`
}

// CSVFileSummary is the list representation of an upload
type CSVFileSummary struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Checksum  string    `json:"checksum" db:"checksum"`
	Size      int64     `json:"size" db:"size"`
	Validated bool      `json:"validated" db:"validated"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// RowType labels a row of an uploaded table
type RowType string

const (
	RowTypeKey      RowType = "key"
	RowTypeMetadata RowType = "metadata"
	RowTypeSample   RowType = "sample"
	RowTypeMasked   RowType = "masked"
)

// DefaultRowType is assigned to a row that loses the key label
const DefaultRowType = RowTypeSample

// Valid reports whether t is a known row type
func (t RowType) Valid() bool {
	switch t {
	case RowTypeKey, RowTypeMetadata, RowTypeSample, RowTypeMasked:
		return true
	}
	return false
}

// ColumnType labels a column of an uploaded table
type ColumnType string

const (
	ColumnTypeKey         ColumnType = "key"
	ColumnTypeMetadata    ColumnType = "metadata"
	ColumnTypeMeasurement ColumnType = "measurement"
	ColumnTypeMasked      ColumnType = "masked"
)

// DefaultColumnType is assigned to a column that loses the key label
const DefaultColumnType = ColumnTypeMeasurement

// Valid reports whether t is a known column type
func (t ColumnType) Valid() bool {
	switch t {
	case ColumnTypeKey, ColumnTypeMetadata, ColumnTypeMeasurement, ColumnTypeMasked:
		return true
	}
	return false
}

// TableRow is the persisted label of one row
type TableRow struct {
	CSVFileID string  `json:"csv_file_id" db:"csv_file_id"`
	RowIndex  int     `json:"row_index" db:"row_index"`
	RowType   RowType `json:"row_type" db:"row_type"`
}

// TableColumn is the persisted label of one column
type TableColumn struct {
	CSVFileID   string     `json:"csv_file_id" db:"csv_file_id"`
	ColumnIndex int        `json:"column_index" db:"column_index"`
	ColumnType  ColumnType `json:"column_type" db:"column_type"`
}
