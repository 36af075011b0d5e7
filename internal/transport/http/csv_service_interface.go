package http

import (
	"context"
	"io"

	"metabulo/internal/services"
	"metabulo/internal/storage"
	"metabulo/pkg/contracts/domain"
)

// CSVServiceInterface defines the upload and processing operations
type CSVServiceInterface interface {
	Upload(ctx context.Context, filename string, r io.Reader) (*domain.CSVFile, error)
	List(ctx context.Context, opts storage.ListOptions) ([]domain.CSVFileSummary, error)
	Get(ctx context.Context, id string) (*domain.CSVFile, error)
	Delete(ctx context.Context, id string) error
	SetRowType(ctx context.Context, id string, index int, rowType domain.RowType) (*domain.CSVFile, error)
	SetColumnType(ctx context.Context, id string, index int, columnType domain.ColumnType) (*domain.CSVFile, error)
	Validate(ctx context.Context, id string) (*domain.ValidatedTable, error)
	GetValidated(ctx context.Context, id string) (*domain.ValidatedTable, error)
	SetNormalization(ctx context.Context, id string, method, argument *string) (*domain.ValidatedTable, error)
	SetTransformation(ctx context.Context, id string, method, argument *string) (*domain.ValidatedTable, error)
	SetScaling(ctx context.Context, id string, method, argument *string) (*domain.ValidatedTable, error)
	Download(ctx context.Context, id string) (*services.ProcessedTable, error)
}
