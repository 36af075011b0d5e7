package services

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/crypto/blake2b"

	"metabulo/internal/exporter"
	"metabulo/internal/infrastructure"
	"metabulo/internal/processing"
	"metabulo/internal/storage"
	"metabulo/internal/table"
	"metabulo/internal/validation"
	"metabulo/pkg/contracts/domain"
)

// CSVStore is the persistence used by CSVService
type CSVStore interface {
	CreateCSVFile(ctx context.Context, file *domain.CSVFile) error
	GetCSVFile(ctx context.Context, id string) (*domain.CSVFile, error)
	ListCSVFiles(ctx context.Context, opts storage.ListOptions) ([]domain.CSVFileSummary, error)
	DeleteCSVFile(ctx context.Context, id string) error
	UpdateRowType(ctx context.Context, id string, index int, rowType domain.RowType) error
	UpdateColumnType(ctx context.Context, id string, index int, columnType domain.ColumnType) error
	SaveValidatedTable(ctx context.Context, v *domain.ValidatedTable) error
	GetValidatedTable(ctx context.Context, id string) (*domain.ValidatedTable, error)
	UpdateProcessingStep(ctx context.Context, id string, step domain.ProcessingStep) error
}

// ProcessedTable is a download: the validated table with the configured
// pipeline applied
type ProcessedTable struct {
	Filename string
	Frame    processing.Frame
}

// CSVService implements the upload, validation and processing lifecycle
type CSVService struct {
	store   CSVStore
	files   *validation.FileValidator
	metrics *infrastructure.BusinessMetrics
	tracer  trace.Tracer
	logger  *slog.Logger
	newID   func() string
}

// NewCSVService creates a CSV service. metrics may be nil.
func NewCSVService(store CSVStore, files *validation.FileValidator, metrics *infrastructure.BusinessMetrics, logger *slog.Logger) *CSVService {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVService{
		store:   store,
		files:   files,
		metrics: metrics,
		tracer:  otel.Tracer(infrastructure.MeterName),
		logger:  logger.With(slog.String("component", "csv_service")),
		newID:   func() string { return uuid.New().String() },
	}
}

// Upload parses, labels and stores an uploaded table
func (s *CSVService) Upload(ctx context.Context, filename string, r io.Reader) (*domain.CSVFile, error) {
	ctx, span := s.tracer.Start(ctx, "csv.upload", trace.WithAttributes(attribute.String("file.name", filename)))
	defer span.End()

	data, err := io.ReadAll(io.LimitReader(r, s.files.MaxBytes()+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}

	if _, err := s.files.ValidateUpload(filename, data); err != nil {
		return nil, fileError(err)
	}

	cells, err := table.ParseUpload(filename, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnreadableTable, err)
	}

	text, err := table.Encode(cells)
	if err != nil {
		return nil, err
	}

	id := s.newID()
	tbl := table.New(cells)
	checksum := blake2b.Sum256(data)

	file := &domain.CSVFile{
		ID:       id,
		Name:     filepath.Base(filename),
		Table:    text,
		Checksum: hex.EncodeToString(checksum[:]),
		Size:     int64(len(data)),
		Rows:     tbl.RowLabels(id),
		Columns:  tbl.ColumnLabels(id),
	}

	if err := s.store.CreateCSVFile(ctx, file); err != nil {
		infrastructure.RecordError(ctx, err)
		return nil, fmt.Errorf("failed to store upload: %w", err)
	}
	file.TableValidation = tbl.Validate()

	rows, cols := tbl.Dims()
	infrastructure.RecordUpload(ctx, s.metrics, uploadFormat(filename), file.Size)
	s.logger.InfoContext(ctx, "table uploaded",
		slog.String("csv_id", id),
		slog.String("name", file.Name),
		slog.Int64("size", file.Size),
		slog.Int("rows", rows),
		slog.Int("columns", cols))

	return file, nil
}

// List returns upload summaries
func (s *CSVService) List(ctx context.Context, opts storage.ListOptions) ([]domain.CSVFileSummary, error) {
	files, err := s.store.ListCSVFiles(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list uploads: %w", err)
	}
	return files, nil
}

// Get returns an upload with its labels and current validation issues
func (s *CSVService) Get(ctx context.Context, id string) (*domain.CSVFile, error) {
	file, tbl, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	file.TableValidation = tbl.Validate()
	return file, nil
}

// Delete removes an upload and everything derived from it
func (s *CSVService) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteCSVFile(ctx, id); err != nil {
		return s.mapNotFound(err, id, ErrCSVNotFound)
	}
	s.logger.InfoContext(ctx, "table deleted", slog.String("csv_id", id))
	return nil
}

// SetRowType relabels one row and returns the updated upload
func (s *CSVService) SetRowType(ctx context.Context, id string, index int, rowType domain.RowType) (*domain.CSVFile, error) {
	if !rowType.Valid() {
		return nil, fmt.Errorf("%w: row type %q", ErrInvalidAxisType, rowType)
	}

	file, _, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(file.Rows) {
		return nil, fmt.Errorf("%w: row %d of %d", ErrIndexOutOfRange, index, len(file.Rows))
	}

	if err := s.store.UpdateRowType(ctx, id, index, rowType); err != nil {
		return nil, s.mapNotFound(err, id, ErrIndexOutOfRange)
	}

	s.logger.InfoContext(ctx, "row relabelled",
		slog.String("csv_id", id),
		slog.Int("row", index),
		slog.String("row_type", string(rowType)))
	return s.Get(ctx, id)
}

// SetColumnType relabels one column and returns the updated upload
func (s *CSVService) SetColumnType(ctx context.Context, id string, index int, columnType domain.ColumnType) (*domain.CSVFile, error) {
	if !columnType.Valid() {
		return nil, fmt.Errorf("%w: column type %q", ErrInvalidAxisType, columnType)
	}

	file, _, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(file.Columns) {
		return nil, fmt.Errorf("%w: column %d of %d", ErrIndexOutOfRange, index, len(file.Columns))
	}

	if err := s.store.UpdateColumnType(ctx, id, index, columnType); err != nil {
		return nil, s.mapNotFound(err, id, ErrIndexOutOfRange)
	}

	s.logger.InfoContext(ctx, "column relabelled",
		slog.String("csv_id", id),
		slog.Int("column", index),
		slog.String("column_type", string(columnType)))
	return s.Get(ctx, id)
}

// Validate checks the labelled table and stores its measurement snapshot.
// A previous snapshot and its processing methods are replaced.
func (s *CSVService) Validate(ctx context.Context, id string) (*domain.ValidatedTable, error) {
	ctx, span := s.tracer.Start(ctx, "csv.validate", trace.WithAttributes(attribute.String("csv.id", id)))
	defer span.End()

	_, tbl, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	issues := tbl.Validate()
	frame, imputed, err := tbl.Measurements()
	if err != nil {
		infrastructure.RecordValidation(ctx, s.metrics, false, 0)
		s.logger.InfoContext(ctx, "table failed validation",
			slog.String("csv_id", id),
			slog.Int("errors", len(table.Errors(issues))))
		return nil, err
	}

	measurements, err := exporter.FrameToCSV(frame)
	if err != nil {
		return nil, err
	}

	metadata := ""
	if cells := tbl.Metadata(); cells != nil {
		if metadata, err = table.Encode(cells); err != nil {
			return nil, err
		}
	}

	samples, features := frame.Dims()
	v := &domain.ValidatedTable{
		CSVFileID:        id,
		Measurements:     measurements,
		Metadata:         metadata,
		SampleCount:      samples,
		MeasurementCount: features,
		MissingCells:     imputed,
		Warnings:         table.Warnings(issues),
	}

	if err := s.store.SaveValidatedTable(ctx, v); err != nil {
		infrastructure.RecordError(ctx, err)
		return nil, fmt.Errorf("failed to store validated table: %w", err)
	}

	infrastructure.RecordValidation(ctx, s.metrics, true, imputed)
	s.logger.InfoContext(ctx, "table validated",
		slog.String("csv_id", id),
		slog.Int("samples", samples),
		slog.Int("measurements", features),
		slog.Int("imputed", imputed))
	return v, nil
}

// GetValidated returns the stored snapshot and its processing methods
func (s *CSVService) GetValidated(ctx context.Context, id string) (*domain.ValidatedTable, error) {
	if _, err := s.store.GetCSVFile(ctx, id); err != nil {
		return nil, s.mapNotFound(err, id, ErrCSVNotFound)
	}

	v, err := s.store.GetValidatedTable(ctx, id)
	if err != nil {
		return nil, s.mapNotFound(err, id, ErrNotValidated)
	}
	return v, nil
}

// SetNormalization chooses the normalization method. A nil method clears it.
func (s *CSVService) SetNormalization(ctx context.Context, id string, method, argument *string) (*domain.ValidatedTable, error) {
	return s.setStep(ctx, id, domain.ProcessingStep{Kind: domain.StepNormalization, Method: method, Argument: argument})
}

// SetTransformation chooses the transformation method. A nil method clears it.
func (s *CSVService) SetTransformation(ctx context.Context, id string, method, argument *string) (*domain.ValidatedTable, error) {
	return s.setStep(ctx, id, domain.ProcessingStep{Kind: domain.StepTransformation, Method: method, Argument: argument})
}

// SetScaling chooses the scaling method. A nil method clears it.
func (s *CSVService) SetScaling(ctx context.Context, id string, method, argument *string) (*domain.ValidatedTable, error) {
	return s.setStep(ctx, id, domain.ProcessingStep{Kind: domain.StepScaling, Method: method, Argument: argument})
}

func (s *CSVService) setStep(ctx context.Context, id string, step domain.ProcessingStep) (*domain.ValidatedTable, error) {
	if !step.Enabled() {
		step.Method, step.Argument = nil, nil
	} else if !processing.Supported(step.Kind, *step.Method) {
		return nil, fmt.Errorf("%w: %s %q, expected one of %s", ErrInvalidMethod,
			step.Kind, *step.Method, strings.Join(processing.Methods(step.Kind), ", "))
	}

	v, err := s.GetValidated(ctx, id)
	if err != nil {
		return nil, err
	}

	if step.Enabled() {
		frame, err := exporter.ParseFrame(v.Measurements)
		if err != nil {
			return nil, fmt.Errorf("failed to read validated table: %w", err)
		}
		argument := ""
		if step.Argument != nil {
			argument = *step.Argument
		}
		if err := processing.CheckArgument(step.Kind, *step.Method, argument, frame); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
		}
	}

	if err := s.store.UpdateProcessingStep(ctx, id, step); err != nil {
		return nil, s.mapNotFound(err, id, ErrNotValidated)
	}
	v.SetStep(step)

	method := ""
	if step.Method != nil {
		method = *step.Method
	}
	s.logger.InfoContext(ctx, "processing step set",
		slog.String("csv_id", id),
		slog.String("step", string(step.Kind)),
		slog.String("method", method))

	return s.store.GetValidatedTable(ctx, id)
}

// Download applies the configured pipeline to the validated table
func (s *CSVService) Download(ctx context.Context, id string) (*ProcessedTable, error) {
	ctx, span := s.tracer.Start(ctx, "csv.download", trace.WithAttributes(attribute.String("csv.id", id)))
	defer span.End()

	file, err := s.store.GetCSVFile(ctx, id)
	if err != nil {
		return nil, s.mapNotFound(err, id, ErrCSVNotFound)
	}
	v, err := s.store.GetValidatedTable(ctx, id)
	if err != nil {
		return nil, s.mapNotFound(err, id, ErrNotValidated)
	}

	frame, err := exporter.ParseFrame(v.Measurements)
	if err != nil {
		return nil, fmt.Errorf("failed to read validated table: %w", err)
	}

	out, err := processing.PipelineFor(v).ApplyObserved(frame, func(kind domain.StepKind, method string, elapsed time.Duration, err error) {
		infrastructure.RecordProcessingStep(ctx, s.metrics, string(kind), method, elapsed, err == nil)
	})
	if err != nil {
		infrastructure.RecordDownload(ctx, s.metrics, false)
		infrastructure.RecordError(ctx, err)
		return nil, fmt.Errorf("%w: %w", ErrProcessingFailed, err)
	}

	infrastructure.RecordDownload(ctx, s.metrics, true)
	s.logger.InfoContext(ctx, "table downloaded", slog.String("csv_id", id))

	return &ProcessedTable{
		Filename: processedFilename(file.Name),
		Frame:    out,
	}, nil
}

// load reads an upload and rebuilds its labelled table
func (s *CSVService) load(ctx context.Context, id string) (*domain.CSVFile, *table.Table, error) {
	file, err := s.store.GetCSVFile(ctx, id)
	if err != nil {
		return nil, nil, s.mapNotFound(err, id, ErrCSVNotFound)
	}
	tbl, err := table.FromCSVFile(file)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to rebuild table %s: %w", id, err)
	}
	return file, tbl, nil
}

// mapNotFound replaces a storage not found error with target
func (s *CSVService) mapNotFound(err error, id string, target error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("%w: %s", target, id)
	}
	return err
}

// ProcessFile runs the pipeline over a local table without storing it. It
// returns the processed frame and the number of imputed cells.
func ProcessFile(files *validation.FileValidator, path string, pipeline processing.Pipeline) (processing.Frame, int, error) {
	data, err := files.ValidateFile(path)
	if err != nil {
		return processing.Frame{}, 0, fileError(err)
	}

	cells, err := table.ParseUpload(path, bytes.NewReader(data))
	if err != nil {
		return processing.Frame{}, 0, fmt.Errorf("%w: %w", ErrUnreadableTable, err)
	}

	frame, imputed, err := table.New(cells).Measurements()
	if err != nil {
		return processing.Frame{}, 0, err
	}

	out, err := pipeline.Apply(frame)
	if err != nil {
		return processing.Frame{}, 0, fmt.Errorf("%w: %w", ErrProcessingFailed, err)
	}
	return out, imputed, nil
}

// fileError maps file validator errors onto the service sentinels
func fileError(err error) error {
	switch {
	case errors.Is(err, validation.ErrFileTooLarge):
		return fmt.Errorf("%w: %v", ErrFileTooLarge, err)
	case errors.Is(err, validation.ErrUnsupportedFile):
		return fmt.Errorf("%w: %v", ErrUnsupportedFile, err)
	}
	return err
}

func uploadFormat(filename string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	if ext == "" {
		return "unknown"
	}
	return ext
}

func processedFilename(name string) string {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	if base == "" {
		base = "table"
	}
	return base + "_processed.csv"
}
