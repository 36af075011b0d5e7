package services

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"metabulo/internal/config"
	"metabulo/internal/processing"
	"metabulo/internal/shared/testutil"
	"metabulo/internal/storage"
	"metabulo/internal/table"
	"metabulo/internal/validation"
	"metabulo/pkg/contracts/domain"
)

func strPtr(s string) *string { return &s }

func newTestFiles(t *testing.T, maxBytes int64) *validation.FileValidator {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	return validation.NewFileValidator(logger, maxBytes, []string{".csv", ".tsv", ".txt", ".xlsx"})
}

func newTestService(t *testing.T) *CSVService {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)

	ctx := context.Background()
	store, err := storage.Open(ctx, config.DatabaseConfig{
		Driver: config.DriverSQLite,
		DSN:    filepath.Join(t.TempDir(), "metabulo.db"),
	}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	require.NoError(t, store.Migrate(ctx))

	return NewCSVService(store, newTestFiles(t, config.DefaultMaxUploadBytes), nil, logger)
}

func upload(t *testing.T, s *CSVService, name, content string) *domain.CSVFile {
	t.Helper()
	file, err := s.Upload(context.Background(), name, strings.NewReader(content))
	require.NoError(t, err)
	return file
}

func TestCSVService_Upload(t *testing.T) {
	s := newTestService(t)
	file := upload(t, s, "dir/sample.csv", testutil.SampleCSV)

	assert.NotEmpty(t, file.ID)
	assert.Equal(t, "sample.csv", file.Name)
	assert.Len(t, file.Checksum, 64)
	assert.Equal(t, int64(len(testutil.SampleCSV)), file.Size)
	assert.Empty(t, file.TableValidation)

	require.Len(t, file.Rows, 4)
	assert.Equal(t, domain.RowTypeKey, file.Rows[0].RowType)
	assert.Equal(t, domain.RowTypeSample, file.Rows[3].RowType)

	require.Len(t, file.Columns, 5)
	assert.Equal(t, domain.ColumnTypeKey, file.Columns[0].ColumnType)
	assert.Equal(t, domain.ColumnTypeMetadata, file.Columns[1].ColumnType)
	assert.Equal(t, domain.ColumnTypeMeasurement, file.Columns[4].ColumnType)

	got, err := s.Get(context.Background(), file.ID)
	require.NoError(t, err)
	assert.Equal(t, file.Checksum, got.Checksum)
	assert.Len(t, got.Rows, 4)
}

func TestCSVService_UploadTabSeparated(t *testing.T) {
	s := newTestService(t)
	file := upload(t, s, "sample.tsv", testutil.TabSeparated)

	assert.Len(t, file.Columns, 5)
	assert.Contains(t, file.Table, "s1,a,1,2,7")
}

func TestCSVService_UploadRejected(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	store := &MockCSVStore{}

	tests := []struct {
		name     string
		filename string
		content  string
		maxBytes int64
		wantErr  error
	}{
		{"too large", "sample.csv", testutil.SampleCSV, 10, ErrFileTooLarge},
		{"wrong extension", "sample.pdf", testutil.SampleCSV, 1 << 20, ErrUnsupportedFile},
		{"binary content", "sample.csv", "\x00\x01\x02\x03PK\x03\x04", 1 << 20, ErrUnsupportedFile},
		{"empty table", "sample.csv", "\n\n", 1 << 20, ErrUnreadableTable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewCSVService(store, newTestFiles(t, tt.maxBytes), nil, logger)
			_, err := s.Upload(context.Background(), tt.filename, strings.NewReader(tt.content))
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	store.AssertNotCalled(t, "CreateCSVFile", mock.Anything, mock.Anything)
}

func TestCSVService_UploadStoreFailure(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	store := &MockCSVStore{}
	store.On("CreateCSVFile", mock.Anything, mock.AnythingOfType("*domain.CSVFile")).Return(errors.New("disk full"))

	s := NewCSVService(store, newTestFiles(t, 1<<20), nil, logger)
	_, err := s.Upload(context.Background(), "sample.csv", strings.NewReader(testutil.SampleCSV))

	assert.ErrorContains(t, err, "disk full")
	store.AssertExpectations(t)
}

func TestCSVService_ListAndDelete(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	a := upload(t, s, "a.csv", testutil.SampleCSV)
	upload(t, s, "b.csv", testutil.SampleCSV)

	files, err := s.List(ctx, storage.ListOptions{})
	require.NoError(t, err)
	assert.Len(t, files, 2)

	require.NoError(t, s.Delete(ctx, a.ID))
	_, err = s.Get(ctx, a.ID)
	assert.ErrorIs(t, err, ErrCSVNotFound)
	assert.ErrorIs(t, s.Delete(ctx, a.ID), ErrCSVNotFound)

	files, err = s.List(ctx, storage.ListOptions{})
	require.NoError(t, err)
	assert.Len(t, files, 1)
}

func TestCSVService_SetRowType(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	file := upload(t, s, "sample.csv", testutil.SampleCSV)

	got, err := s.SetRowType(ctx, file.ID, 2, domain.RowTypeMasked)
	require.NoError(t, err)
	assert.Equal(t, domain.RowTypeMasked, got.Rows[2].RowType)

	// a second key row demotes the first
	got, err = s.SetRowType(ctx, file.ID, 1, domain.RowTypeKey)
	require.NoError(t, err)
	assert.Equal(t, domain.RowTypeKey, got.Rows[1].RowType)
	assert.Equal(t, domain.DefaultRowType, got.Rows[0].RowType)

	_, err = s.SetRowType(ctx, file.ID, 4, domain.RowTypeSample)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
	_, err = s.SetRowType(ctx, file.ID, -1, domain.RowTypeSample)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
	_, err = s.SetRowType(ctx, file.ID, 1, domain.RowType("header"))
	assert.ErrorIs(t, err, ErrInvalidAxisType)
	_, err = s.SetRowType(ctx, "missing", 1, domain.RowTypeSample)
	assert.ErrorIs(t, err, ErrCSVNotFound)
}

func TestCSVService_SetColumnType(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	file := upload(t, s, "sample.csv", testutil.SampleCSV)

	got, err := s.SetColumnType(ctx, file.ID, 4, domain.ColumnTypeMasked)
	require.NoError(t, err)
	assert.Equal(t, domain.ColumnTypeMasked, got.Columns[4].ColumnType)

	got, err = s.SetColumnType(ctx, file.ID, 1, domain.ColumnTypeKey)
	require.NoError(t, err)
	assert.Equal(t, domain.ColumnTypeKey, got.Columns[1].ColumnType)
	assert.Equal(t, domain.DefaultColumnType, got.Columns[0].ColumnType)

	_, err = s.SetColumnType(ctx, file.ID, 5, domain.ColumnTypeMetadata)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
	_, err = s.SetColumnType(ctx, file.ID, 1, domain.ColumnType("numbers"))
	assert.ErrorIs(t, err, ErrInvalidAxisType)
}

func TestCSVService_Validate(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	file := upload(t, s, "sample.csv", testutil.SampleCSV)

	v, err := s.Validate(ctx, file.ID)
	require.NoError(t, err)
	assert.Equal(t, file.ID, v.CSVFileID)
	assert.Equal(t, 3, v.SampleCount)
	assert.Equal(t, 3, v.MeasurementCount)
	assert.Zero(t, v.MissingCells)
	assert.Empty(t, v.Warnings)
	assert.Contains(t, v.Metadata, "group")
	assert.Nil(t, v.Normalization)

	stored, err := s.GetValidated(ctx, file.ID)
	require.NoError(t, err)
	assert.Equal(t, v.Measurements, stored.Measurements)
}

func TestCSVService_ValidateMissingValues(t *testing.T) {
	s := newTestService(t)
	file := upload(t, s, "missing.csv", testutil.MissingValuesCSV)

	v, err := s.Validate(context.Background(), file.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, v.MissingCells)
	require.Len(t, v.Warnings, 1)
	assert.Equal(t, table.IssueMissingData, v.Warnings[0].Type)
	assert.Empty(t, v.Metadata)
}

func TestCSVService_ValidateInvalid(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	file := upload(t, s, "meta.csv", testutil.MetadataOnlyCSV)

	assert.NotEmpty(t, file.TableValidation)

	_, err := s.Validate(ctx, file.ID)
	var verr *table.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, table.IssueNoMeasurements, verr.Issues[0].Type)

	_, err = s.GetValidated(ctx, file.ID)
	assert.ErrorIs(t, err, ErrNotValidated)
}

func TestCSVService_RevalidateClearsMethods(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	file := upload(t, s, "sample.csv", testutil.SampleCSV)

	_, err := s.Validate(ctx, file.ID)
	require.NoError(t, err)
	_, err = s.SetScaling(ctx, file.ID, strPtr("auto"), nil)
	require.NoError(t, err)

	_, err = s.Validate(ctx, file.ID)
	require.NoError(t, err)

	v, err := s.GetValidated(ctx, file.ID)
	require.NoError(t, err)
	assert.Nil(t, v.Scaling)
}

func TestCSVService_SetSteps(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	file := upload(t, s, "sample.csv", testutil.SampleCSV)

	_, err := s.SetNormalization(ctx, file.ID, strPtr("sum"), nil)
	assert.ErrorIs(t, err, ErrNotValidated)

	_, err = s.Validate(ctx, file.ID)
	require.NoError(t, err)

	v, err := s.SetNormalization(ctx, file.ID, strPtr("reference-sample"), strPtr("s2"))
	require.NoError(t, err)
	require.NotNil(t, v.Normalization)
	assert.Equal(t, "reference-sample", *v.Normalization)
	assert.Equal(t, "s2", *v.NormalizationArgument)

	v, err = s.SetTransformation(ctx, file.ID, strPtr("log2"), strPtr("0.5"))
	require.NoError(t, err)
	assert.Equal(t, "log2", *v.Transformation)

	v, err = s.SetScaling(ctx, file.ID, strPtr("pareto"), nil)
	require.NoError(t, err)
	assert.Equal(t, "pareto", *v.Scaling)

	// clearing a step drops its argument
	v, err = s.SetNormalization(ctx, file.ID, nil, strPtr("s2"))
	require.NoError(t, err)
	assert.Nil(t, v.Normalization)
	assert.Nil(t, v.NormalizationArgument)
	assert.Equal(t, "log2", *v.Transformation)
}

func TestCSVService_SetStepRejected(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	file := upload(t, s, "sample.csv", testutil.SampleCSV)
	_, err := s.Validate(ctx, file.ID)
	require.NoError(t, err)

	_, err = s.SetNormalization(ctx, file.ID, strPtr("quantile"), nil)
	assert.ErrorIs(t, err, ErrInvalidMethod)
	_, err = s.SetScaling(ctx, file.ID, strPtr("sum"), nil)
	assert.ErrorIs(t, err, ErrInvalidMethod)
	_, err = s.SetNormalization(ctx, file.ID, strPtr("reference-sample"), strPtr("s9"))
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = s.SetTransformation(ctx, file.ID, strPtr("log10"), strPtr("-1"))
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = s.SetScaling(ctx, "missing", strPtr("auto"), nil)
	assert.ErrorIs(t, err, ErrCSVNotFound)

	v, err := s.GetValidated(ctx, file.ID)
	require.NoError(t, err)
	assert.Nil(t, v.Normalization)
	assert.Nil(t, v.Transformation)
}

func TestCSVService_Download(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	file := upload(t, s, "sample.csv", testutil.SampleCSV)

	_, err := s.Download(ctx, file.ID)
	assert.ErrorIs(t, err, ErrNotValidated)

	_, err = s.Validate(ctx, file.ID)
	require.NoError(t, err)
	_, err = s.SetNormalization(ctx, file.ID, strPtr("sum"), nil)
	require.NoError(t, err)

	out, err := s.Download(ctx, file.ID)
	require.NoError(t, err)
	assert.Equal(t, "sample_processed.csv", out.Filename)
	assert.Equal(t, []string{"s1", "s2", "s3"}, out.Frame.Index)
	assert.Equal(t, []string{"m1", "m2", "m3"}, out.Frame.Columns)

	want := [][]float64{
		{100, 200, 700},
		{250, 250, 500},
		{300, 600, 100},
	}
	for i, row := range want {
		for j, value := range row {
			assert.InDelta(t, value, out.Frame.Values.At(i, j), 1e-9)
		}
	}

	_, err = s.SetScaling(ctx, file.ID, strPtr("range"), nil)
	require.NoError(t, err)
	out, err = s.Download(ctx, file.ID)
	require.NoError(t, err)

	// m1 after sum normalization is 100, 250, 300
	mean := (100.0 + 250 + 300) / 3
	for i, value := range []float64{100, 250, 300} {
		assert.InDelta(t, (value-mean)/200, out.Frame.Values.At(i, 0), 1e-9)
	}
}

func TestCSVService_DownloadDegenerate(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	file := upload(t, s, "zero.csv", testutil.ZeroSampleCSV)

	_, err := s.Validate(ctx, file.ID)
	require.NoError(t, err)
	_, err = s.SetNormalization(ctx, file.ID, strPtr("sum"), nil)
	require.NoError(t, err)

	_, err = s.Download(ctx, file.ID)
	assert.ErrorIs(t, err, ErrProcessingFailed)
	assert.ErrorIs(t, err, processing.ErrDegenerate)
}

func TestProcessFile(t *testing.T) {
	path := testutil.WriteTempFile(t, "sample.csv", testutil.SampleCSV)
	files := newTestFiles(t, 1<<20)

	out, imputed, err := ProcessFile(files, path, processing.Pipeline{
		Normalization:  processing.Step{Method: "sum"},
		Transformation: processing.Step{Method: "cuberoot"},
	})
	require.NoError(t, err)
	assert.Zero(t, imputed)
	assert.InDelta(t, math.Cbrt(300), out.Values.At(2, 0), 1e-9)

	_, _, err = ProcessFile(files, testutil.WriteTempFile(t, "meta.csv", testutil.MetadataOnlyCSV), processing.Pipeline{})
	var verr *table.ValidationError
	assert.ErrorAs(t, err, &verr)

	_, _, err = ProcessFile(files, filepath.Join(t.TempDir(), "absent.csv"), processing.Pipeline{})
	assert.Error(t, err)
}

func TestProcessedFilename(t *testing.T) {
	assert.Equal(t, "sample_processed.csv", processedFilename("sample.csv"))
	assert.Equal(t, "book_processed.csv", processedFilename("book.xlsx"))
	assert.Equal(t, "table_processed.csv", processedFilename(".csv"))
}
