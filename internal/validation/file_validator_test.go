package validation

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"metabulo/internal/shared/testutil"
)

func newValidator(t *testing.T, maxBytes int64) *FileValidator {
	logger, _ := testutil.NewTestLogger(t)
	return NewFileValidator(logger, maxBytes, []string{".csv", ".TSV", ".txt", ".xlsx"})
}

func workbook(t *testing.T) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]interface{}{"id", "m1"}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestFileValidator_ValidateUpload(t *testing.T) {
	v := newValidator(t, 1<<20)

	tests := []struct {
		name     string
		filename string
		data     []byte
		wantErr  error
	}{
		{
			name:     "csv",
			filename: "data.csv",
			data:     []byte(testutil.SampleCSV),
		},
		{
			name:     "tsv with upper case extension",
			filename: "DATA.TSV",
			data:     []byte(testutil.TabSeparated),
		},
		{
			name:     "workbook",
			filename: "data.xlsx",
			data:     workbook(t),
		},
		{
			name:     "extension not allowed",
			filename: "data.json",
			data:     []byte(`{"a": 1}`),
			wantErr:  ErrUnsupportedFile,
		},
		{
			name:     "binary content in a csv",
			filename: "data.csv",
			data:     []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"),
			wantErr:  ErrUnsupportedFile,
		},
		{
			name:     "text content in a workbook",
			filename: "data.xlsx",
			data:     []byte(testutil.SampleCSV),
			wantErr:  ErrUnsupportedFile,
		},
		{
			name:     "office lock file",
			filename: "~$data.xlsx",
			data:     workbook(t),
			wantErr:  ErrUnsupportedFile,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mime, err := v.ValidateUpload(tt.filename, tt.data)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, mime)
		})
	}
}

func TestFileValidator_SizeLimit(t *testing.T) {
	v := newValidator(t, 8)

	_, err := v.ValidateUpload("data.csv", bytes.Repeat([]byte("a"), 9))
	assert.ErrorIs(t, err, ErrFileTooLarge)

	_, err = v.ValidateUpload("data.csv", []byte("id,m1\n"))
	assert.NoError(t, err)
	assert.Equal(t, int64(8), v.MaxBytes())
}

func TestFileValidator_ValidateFile(t *testing.T) {
	v := newValidator(t, 1<<20)

	path := testutil.WriteTempFile(t, "data.csv", testutil.SampleCSV)
	data, err := v.ValidateFile(path)
	require.NoError(t, err)
	assert.Equal(t, testutil.SampleCSV, string(data))

	_, err = v.ValidateFile(filepath.Join(t.TempDir(), "missing.csv"))
	assert.ErrorContains(t, err, "does not exist")

	dir := filepath.Join(t.TempDir(), "folder.csv")
	require.NoError(t, os.Mkdir(dir, 0o755))
	_, err = v.ValidateFile(dir)
	assert.ErrorContains(t, err, "directory")
}
