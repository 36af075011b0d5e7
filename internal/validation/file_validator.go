package validation

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

var (
	// ErrUnsupportedFile is returned for an extension or content type that
	// cannot hold a table
	ErrUnsupportedFile = errors.New("unsupported file type")

	// ErrFileTooLarge is returned when a file exceeds the size limit
	ErrFileTooLarge = errors.New("file too large")
)

// xlsxMIME is the content type of an Office Open XML workbook
const xlsxMIME = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// FileValidator checks uploaded and local table files
type FileValidator struct {
	logger            *slog.Logger
	maxBytes          int64
	allowedExtensions []string
}

// NewFileValidator creates a new file validator. Extensions are compared
// case-insensitively and include the leading dot.
func NewFileValidator(logger *slog.Logger, maxBytes int64, allowedExtensions []string) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	exts := make([]string, len(allowedExtensions))
	for i, ext := range allowedExtensions {
		exts[i] = strings.ToLower(ext)
	}
	return &FileValidator{
		logger:            logger.With(slog.String("component", "file_validator")),
		maxBytes:          maxBytes,
		allowedExtensions: exts,
	}
}

// MaxBytes returns the size limit
func (v *FileValidator) MaxBytes() int64 {
	return v.maxBytes
}

// ValidateUpload checks the name, the size and the sniffed content type of
// an upload and returns the detected MIME type
func (v *FileValidator) ValidateUpload(filename string, data []byte) (string, error) {
	ext, err := v.ValidateName(filename)
	if err != nil {
		return "", err
	}

	if v.maxBytes > 0 && int64(len(data)) > v.maxBytes {
		v.logger.Warn("Upload exceeds size limit",
			slog.String("file", filename),
			slog.Int("size", len(data)),
			slog.Int64("max_bytes", v.maxBytes))
		return "", fmt.Errorf("%w: %d bytes exceeds %d", ErrFileTooLarge, len(data), v.maxBytes)
	}

	mtype := mimetype.Detect(data)
	if !contentMatches(ext, mtype) {
		v.logger.Warn("Upload content does not match its extension",
			slog.String("file", filename),
			slog.String("extension", ext),
			slog.String("mime", mtype.String()))
		return "", fmt.Errorf("%w: %s content in a %s file", ErrUnsupportedFile, mtype.String(), ext)
	}

	v.logger.Debug("Upload validated",
		slog.String("file", filename),
		slog.String("mime", mtype.String()),
		slog.Int("size", len(data)))
	return mtype.String(), nil
}

// ValidateName checks the extension of filename and returns it lowercased
func (v *FileValidator) ValidateName(filename string) (string, error) {
	base := filepath.Base(filename)
	if strings.HasPrefix(base, "~$") {
		return "", fmt.Errorf("%w: %s is a temporary office file", ErrUnsupportedFile, base)
	}

	ext := strings.ToLower(filepath.Ext(base))
	for _, allowed := range v.allowedExtensions {
		if ext == allowed {
			return ext, nil
		}
	}
	return "", fmt.Errorf("%w: extension %q is not one of %s", ErrUnsupportedFile, ext, strings.Join(v.allowedExtensions, ", "))
}

// ValidateFile checks that a local file exists, is readable and passes
// the upload checks. It returns the file content.
func (v *FileValidator) ValidateFile(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		v.logger.Error("File does not exist",
			slog.String("file", path))
		return nil, fmt.Errorf("file %s does not exist", path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to stat file %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory, not a file", path)
	}
	if v.maxBytes > 0 && info.Size() > v.maxBytes {
		return nil, fmt.Errorf("%w: %d bytes exceeds %d", ErrFileTooLarge, info.Size(), v.maxBytes)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("file %s is not readable: %w", path, err)
	}

	if _, err := v.ValidateUpload(path, data); err != nil {
		return nil, err
	}
	return data, nil
}

// contentMatches reports whether the sniffed type fits the extension.
// Workbooks may be detected as plain zip archives.
func contentMatches(ext string, mtype *mimetype.MIME) bool {
	for m := mtype; m != nil; m = m.Parent() {
		switch {
		case ext == ".xlsx" && (m.Is(xlsxMIME) || m.Is("application/zip")):
			return true
		case ext != ".xlsx" && m.Is("text/plain"):
			return true
		}
	}
	return false
}
