package table

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

var (
	// ErrEmptyTable is returned when an upload contains no cells
	ErrEmptyTable = errors.New("table is empty")

	// ErrUnreadable is returned when an upload cannot be parsed as a table
	ErrUnreadable = errors.New("table is not readable")
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Parse reads delimited text. The delimiter is a comma unless the first
// line has no comma but a tab or a semicolon.
func Parse(r io.Reader) ([][]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read table: %w", err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)
	return parseDelimited(data, sniffDelimiter(data))
}

// ParseUpload picks the parser from the file extension
func ParseUpload(filename string, r io.Reader) ([][]string, error) {
	if strings.EqualFold(filepath.Ext(filename), ".xlsx") {
		return ParseXLSX(r)
	}
	return Parse(r)
}

// Decode reads a table stored by Encode
func Decode(text string) ([][]string, error) {
	return parseDelimited([]byte(text), ',')
}

// Encode renders cells as CSV text
func Encode(cells [][]string) (string, error) {
	var buf strings.Builder
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(cells); err != nil {
		return "", fmt.Errorf("failed to encode table: %w", err)
	}
	return buf.String(), nil
}

func sniffDelimiter(data []byte) rune {
	line := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		line = data[:i]
	}
	if bytes.ContainsRune(line, ',') {
		return ','
	}
	if bytes.ContainsRune(line, '\t') {
		return '\t'
	}
	if bytes.ContainsRune(line, ';') {
		return ';'
	}
	return ','
}

func parseDelimited(data []byte, delimiter rune) ([][]string, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	return rectangular(rows)
}

// rectangular drops trailing empty rows and pads the rest to equal width
func rectangular(rows [][]string) ([][]string, error) {
	for len(rows) > 0 && blank(rows[len(rows)-1]) {
		rows = rows[:len(rows)-1]
	}
	if len(rows) == 0 {
		return nil, ErrEmptyTable
	}

	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}
	for i, row := range rows {
		if len(row) < width {
			padded := make([]string, width)
			copy(padded, row)
			rows[i] = padded
		}
	}
	return rows, nil
}

func blank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
