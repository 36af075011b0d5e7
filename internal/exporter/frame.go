package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"metabulo/internal/processing"
)

// FrameRecords lays a frame out as a header and one record per sample
func FrameRecords(f processing.Frame, precision int) ([]string, [][]string) {
	headers := append([]string{f.Name}, f.Columns...)

	rows := f.Rows()
	records := make([][]string, len(rows))
	for i, row := range rows {
		record := make([]string, 0, len(row)+1)
		record = append(record, f.Index[i])
		for _, v := range row {
			record = append(record, formatFloat(v, precision))
		}
		records[i] = record
	}
	return headers, records
}

// WriteFrame writes a frame as CSV to out
func (w *CSVWriter) WriteFrame(out io.Writer, f processing.Frame, options WriteOptions) error {
	options.Headers, options.Records = FrameRecords(f, options.precision())
	return w.Write(out, options)
}

// WriteFrameFile writes a frame as a CSV file
func (w *CSVWriter) WriteFrameFile(filePath string, f processing.Frame, options WriteOptions) error {
	options.Headers, options.Records = FrameRecords(f, options.precision())
	return w.WriteFile(filePath, options)
}

// FrameToCSV renders a frame with full precision
func FrameToCSV(f processing.Frame) (string, error) {
	var buf strings.Builder
	headers, records := FrameRecords(f, -1)
	if err := NewCSVWriter(nil).Write(&buf, WriteOptions{Headers: headers, Records: records}); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// ParseFrame reads a frame written by FrameToCSV
func ParseFrame(text string) (processing.Frame, error) {
	reader := csv.NewReader(strings.NewReader(text))
	rows, err := reader.ReadAll()
	if err != nil {
		return processing.Frame{}, fmt.Errorf("failed to read frame: %w", err)
	}
	if len(rows) < 2 || len(rows[0]) < 2 {
		return processing.Frame{}, processing.ErrEmptyFrame
	}

	header := rows[0]
	index := make([]string, 0, len(rows)-1)
	values := make([][]float64, 0, len(rows)-1)
	for i, row := range rows[1:] {
		index = append(index, row[0])
		vals := make([]float64, len(row)-1)
		for j, cell := range row[1:] {
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return processing.Frame{}, fmt.Errorf("frame row %d column %d: %w", i+1, j+1, err)
			}
			vals[j] = v
		}
		values = append(values, vals)
	}

	return processing.NewFrame(header[0], index, header[1:], values)
}
