// Package exporter renders processed frames as CSV.
//
// CSVWriter writes header and records to any io.Writer or to a file, with
// an optional UTF-8 byte order mark for spreadsheet applications. The frame
// helpers lay a processing.Frame out as one header row (index name followed
// by measurement names) and one row per sample, and read that layout back.
//
// Example usage:
//
//	w := exporter.NewCSVWriter(logger)
//	err := w.WriteFrame(rw, frame, exporter.WriteOptions{})
package exporter
