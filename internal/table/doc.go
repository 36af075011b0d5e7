// Package table turns uploaded spreadsheets into validated measurement
// tables.
//
// A raw table is a rectangular grid of text cells. Every row and column
// carries a label: exactly one key row holds the measurement names, exactly
// one key column holds the sample keys, metadata rows and columns are kept
// aside, and masked ones are ignored. Labels are inferred on upload and
// can be changed by the client before validation.
//
// Validation reports issues against the labelled grid. A table without
// error issues yields a processing.Frame of its measurements, with missing
// cells imputed.
package table
