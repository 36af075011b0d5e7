// Package storage is the relational store of uploads, axis labels and
// validated tables.
//
// It runs on SQLite (modernc.org/sqlite, the default) or PostgreSQL
// (pgx). Queries use ? placeholders rebound for the driver, and the schema
// is managed by goose migrations embedded in the binary.
package storage
