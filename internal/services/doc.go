// Package services implements the business rules of the metabulo API. It
// sits between the HTTP handlers and the store.
//
// # Services
//
//	CSVService     upload, relabel, validate, configure and download tables
//	HealthService  liveness, readiness and version information
//
// Services take their dependencies through constructors and accept
// interfaces for the store so that tests can use mocks. Every method takes
// a context.Context.
//
// # Errors
//
// Failures are reported with the sentinel errors in errors.go, wrapped with
// context using %w. Handlers map them to HTTP problems with errors.Is.
// Validation failures return a *table.ValidationError listing the issues.
//
// # Lifecycle
//
// An upload is parsed and its row and column labels are inferred. The
// client may relabel rows and columns, then validates the table, which stores
// a numeric snapshot with missing values imputed. Processing methods can only
// be chosen for a validated table, and validating again clears them. A
// download applies the chosen methods to the snapshot.
package services
