// Package shared holds code used across packages that belongs to no
// particular layer.
//
// The testutil subpackage provides a buffered slog handler for asserting
// on log output and small metabolomics tables used as test fixtures. It
// depends on no other internal package so that any package may import it
// from its tests.
package shared
