package table

import (
	"math"
	"strconv"
	"strings"
)

// missingMarkers are cell values treated as absent measurements
var missingMarkers = map[string]struct{}{
	"":     {},
	"na":   {},
	"nan":  {},
	"n/a":  {},
	"null": {},
}

// isMissing reports whether a cell holds no measurement
func isMissing(cell string) bool {
	_, ok := missingMarkers[strings.ToLower(strings.TrimSpace(cell))]
	return ok
}

// parseNumber parses a finite measurement value
func parseNumber(cell string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
