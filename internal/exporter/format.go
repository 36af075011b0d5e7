package exporter

import (
	"strconv"
)

// formatFloat formats a value with the given number of decimals, or with
// the shortest representation that parses back to the same value when
// precision is negative
func formatFloat(f float64, precision int) string {
	if precision < 0 {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	return strconv.FormatFloat(f, 'f', precision, 64)
}
