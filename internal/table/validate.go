package table

import (
	"fmt"
	"strings"

	"metabulo/pkg/contracts/domain"
)

// Issue is one problem found in a labelled table
type Issue = domain.ValidationIssue

// Issue types
const (
	IssueKeyRow         = "key-row"
	IssueKeyColumn      = "key-column"
	IssueNoSamples      = "no-samples"
	IssueNoMeasurements = "no-measurements"
	IssueDuplicateKey   = "duplicate-key"
	IssueNonNumeric     = "non-numeric"
	IssueEmptyColumn    = "empty-column"
	IssueMissingData    = "missing-data"
)

// ValidationError carries the error issues of a table that failed validation
type ValidationError struct {
	Issues []Issue
}

func (e *ValidationError) Error() string {
	titles := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		titles = append(titles, issue.Title)
	}
	return fmt.Sprintf("table is invalid: %s", strings.Join(titles, "; "))
}

// Errors returns the issues with error severity
func Errors(issues []Issue) []Issue {
	return filterSeverity(issues, domain.SeverityError)
}

// Warnings returns the issues with warning severity
func Warnings(issues []Issue) []Issue {
	return filterSeverity(issues, domain.SeverityWarning)
}

func filterSeverity(issues []Issue, severity domain.Severity) []Issue {
	var out []Issue
	for _, issue := range issues {
		if issue.Severity == severity {
			out = append(out, issue)
		}
	}
	return out
}

// Validate checks the labelled table. Checks that depend on the key row or
// key column are skipped while those are not unique.
func (t *Table) Validate() []Issue {
	var issues []Issue

	keyRows := t.rowsOf(domain.RowTypeKey)
	if len(keyRows) != 1 {
		issues = append(issues, Issue{
			Type:     IssueKeyRow,
			Title:    "Table must have exactly one key row",
			Severity: domain.SeverityError,
			Rows:     keyRows,
		})
	}

	keyColumns := t.columnsOf(domain.ColumnTypeKey)
	if len(keyColumns) != 1 {
		issues = append(issues, Issue{
			Type:     IssueKeyColumn,
			Title:    "Table must have exactly one key column",
			Severity: domain.SeverityError,
			Columns:  keyColumns,
		})
	}

	samples := t.rowsOf(domain.RowTypeSample)
	if len(samples) == 0 {
		issues = append(issues, Issue{
			Type:     IssueNoSamples,
			Title:    "Table has no sample rows",
			Severity: domain.SeverityError,
		})
	}

	measurements := t.columnsOf(domain.ColumnTypeMeasurement)
	if len(measurements) == 0 {
		issues = append(issues, Issue{
			Type:     IssueNoMeasurements,
			Title:    "Table has no measurement columns",
			Severity: domain.SeverityError,
		})
	}

	if len(keyColumns) == 1 {
		if dup := t.duplicateKeys(keyColumns[0], samples); len(dup) > 0 {
			issues = append(issues, Issue{
				Type:     IssueDuplicateKey,
				Title:    "Sample keys must be unique and not empty",
				Severity: domain.SeverityError,
				Rows:     dup,
				Columns:  keyColumns,
			})
		}
	}

	issues = append(issues, t.measurementIssues(measurements, samples)...)
	return issues
}

// duplicateKeys returns sample rows with an empty or repeated key
func (t *Table) duplicateKeys(keyColumn int, samples []int) []int {
	first := make(map[string]int, len(samples))
	flagged := make(map[int]bool)
	var rows []int
	flag := func(i int) {
		if !flagged[i] {
			flagged[i] = true
			rows = append(rows, i)
		}
	}

	for _, i := range samples {
		key := strings.TrimSpace(t.cell(i, keyColumn))
		if key == "" {
			flag(i)
			continue
		}
		if prev, ok := first[key]; ok {
			flag(prev)
			flag(i)
			continue
		}
		first[key] = i
	}
	return rows
}

func (t *Table) measurementIssues(measurements, samples []int) []Issue {
	var issues []Issue
	if len(samples) == 0 {
		return nil
	}

	for _, j := range measurements {
		var missing, invalid []int
		for _, i := range samples {
			c := t.cell(i, j)
			if isMissing(c) {
				missing = append(missing, i)
				continue
			}
			if _, ok := parseNumber(c); !ok {
				invalid = append(invalid, i)
			}
		}

		switch {
		case len(invalid) > 0:
			issues = append(issues, Issue{
				Type:     IssueNonNumeric,
				Title:    fmt.Sprintf("Measurement %q contains non-numeric values", t.columnName(j)),
				Severity: domain.SeverityError,
				Rows:     invalid,
				Columns:  []int{j},
			})
		case len(missing) == len(samples):
			issues = append(issues, Issue{
				Type:     IssueEmptyColumn,
				Title:    fmt.Sprintf("Measurement %q has no values", t.columnName(j)),
				Severity: domain.SeverityError,
				Columns:  []int{j},
			})
		case len(missing) > 0:
			issues = append(issues, Issue{
				Type:     IssueMissingData,
				Title:    fmt.Sprintf("Measurement %q has %d missing values that will be imputed", t.columnName(j), len(missing)),
				Severity: domain.SeverityWarning,
				Rows:     missing,
				Columns:  []int{j},
			})
		}
	}
	return issues
}

// columnName returns the key row header of column j, or its position
func (t *Table) columnName(j int) string {
	if keyRows := t.rowsOf(domain.RowTypeKey); len(keyRows) == 1 {
		if name := strings.TrimSpace(t.cell(keyRows[0], j)); name != "" {
			return name
		}
	}
	return fmt.Sprintf("column %d", j)
}
