package core

import (
	"fmt"
	"strings"
)

const (
	reasonMissingIdentity = "missing identity columns"
	reasonNoYearColumns   = "no year columns"
)

// SchemaError reports a table whose header cannot drive the dashboard.
type SchemaError struct {
	Reason  string
	Missing []string
}

func (e *SchemaError) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf("invalid data schema: %s: %s", e.Reason, strings.Join(e.Missing, ", "))
	}
	return "invalid data schema: " + e.Reason
}

// Validate normalizes header names and checks the table shape.
//
// Column names are trimmed of surrounding whitespace and rows are re-keyed to
// the trimmed names; when two headers trim to the same name the first one
// wins. Cell values are left untouched. The returned year columns keep table
// order. Validating an already normalized table returns an equal table.
func Validate(t *Table) (*Table, []string, error) {
	out := normalizeHeader(t)

	var missing []string
	for _, col := range []string{ColArea, ColIndicator} {
		if !out.HasColumn(col) {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, nil, &SchemaError{Reason: reasonMissingIdentity, Missing: missing}
	}

	years := YearColumns(out.Columns)
	if len(years) == 0 {
		return nil, nil, &SchemaError{Reason: reasonNoYearColumns}
	}

	return out, years, nil
}

// YearColumns returns the columns whose names are all digits, in order.
func YearColumns(columns []string) []string {
	var years []string
	for _, c := range columns {
		if IsYearColumn(c) {
			years = append(years, c)
		}
	}
	return years
}

func normalizeHeader(t *Table) *Table {
	// source[i] is the raw key that feeds trimmed column i.
	var (
		columns []string
		source  []string
		seen    = make(map[string]bool, len(t.Columns))
	)
	for _, raw := range t.Columns {
		name := strings.TrimSpace(raw)
		if seen[name] {
			continue
		}
		seen[name] = true
		columns = append(columns, name)
		source = append(source, raw)
	}

	out := &Table{Columns: columns, Rows: make([]Row, len(t.Rows))}
	for i, r := range t.Rows {
		row := make(Row, len(columns))
		for j, name := range columns {
			row[name] = r[source[j]]
		}
		out.Rows[i] = row
	}
	return out
}
