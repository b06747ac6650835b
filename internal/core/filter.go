package core

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidSelection is returned when a selection violates the mode's
// area count or lacks an indicator.
var ErrInvalidSelection = errors.New("invalid selection")

// Filter returns the rows whose area is one of areas and whose indicator
// equals indicator exactly. Row order is preserved and rows are copied, so
// the source table is never modified. No match yields a table with the same
// columns and zero rows.
func Filter(t *Table, areas []string, indicator string) *Table {
	want := make(map[string]struct{}, len(areas))
	for _, a := range areas {
		want[a] = struct{}{}
	}

	out := &Table{Columns: append([]string(nil), t.Columns...), Rows: []Row{}}
	for _, r := range t.Rows {
		if r[ColIndicator] != indicator {
			continue
		}
		if _, ok := want[r[ColArea]]; !ok {
			continue
		}
		out.Rows = append(out.Rows, cloneRow(r))
	}
	return out
}

// Normalize returns a copy of the selection with blank areas dropped and
// duplicate areas collapsed to their first occurrence. Labels are kept
// verbatim since Filter matches them exactly against cell text.
func (s Selection) Normalize() Selection {
	out := Selection{Indicator: s.Indicator}
	seen := make(map[string]bool, len(s.Areas))
	for _, a := range s.Areas {
		if strings.TrimSpace(a) == "" || seen[a] {
			continue
		}
		seen[a] = true
		out.Areas = append(out.Areas, a)
	}
	return out
}

// Validate checks the selection against mode: single mode takes exactly one
// area, multi mode between one and MaxAreas. The indicator is required.
func (s Selection) Validate(mode Mode) error {
	if strings.TrimSpace(s.Indicator) == "" {
		return fmt.Errorf("%w: indicator is required", ErrInvalidSelection)
	}

	n := len(s.Areas)
	switch mode {
	case ModeSingle:
		if n != 1 {
			return fmt.Errorf("%w: select exactly one area (got %d)", ErrInvalidSelection, n)
		}
	default:
		if n < 1 || n > MaxAreas {
			return fmt.Errorf("%w: select between 1 and %d areas (got %d)", ErrInvalidSelection, MaxAreas, n)
		}
	}
	return nil
}

// String renders the selection for log lines and error messages.
func (s Selection) String() string {
	return fmt.Sprintf("%s [%s]", s.Indicator, strings.Join(s.Areas, ", "))
}
