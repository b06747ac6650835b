package core

import (
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Identity column names. Every indicator workbook carries both.
const (
	ColArea      = "REF_AREA_LABEL"
	ColIndicator = "INDICATOR_LABEL"
)

// MaxAreas is the largest number of areas a multi-area selection may hold.
const MaxAreas = 5

// Row maps a column name to the cell's text. An empty string is a missing cell.
type Row map[string]string

// Table is an in-memory sheet: an ordered header and ordered rows.
type Table struct {
	Columns []string
	Rows    []Row
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Empty reports whether the table has no rows.
func (t *Table) Empty() bool {
	return t.Len() == 0
}

// HasColumn reports whether name is one of the table's columns.
func (t *Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Head returns a copy of the first n rows. n <= 0 yields an empty table.
func (t *Table) Head(n int) *Table {
	if n < 0 {
		n = 0
	}
	if n > len(t.Rows) {
		n = len(t.Rows)
	}
	out := &Table{
		Columns: append([]string(nil), t.Columns...),
		Rows:    make([]Row, n),
	}
	for i := 0; i < n; i++ {
		out.Rows[i] = cloneRow(t.Rows[i])
	}
	return out
}

func cloneRow(r Row) Row {
	c := make(Row, len(r))
	for k, v := range r {
		c[k] = v
	}
	return c
}

// Measure is a numeric cell that may be missing.
// Valid is false when the source cell was empty or not a number.
type Measure struct {
	Float64 float64
	Valid   bool
}

// Some returns a present Measure.
func Some(v float64) Measure {
	return Measure{Float64: v, Valid: true}
}

// Missing is the absent Measure.
var Missing = Measure{}

// TrendRecord is one (area, indicator, year) observation in long format.
type TrendRecord struct {
	Area      string  `json:"area"`
	Indicator string  `json:"indicator"`
	Year      int     `json:"year"`
	Value     Measure `json:"-"`
}

// Mode selects how many areas one render may compare.
type Mode string

const (
	ModeMulti  Mode = "multi"
	ModeSingle Mode = "single"
)

// ParseMode maps a configuration string to a Mode, defaulting to ModeMulti.
func ParseMode(s string) Mode {
	if Mode(strings.ToLower(strings.TrimSpace(s))) == ModeSingle {
		return ModeSingle
	}
	return ModeMulti
}

// Selection is the user's choice for one render pass.
type Selection struct {
	Indicator string   `json:"indicator"`
	Areas     []string `json:"areas"`
}

// Statistics are descriptive statistics over the present values of a trend.
// Fields that cannot be computed (no values, or a single value for Std) are NaN.
type Statistics struct {
	Count   int     `json:"count"`
	Missing int     `json:"missing"`
	Mean    float64 `json:"mean"`
	Std     float64 `json:"std"`
	Min     float64 `json:"min"`
	Q1      float64 `json:"q1"`
	Median  float64 `json:"median"`
	Q3      float64 `json:"q3"`
	Max     float64 `json:"max"`
	YearMin int     `json:"year_min,omitempty"`
	YearMax int     `json:"year_max,omitempty"`
}

func emptyStatistics() Statistics {
	nan := math.NaN()
	return Statistics{Mean: nan, Std: nan, Min: nan, Q1: nan, Median: nan, Q3: nan, Max: nan}
}

// Snapshot is a validated table loaded from one version of the data file.
// Snapshots are immutable once built and may be shared across requests.
type Snapshot struct {
	ID          uuid.UUID
	Path        string
	ModTime     time.Time
	Size        int64
	LoadedAt    time.Time
	Table       *Table
	YearColumns []string
	Areas       []string
	Indicators  []string
}

// Result is the output of one render pass.
type Result struct {
	Selection  Selection
	Mode       Mode
	SnapshotID uuid.UUID
	Matched    int
	Records    []TrendRecord
	Stats      Statistics
}
