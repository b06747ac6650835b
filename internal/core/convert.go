package core

// convert.go turns spreadsheet cell text into numbers.
//
// Indicator workbooks arrive with the usual artifacts of hand-edited data:
//   - Excel formula prefixes (="12.5")
//   - Currency symbols and thousands separators
//   - Accounting negatives such as (1,234.50)
//   - Placeholders for "no data" such as "..", "-" or "n/a"
//
// ParseMeasure returns an invalid Measure for anything that is not a number
// after cleanup, so gaps survive into the trend instead of failing the load.

import (
	"regexp"
	"strconv"
	"strings"
)

// numericRegex validates that a string is a valid numeric format after cleanup.
// Matches integers, decimals, and scientific notation.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

var missingMarkers = map[string]bool{
	"..": true, "-": true, "n/a": true, "na": true, "nan": true, "null": true, "none": true,
}

// ParseMeasure converts a cell to a Measure.
// Empty, placeholder and non-numeric cells yield an invalid Measure.
func ParseMeasure(s string) Measure {
	s = CleanCell(s)
	if s == "" || missingMarkers[strings.ToLower(s)] {
		return Missing
	}

	// Detect negative accounting format "(123.45)"
	isNegative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		isNegative = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}

	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, "€", "") // Euro
	s = strings.ReplaceAll(s, "£", "") // Pound
	s = strings.ReplaceAll(s, "%", "")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)

	if isNegative {
		s = "-" + s
	}

	if !numericRegex.MatchString(s) {
		return Missing
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Missing
	}
	return Some(v)
}

// FormatMeasure renders a Measure for CSV and JSON output.
// Missing values render as the empty string.
func FormatMeasure(m Measure) string {
	if !m.Valid {
		return ""
	}
	return strconv.FormatFloat(m.Float64, 'f', -1, 64)
}

// CleanCell removes common spreadsheet artifacts from a cell value:
// - Trims whitespace
// - Removes Excel formula prefix (="...")
// - Removes surrounding quotes
func CleanCell(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") {
		s = s[2 : len(s)-1]
	} else if strings.HasPrefix(s, "=") {
		s = s[1:]
	}

	return strings.TrimSpace(strings.Trim(s, `"'`))
}

// IsYearColumn reports whether a column name consists only of ASCII digits
// and fits an int. Longer digit runs are not years.
func IsYearColumn(name string) bool {
	if name == "" {
		return false
	}
	for i := 0; i < len(name); i++ {
		if name[i] < '0' || name[i] > '9' {
			return false
		}
	}
	_, err := strconv.Atoi(name)
	return err == nil
}
