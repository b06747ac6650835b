package core

import (
	"sort"
	"strconv"
)

// BuildTrend reshapes filtered rows from wide to long format: one record per
// row and year column, row-major, with year columns in the order given.
// Unparsable or empty cells become missing values. Duplicate
// (area, indicator, year) keys are kept.
func BuildTrend(t *Table, yearColumns []string) []TrendRecord {
	years := make([]int, 0, len(yearColumns))
	cols := make([]string, 0, len(yearColumns))
	for _, c := range yearColumns {
		y, err := strconv.Atoi(c)
		if err != nil {
			continue
		}
		years = append(years, y)
		cols = append(cols, c)
	}
	yearColumns = cols

	records := make([]TrendRecord, 0, len(t.Rows)*len(yearColumns))
	for _, r := range t.Rows {
		for i, c := range yearColumns {
			records = append(records, TrendRecord{
				Area:      r[ColArea],
				Indicator: r[ColIndicator],
				Year:      years[i],
				Value:     ParseMeasure(r[c]),
			})
		}
	}
	return records
}

// SortTrend returns a copy of records ordered for plotting: areas in order of
// first appearance, then ascending year. Ties keep their input order.
func SortTrend(records []TrendRecord) []TrendRecord {
	rank := make(map[string]int)
	for _, r := range records {
		if _, ok := rank[r.Area]; !ok {
			rank[r.Area] = len(rank)
		}
	}

	out := append([]TrendRecord(nil), records...)
	sort.SliceStable(out, func(i, j int) bool {
		ri, rj := rank[out[i].Area], rank[out[j].Area]
		if ri != rj {
			return ri < rj
		}
		return out[i].Year < out[j].Year
	})
	return out
}

// Areas returns the distinct areas of records in order of first appearance.
func Areas(records []TrendRecord) []string {
	var areas []string
	seen := make(map[string]bool)
	for _, r := range records {
		if !seen[r.Area] {
			seen[r.Area] = true
			areas = append(areas, r.Area)
		}
	}
	return areas
}
