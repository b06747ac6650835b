package core

import (
	"math"
	"sort"

	"github.com/montanaflynn/stats"
)

// Summarize computes descriptive statistics over the present values of
// records. Missing values are counted but excluded from every statistic.
// With no present values every statistic is NaN; Std needs two values.
func Summarize(records []TrendRecord) Statistics {
	s := emptyStatistics()

	values := make(stats.Float64Data, 0, len(records))
	for i, r := range records {
		if i == 0 || r.Year < s.YearMin {
			s.YearMin = r.Year
		}
		if i == 0 || r.Year > s.YearMax {
			s.YearMax = r.Year
		}
		if !r.Value.Valid {
			s.Missing++
			continue
		}
		values = append(values, r.Value.Float64)
	}

	s.Count = len(values)
	if s.Count == 0 {
		return s
	}

	s.Mean, _ = stats.Mean(values)
	s.Min, _ = stats.Min(values)
	s.Max, _ = stats.Max(values)
	if s.Count > 1 {
		s.Std, _ = stats.StandardDeviationSample(values)
	}

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	s.Q1 = quantile(sorted, 0.25)
	s.Median = quantile(sorted, 0.50)
	s.Q3 = quantile(sorted, 0.75)

	return s
}

// quantile interpolates linearly between the closest ranks of sorted data,
// the convention spreadsheets and dataframes use for quartiles.
func quantile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	pos := p * float64(n-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}
