// Package stats computes dataset-level quality metrics and per-column
// summaries over a cleaned dataset, with missingness and duplication
// measured against the raw upload so cleaning cannot inflate the score.
package stats

import (
	"math"
	"sort"
	"strings"

	"autodash/internal/cleaning"
	"autodash/pkg/records"
)

type NumericSummary struct {
	Name   string  `json:"name"`
	Count  int     `json:"count"`
	Sum    float64 `json:"sum"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	StdDev float64 `json:"std_dev"`
}

type ValueCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

type CategorySummary struct {
	Name     string       `json:"name"`
	Distinct int          `json:"distinct"`
	Top      []ValueCount `json:"top"`
}

// DatasetStatistics is the full report for one ingestion.
type DatasetStatistics struct {
	Rows          int     `json:"rows"`
	Columns       int     `json:"columns"`
	RawRows       int     `json:"raw_rows"`
	MissingCells  int     `json:"missing_cells"`
	MissingPct    float64 `json:"missing_pct"`
	DuplicateRows int     `json:"duplicate_rows"`
	DuplicatePct  float64 `json:"duplicate_pct"`
	QualityScore  float64 `json:"quality_score"`

	Numeric     []NumericSummary  `json:"numeric"`
	Categorical []CategorySummary `json:"categorical"`
}

// topCategories caps how many frequent values a categorical summary keeps.
const topCategories = 5

// Summarize builds the statistics report. Missing and duplicate counts come
// from raw, the upload as parsed; summaries come from ds, the cleaned data.
func Summarize(raw *records.RawSet, ds *cleaning.Dataset) DatasetStatistics {
	st := DatasetStatistics{
		Rows:    ds.NumRows(),
		Columns: ds.NumColumns(),
		RawRows: raw.NumRows(),
	}

	st.MissingCells, st.MissingPct = rawMissing(raw)
	st.DuplicateRows, st.DuplicatePct = rawDuplicates(raw)
	st.QualityScore = qualityScore(st.MissingPct, st.DuplicatePct)

	for _, c := range ds.Columns {
		switch c.Kind {
		case cleaning.KindNumeric:
			st.Numeric = append(st.Numeric, summarizeNumeric(c))
		case cleaning.KindText, cleaning.KindDate:
			st.Categorical = append(st.Categorical, summarizeCategory(c))
		}
	}
	return st
}

// qualityScore grades the upload 0..100, rounded to one decimal.
// Missingness is weighted double and capped at a 40-point penalty;
// duplication is weighted 1.5x and capped at 30 points.
func qualityScore(missingPct, dupPct float64) float64 {
	score := 100.0
	score -= math.Min(missingPct*2, 40)
	score -= math.Min(dupPct*1.5, 30)
	if score < 0 {
		return 0
	}
	return math.Round(score*10) / 10
}

func rawMissing(raw *records.RawSet) (cells int, pct float64) {
	total := 0
	for _, row := range raw.Rows {
		for _, cell := range row {
			total++
			if records.IsNullToken(cell) {
				cells++
			}
		}
	}
	if total == 0 {
		return 0, 0
	}
	return cells, float64(cells) / float64(total) * 100
}

func rawDuplicates(raw *records.RawSet) (rows int, pct float64) {
	if len(raw.Rows) == 0 {
		return 0, 0
	}
	seen := make(map[string]struct{}, len(raw.Rows))
	for _, row := range raw.Rows {
		k := strings.Join(row, "\x1f")
		if _, dup := seen[k]; dup {
			rows++
			continue
		}
		seen[k] = struct{}{}
	}
	return rows, float64(rows) / float64(len(raw.Rows)) * 100
}

func summarizeNumeric(c *cleaning.Column) NumericSummary {
	s := NumericSummary{Name: c.Name}
	vals := c.Floats()
	s.Count = len(vals)
	if s.Count == 0 {
		return s
	}

	s.Min, s.Max = vals[0], vals[0]
	for _, v := range vals {
		s.Sum += v
		if v < s.Min {
			s.Min = v
		}
		if v > s.Max {
			s.Max = v
		}
	}
	s.Mean = s.Sum / float64(s.Count)
	s.Median = medianOf(vals)
	s.StdDev = stdDev(vals, s.Mean)
	return s
}

func medianOf(vals []float64) float64 {
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// stdDev is the sample standard deviation; zero for fewer than two values.
func stdDev(vals []float64, mean float64) float64 {
	if len(vals) < 2 {
		return 0
	}
	var ss float64
	for _, v := range vals {
		d := v - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(vals)-1))
}

func summarizeCategory(c *cleaning.Column) CategorySummary {
	s := CategorySummary{Name: c.Name}
	counts := map[string]int{}
	order := []string{}
	for _, v := range c.Values {
		str, ok := v.(string)
		if !ok {
			continue
		}
		if counts[str] == 0 {
			order = append(order, str)
		}
		counts[str]++
	}
	s.Distinct = len(counts)

	// sort by count descending, first observed wins ties
	rank := make(map[string]int, len(order))
	for i, v := range order {
		rank[v] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		if counts[order[i]] != counts[order[j]] {
			return counts[order[i]] > counts[order[j]]
		}
		return rank[order[i]] < rank[order[j]]
	})
	for i, v := range order {
		if i == topCategories {
			break
		}
		s.Top = append(s.Top, ValueCount{Value: v, Count: counts[v]})
	}
	return s
}
