// Package cleaning repairs raw record sets into null-free, deduplicated,
// type-normalized datasets.
//
// The engine runs a fixed ordered pipeline (see Engine.Clean); stage order is
// load-bearing because later stages assume earlier invariants hold. Column
// repair rules are static configuration (see rules.go), looked up once per
// column by keyword; a failing rule degrades that column to the generic
// fallback fill instead of aborting the run.
package cleaning

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"autodash/pkg/records"
)

// Kind classifies a cleaned column's value domain.
type Kind int

const (
	KindText Kind = iota
	KindNumeric
	KindBool
	KindDate
)

func (k Kind) String() string {
	switch k {
	case KindNumeric:
		return "numeric"
	case KindBool:
		return "bool"
	case KindDate:
		return "date"
	default:
		return "text"
	}
}

// Column holds one typed column of a dataset.
//
// Values use nil for missing cells during cleaning; after Engine.Clean only
// columns narrowed by row-dropping rules may have removed rows, never nils.
// Cell representation per kind: string (text, date as YYYY-MM-DD), float64
// (numeric), bool (bool).
type Column struct {
	Name   string
	Kind   Kind
	Values []any

	// Integral marks a numeric column whose values are all whole numbers;
	// such columns persist as integers rather than floats.
	Integral bool
}

// Dataset is the cleaned, durable artifact of one ingestion.
type Dataset struct {
	Name    string
	Columns []*Column
}

// NumRows returns the row count (columns are always aligned).
func (d *Dataset) NumRows() int {
	if len(d.Columns) == 0 {
		return 0
	}
	return len(d.Columns[0].Values)
}

// NumColumns returns the column count.
func (d *Dataset) NumColumns() int { return len(d.Columns) }

// Column returns the named column, or nil.
func (d *Dataset) Column(name string) *Column {
	for _, c := range d.Columns {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// ColumnNames returns the column names in order.
func (d *Dataset) ColumnNames() []string {
	out := make([]string, len(d.Columns))
	for i, c := range d.Columns {
		out[i] = c.Name
	}
	return out
}

// Row materializes row i as a positional slice aligned with Columns.
func (d *Dataset) Row(i int) []any {
	out := make([]any, len(d.Columns))
	for j, c := range d.Columns {
		out[j] = c.Values[i]
	}
	return out
}

// keepRows retains only rows where keep[i] is true, across every column.
func (d *Dataset) keepRows(keep []bool) {
	for _, c := range d.Columns {
		out := c.Values[:0]
		for i, v := range c.Values {
			if keep[i] {
				out = append(out, v)
			}
		}
		c.Values = out
	}
}

// nonNullCount returns the number of non-nil cells.
func (c *Column) nonNullCount() int {
	n := 0
	for _, v := range c.Values {
		if v != nil {
			n++
		}
	}
	return n
}

// Floats returns the non-nil float64 cells of a numeric column.
func (c *Column) Floats() []float64 {
	out := make([]float64, 0, len(c.Values))
	for _, v := range c.Values {
		if f, ok := v.(float64); ok {
			out = append(out, f)
		}
	}
	return out
}

// DistinctCount returns the number of distinct non-nil values.
func (c *Column) DistinctCount() int {
	set := make(map[string]struct{})
	for _, v := range c.Values {
		if v == nil {
			continue
		}
		set[cellKey(v)] = struct{}{}
	}
	return len(set)
}

// median returns the pandas-style median (mean of the two middle values for
// an even count). Returns 0 for an empty slice.
func median(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	s := append([]float64(nil), xs...)
	sort.Float64s(s)
	mid := len(s) / 2
	if len(s)%2 == 1 {
		return s[mid]
	}
	return (s[mid-1] + s[mid]) / 2
}

// mode returns the most frequent non-nil value; ties break toward the first
// value observed, which keeps results deterministic. ok is false when the
// column holds no usable non-nil values.
func mode(values []any) (any, bool) {
	counts := make(map[string]int)
	first := make(map[string]int)
	byKey := make(map[string]any)

	idx := 0
	for _, v := range values {
		if v == nil {
			continue
		}
		k := cellKey(v)
		if _, seen := counts[k]; !seen {
			first[k] = idx
			byKey[k] = v
		}
		counts[k]++
		idx++
	}
	if len(counts) == 0 {
		return nil, false
	}

	bestKey := ""
	bestN := -1
	for k, n := range counts {
		if n > bestN || (n == bestN && first[k] < first[bestKey]) {
			bestKey, bestN = k, n
		}
	}
	return byKey[bestKey], true
}

// usableMode is mode with null-like results rejected: a column whose most
// common value is itself a null token must fall back to a placeholder.
func usableMode(values []any) (any, bool) {
	m, ok := mode(values)
	if !ok {
		return nil, false
	}
	if s, isStr := m.(string); isStr && records.IsNullToken(s) {
		return nil, false
	}
	return m, true
}

// cellKey produces a canonical comparison key for a cell value.
func cellKey(v any) string {
	switch t := v.(type) {
	case nil:
		return "\x00"
	case string:
		return t
	case float64:
		if t == math.Trunc(t) && math.Abs(t) < 1e15 {
			return fmt.Sprintf("%d", int64(t))
		}
		return fmt.Sprintf("%g", t)
	case bool:
		if t {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprint(v)
	}
}

// rowKey builds a dedupe key over all cells of a row.
func rowKey(cells []any) string {
	var b strings.Builder
	for i, v := range cells {
		if i > 0 {
			b.WriteByte(0x1f)
		}
		b.WriteString(cellKey(v))
	}
	return b.String()
}
