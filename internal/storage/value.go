package storage

import "math"

// NormalizeValue converts a cleaned cell into a form every driver binds
// predictably.
//
// Backends must not assume a particular underlying type for cells; this
// helper keeps value binding consistent across backends. Whole floats
// become int64 so that integer-typed columns receive integers rather than
// "25.0" renderings.
func NormalizeValue(v any) any {
	switch t := v.(type) {
	case float64:
		if t == math.Trunc(t) && !math.IsInf(t, 0) && !math.IsNaN(t) {
			return int64(t)
		}
		return t
	case nil, string, bool, int64:
		return v
	case int:
		return int64(t)
	default:
		return v
	}
}

// NormalizeRow applies NormalizeValue across one row, in place.
func NormalizeRow(row []any) []any {
	for i, v := range row {
		row[i] = NormalizeValue(v)
	}
	return row
}
