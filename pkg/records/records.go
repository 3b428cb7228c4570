// Package records defines the raw tabular record set produced by the file
// readers and consumed by the cleaning engine.
//
// A RawSet is intentionally dumb: cells are strings exactly as parsed
// (numbers from JSON keep their textual form via json.Number), column order
// follows the input header, and nothing is repaired here. All repair logic
// lives in internal/cleaning.
package records

import "strings"

// RawSet is an ordered, rectangular view of an uploaded file.
//
// Invariants:
//   - Every row has exactly len(Columns) cells, aligned positionally with
//     Columns. Readers skip misaligned input rows rather than emit them.
//   - Column order preserves the source header order.
type RawSet struct {
	// Columns holds the original (un-normalized) header names.
	Columns []string
	// Rows holds raw string cells. An empty string is a null-like token,
	// not an empty value; see IsNullToken.
	Rows [][]string
}

// NumRows returns the number of data rows.
func (s *RawSet) NumRows() int { return len(s.Rows) }

// NumColumns returns the number of columns.
func (s *RawSet) NumColumns() int { return len(s.Columns) }

// nullTokens is the fixed vocabulary of values treated as "no data".
// Matching is case-insensitive after trimming.
var nullTokens = map[string]struct{}{
	"":     {},
	"null": {},
	"nan":  {},
	"n/a":  {},
	"#n/a": {},
	"na":   {},
	"none": {},
	"-":    {},
	"--":   {},
	"?":    {},
}

// IsNullToken reports whether a raw cell represents a missing value.
func IsNullToken(v string) bool {
	_, ok := nullTokens[strings.ToLower(strings.TrimSpace(v))]
	return ok
}
