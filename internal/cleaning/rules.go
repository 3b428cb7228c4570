package cleaning

import (
	"math"
	"strings"
)

// RuleKind tags the repair strategy a Rule applies. Each kind pairs a
// validity predicate with a fill strategy; the engine interprets them in
// applyRule.
type RuleKind int

const (
	// RuleDropNullRows removes rows whose cell is missing (critical keys
	// are never filled).
	RuleDropNullRows RuleKind = iota
	// RuleRangeMedian nulls values outside [Min, Max] and fills nulls with
	// the median of the surviving values.
	RuleRangeMedian
	// RuleRangeConst replaces out-of-range values with FillValue and rounds
	// the column to whole numbers.
	RuleRangeConst
	// RuleClamp clips values into [Min, Max] in place; nothing is nulled.
	RuleClamp
	// RuleRangeDropRows removes the entire row when the value is missing or
	// outside the valid range.
	RuleRangeDropRows
	// RuleSynonymMode case-folds values through Synonyms, nulls unmapped
	// "unknown" answers and fills nulls with the column mode.
	RuleSynonymMode
	// RuleModePlaceholder fills missing values with the column mode, or
	// Placeholder when no usable mode exists.
	RuleModePlaceholder
	// RuleEmail nulls values without an "@" and fills with Placeholder.
	RuleEmail
	// RulePhone strips non-digits, nulls results shorter than ten digits
	// and fills with Placeholder.
	RulePhone
)

// Rule binds a keyword set to a tagged repair strategy. Rules are static
// configuration: the engine walks the table in order and the first match
// wins; unmatched columns fall through to the generic fallback fill.
type Rule struct {
	Name     string
	Keywords []string
	// match overrides keyword substring matching when set (identifier and
	// count-like columns need token matching, see below).
	match func(name string) bool

	Kind RuleKind

	// Range bounds (inclusive) for the numeric kinds.
	Min, Max float64
	// ExcludeZero widens the invalid set with exact zero; used by the marks
	// rule where a zero score is read as missing data. Configurable via
	// Config.ZeroScoreIsMissing.
	ExcludeZero bool
	// FillValue is the replacement used by RuleRangeConst.
	FillValue float64
	// Placeholder is the terminal fallback for the text kinds.
	Placeholder string
	// Synonyms folds raw (lowercased) values onto canonical ones.
	Synonyms map[string]string
}

// Matches reports whether the rule governs the given (normalized) column
// name.
func (r *Rule) Matches(name string) bool {
	if r.match != nil {
		return r.match(name)
	}
	for _, kw := range r.Keywords {
		if strings.Contains(name, kw) {
			return true
		}
	}
	return false
}

// defaultRules builds the ordered rule table. Order matters: more specific
// keyword sets come first so that e.g. "percentage" is clamped rather than
// treated as an age, and "wage" lands on the money rule instead of "age".
func defaultRules(cfg Config) []Rule {
	return []Rule{
		{
			Name:  "identifier",
			match: matchIdentifier,
			Kind:  RuleDropNullRows,
		},
		{
			Name:     "percentage",
			Keywords: []string{"percent", "pct", "rate"},
			Kind:     RuleClamp,
			Min:      0,
			Max:      100,
		},
		{
			Name:        "score",
			Keywords:    []string{"marks", "score", "grade"},
			Kind:        RuleRangeDropRows,
			Min:         0,
			Max:         100,
			ExcludeZero: cfg.ZeroScoreIsMissing,
		},
		{
			Name:     "money",
			Keywords: []string{"salary", "price", "amount", "cost", "revenue", "sales", "wage", "income"},
			Kind:     RuleRangeMedian,
			Min:      math.SmallestNonzeroFloat64, // strictly positive
			Max:      math.MaxFloat64,
		},
		{
			Name:      "quantity",
			match:     matchQuantity,
			Kind:      RuleRangeConst,
			Min:       math.SmallestNonzeroFloat64,
			Max:       math.MaxFloat64,
			FillValue: 1,
		},
		{
			Name:     "age",
			Keywords: []string{"age"},
			Kind:     RuleRangeMedian,
			Min:      1,
			Max:      100,
		},
		{
			Name:        "gender",
			Keywords:    []string{"gender", "sex"},
			Kind:        RuleSynonymMode,
			Placeholder: "Not Specified",
			Synonyms: map[string]string{
				"m": "male", "male": "male", "man": "male", "boy": "male",
				"f": "female", "female": "female", "woman": "female", "girl": "female",
			},
		},
		{
			Name:        "email",
			Keywords:    []string{"email", "e_mail"},
			Kind:        RuleEmail,
			Placeholder: "Not Available",
		},
		{
			Name:        "phone",
			Keywords:    []string{"phone", "mobile", "contact"},
			Kind:        RulePhone,
			Placeholder: "Not Available",
		},
		{
			Name:        "person-name",
			Keywords:    []string{"name"},
			Kind:        RuleModePlaceholder,
			Placeholder: "Not Provided",
		},
		{
			Name:        "city",
			Keywords:    []string{"city", "town", "location"},
			Kind:        RuleModePlaceholder,
			Placeholder: "Not Available",
		},
		{
			Name:        "department",
			Keywords:    []string{"department", "dept"},
			Kind:        RuleModePlaceholder,
			Placeholder: "General",
		},
		{
			Name:        "disease",
			Keywords:    []string{"disease", "diagnosis"},
			Kind:        RuleModePlaceholder,
			Placeholder: "Unknown Disease",
		},
		{
			Name:        "product",
			Keywords:    []string{"product", "item"},
			Kind:        RuleModePlaceholder,
			Placeholder: "Unknown Product",
		},
	}
}

// matchIdentifier matches id-like columns. "id" is matched as an
// underscore-delimited token rather than a substring: a bare substring
// would capture "holiday" or "paid" and silently drop their rows.
func matchIdentifier(name string) bool {
	if strings.Contains(name, "roll") {
		return true
	}
	for _, tok := range strings.Split(name, "_") {
		if tok == "id" {
			return true
		}
	}
	return false
}

// matchQuantity matches count-like columns. "count" is token-matched so
// that "country" does not get coerced to a quantity.
func matchQuantity(name string) bool {
	for _, kw := range []string{"quantity", "qty", "units"} {
		if strings.Contains(name, kw) {
			return true
		}
	}
	for _, tok := range strings.Split(name, "_") {
		if tok == "count" || tok == "counts" {
			return true
		}
	}
	return false
}
