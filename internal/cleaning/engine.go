package cleaning

import (
	"fmt"
	"log"
	"math"
	"strconv"
	"strings"
	"time"

	"autodash/pkg/records"
)

// Config tunes engine policy. The zero value is not usable; start from
// DefaultConfig.
type Config struct {
	// ZeroScoreIsMissing controls the marks/score rule: when true (the
	// default) a score of exactly 0 is read as missing data and the row is
	// dropped; when false a zero is kept as a legitimate score.
	ZeroScoreIsMissing bool

	// Now supplies the clock used when a date column has no valid value to
	// borrow a fill from. Injectable for tests.
	Now func() time.Time
}

// DefaultConfig returns the source-faithful policy.
func DefaultConfig() Config {
	return Config{
		ZeroScoreIsMissing: true,
		Now:                time.Now,
	}
}

// Engine runs the cleaning pipeline. Engines are stateless between calls
// and safe for reuse across ingestions.
type Engine struct {
	cfg   Config
	rules []Rule
}

// NewEngine builds an engine with the static rule table bound to cfg.
func NewEngine(cfg Config) *Engine {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Engine{cfg: cfg, rules: defaultRules(cfg)}
}

// genericPlaceholder fills text columns that end the pipeline without a
// usable mode.
const genericPlaceholder = "Not Available"

// numericCoercionThreshold: a column becomes numeric when more than this
// share of its non-null values parses as a number. Dates use the same bar.
const numericCoercionThreshold = 0.5

// Clean repairs a raw record set into a typed, null-free, deduplicated
// dataset. Stages run in a fixed order; see the package comment.
//
// Postcondition: no cell is nil except where a row-dropping rule narrowed
// the row set instead of filling.
func (e *Engine) Clean(name string, raw *records.RawSet) *Dataset {
	ds := &Dataset{Name: name}

	// Stage 1: column name normalization.
	names := NormalizeColumnNames(raw.Columns)
	for _, n := range names {
		ds.Columns = append(ds.Columns, &Column{Name: n, Kind: KindText})
	}
	for _, row := range raw.Rows {
		if len(row) != len(ds.Columns) {
			continue
		}
		for i, cell := range row {
			ds.Columns[i].Values = append(ds.Columns[i].Values, cell)
		}
	}

	// Stage 2: drop all-null rows, then all-null columns.
	e.dropEmptyRows(ds)
	e.dropEmptyColumns(ds)

	// Stage 3: canonicalize the null-token vocabulary to nil.
	for _, c := range ds.Columns {
		for i, v := range c.Values {
			if s, ok := v.(string); ok && records.IsNullToken(s) {
				c.Values[i] = nil
			}
		}
	}

	// Stage 4: trim text cells.
	for _, c := range ds.Columns {
		for i, v := range c.Values {
			if s, ok := v.(string); ok {
				c.Values[i] = strings.TrimSpace(s)
			}
		}
	}

	// Stage 5: opportunistic type coercion (numeric majority, else bool).
	for _, c := range ds.Columns {
		e.coerceColumn(c)
	}

	// Stage 6: domain rules, first keyword match wins. A failing rule
	// must not abort the pipeline; its column degrades to stage 8.
	for _, c := range ds.Columns {
		rule := e.ruleFor(c.Name)
		if rule == nil {
			continue
		}
		if err := e.applyRule(rule, ds, c); err != nil {
			log.Printf("cleaning: rule %s on column %s degraded to fallback: %v", rule.Name, c.Name, err)
		}
	}

	// Stage 7: date detection and ISO normalization.
	for _, c := range ds.Columns {
		e.normalizeDates(c)
	}

	// Stage 8: generic fallback fill for any column still holding nulls.
	for _, c := range ds.Columns {
		e.fallbackFill(c)
	}

	// Stage 9: exact-duplicate removal, first occurrence kept. Runs after
	// filling because fills can mint duplicates absent from the raw data.
	e.deduplicate(ds)

	// Stage 10: integral downcast for whole-number numeric columns.
	for _, c := range ds.Columns {
		e.downcastIntegral(c)
	}

	return ds
}

func (e *Engine) dropEmptyRows(ds *Dataset) {
	n := ds.NumRows()
	keep := make([]bool, n)
	for i := 0; i < n; i++ {
		for _, c := range ds.Columns {
			if s, ok := c.Values[i].(string); ok && !records.IsNullToken(s) {
				keep[i] = true
				break
			}
		}
	}
	ds.keepRows(keep)
}

func (e *Engine) dropEmptyColumns(ds *Dataset) {
	out := ds.Columns[:0]
	for _, c := range ds.Columns {
		empty := true
		for _, v := range c.Values {
			if s, ok := v.(string); ok && !records.IsNullToken(s) {
				empty = false
				break
			}
		}
		if !empty {
			out = append(out, c)
		}
	}
	ds.Columns = out
}

// coerceColumn attempts numeric coercion: when more than half of the
// non-null values parse, the whole column becomes numeric and stragglers
// become nulls. Columns whose every non-null value is a loose boolean
// become bool instead.
func (e *Engine) coerceColumn(c *Column) {
	nonNull := c.nonNullCount()
	if nonNull == 0 {
		return
	}

	parsed := 0
	allBool := true
	for _, v := range c.Values {
		s, ok := v.(string)
		if !ok {
			continue
		}
		if _, err := parseNumber(s); err == nil {
			parsed++
		}
		if _, ok := parseBoolLoose(s); !ok {
			allBool = false
		}
	}

	if float64(parsed) > float64(nonNull)*numericCoercionThreshold {
		toNumeric(c)
		return
	}
	if allBool {
		for i, v := range c.Values {
			if s, ok := v.(string); ok {
				b, _ := parseBoolLoose(s)
				c.Values[i] = b
			}
		}
		c.Kind = KindBool
	}
}

// toNumeric forces a column to numeric: every cell either parses to
// float64 or becomes nil. Idempotent.
func toNumeric(c *Column) {
	for i, v := range c.Values {
		switch t := v.(type) {
		case nil, float64:
		case string:
			if f, err := parseNumber(t); err == nil {
				c.Values[i] = f
			} else {
				c.Values[i] = nil
			}
		default:
			c.Values[i] = nil
		}
	}
	c.Kind = KindNumeric
}

func (e *Engine) ruleFor(name string) *Rule {
	for i := range e.rules {
		if e.rules[i].Matches(name) {
			return &e.rules[i]
		}
	}
	return nil
}

// applyRule interprets one tagged rule against a column. Panics inside a
// rule are converted to errors so a single bad column cannot take down the
// ingestion.
func (e *Engine) applyRule(r *Rule, ds *Dataset, c *Column) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("rule panic: %v", rec)
		}
	}()

	switch r.Kind {
	case RuleDropNullRows:
		keep := make([]bool, len(c.Values))
		for i, v := range c.Values {
			keep[i] = v != nil
		}
		ds.keepRows(keep)

	case RuleRangeMedian:
		toNumeric(c)
		for i, v := range c.Values {
			if f, ok := v.(float64); ok && (f < r.Min || f > r.Max) {
				c.Values[i] = nil
			}
		}
		if valid := c.Floats(); len(valid) > 0 {
			med := median(valid)
			for i, v := range c.Values {
				if v == nil {
					c.Values[i] = med
				}
			}
		}

	case RuleRangeConst:
		toNumeric(c)
		for i, v := range c.Values {
			f, ok := v.(float64)
			if !ok {
				f = r.FillValue
			} else if f < r.Min || f > r.Max {
				f = r.FillValue
			}
			c.Values[i] = math.Round(f)
		}

	case RuleClamp:
		toNumeric(c)
		for i, v := range c.Values {
			if f, ok := v.(float64); ok {
				c.Values[i] = math.Min(math.Max(f, r.Min), r.Max)
			}
		}

	case RuleRangeDropRows:
		toNumeric(c)
		keep := make([]bool, len(c.Values))
		for i, v := range c.Values {
			f, ok := v.(float64)
			if !ok {
				continue // missing value: row removed
			}
			if f < r.Min || f > r.Max {
				continue
			}
			if r.ExcludeZero && f == 0 {
				continue
			}
			keep[i] = true
		}
		ds.keepRows(keep)

	case RuleSynonymMode:
		for i, v := range c.Values {
			s, ok := v.(string)
			if !ok {
				continue
			}
			s = strings.ToLower(strings.TrimSpace(s))
			if mapped, ok := r.Synonyms[s]; ok {
				c.Values[i] = mapped
			} else {
				// unmapped / "unknown" answers count as missing
				c.Values[i] = nil
			}
		}
		fillTextColumn(c, r.Placeholder)

	case RuleModePlaceholder:
		for i, v := range c.Values {
			if s, ok := v.(string); ok && strings.EqualFold(s, "unknown") {
				c.Values[i] = nil
			}
		}
		fillTextColumn(c, r.Placeholder)

	case RuleEmail:
		for i, v := range c.Values {
			if s, ok := v.(string); ok && !strings.Contains(s, "@") {
				c.Values[i] = nil
			}
		}
		for i, v := range c.Values {
			if v == nil {
				c.Values[i] = r.Placeholder
			}
		}

	case RulePhone:
		for i, v := range c.Values {
			s, ok := v.(string)
			if !ok {
				continue
			}
			digits := keepDigits(s)
			if len(digits) < 10 {
				c.Values[i] = nil
			} else {
				c.Values[i] = digits
			}
		}
		for i, v := range c.Values {
			if v == nil {
				c.Values[i] = r.Placeholder
			}
		}
		c.Kind = KindText

	default:
		return fmt.Errorf("unknown rule kind %d", r.Kind)
	}
	return nil
}

// fillTextColumn fills nil cells with the column mode, or placeholder when
// the mode is absent or itself null-like.
func fillTextColumn(c *Column, placeholder string) {
	fill, ok := usableMode(c.Values)
	if !ok {
		fill = placeholder
	}
	for i, v := range c.Values {
		if v == nil {
			c.Values[i] = fill
		}
	}
}

// dateKeywords flag columns that may hold dates.
var dateKeywords = []string{"date", "time", "day", "month", "year", "dob", "birth"}

// dateLayouts are tried in order when parsing candidate date cells.
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"02/01/2006",
	"01/02/2006",
	"02-01-2006",
	"02.01.2006",
	"Jan 2, 2006",
	"2 Jan 2006",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
}

// normalizeDates rewrites a keyword-matched text column to canonical ISO
// dates when more than half of its non-null values parse. Missing dates are
// filled with the column's most common date, or today when the column holds
// no valid date at all.
func (e *Engine) normalizeDates(c *Column) {
	if c.Kind != KindText || !matchesAny(c.Name, dateKeywords) {
		return
	}

	nonNull := c.nonNullCount()
	if nonNull == 0 {
		return
	}

	parsed := make([]any, len(c.Values))
	n := 0
	for i, v := range c.Values {
		s, ok := v.(string)
		if !ok {
			continue
		}
		if t, ok := parseDateLoose(s); ok {
			parsed[i] = t.Format("2006-01-02")
			n++
		}
	}
	if float64(n) <= float64(nonNull)*numericCoercionThreshold {
		return
	}

	c.Values = parsed
	fill, ok := mode(c.Values)
	if !ok {
		fill = e.cfg.Now().Format("2006-01-02")
	}
	for i, v := range c.Values {
		if v == nil {
			c.Values[i] = fill
		}
	}
	c.Kind = KindDate
}

// fallbackFill cures any nulls the earlier stages left behind: numeric
// columns take the median (0 when empty), bool columns the mode (false when
// empty), everything else the mode or the generic placeholder.
func (e *Engine) fallbackFill(c *Column) {
	hasNull := false
	for _, v := range c.Values {
		if v == nil {
			hasNull = true
			break
		}
	}
	if !hasNull {
		return
	}

	var fill any
	switch c.Kind {
	case KindNumeric:
		if valid := c.Floats(); len(valid) > 0 {
			fill = median(valid)
		} else {
			fill = float64(0)
		}
	case KindBool:
		if m, ok := mode(c.Values); ok {
			fill = m
		} else {
			fill = false
		}
	default:
		if m, ok := usableMode(c.Values); ok {
			fill = m
		} else {
			fill = genericPlaceholder
		}
	}
	for i, v := range c.Values {
		if v == nil {
			c.Values[i] = fill
		}
	}
}

func (e *Engine) deduplicate(ds *Dataset) {
	n := ds.NumRows()
	keep := make([]bool, n)
	seen := make(map[string]struct{}, n)
	for i := 0; i < n; i++ {
		k := rowKey(ds.Row(i))
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		keep[i] = true
	}
	ds.keepRows(keep)
}

func (e *Engine) downcastIntegral(c *Column) {
	if c.Kind != KindNumeric {
		return
	}
	for _, v := range c.Values {
		f, ok := v.(float64)
		if !ok {
			return
		}
		if f != math.Trunc(f) {
			return
		}
	}
	c.Integral = len(c.Values) > 0
}

// parseNumber parses a numeric cell, tolerating thousands separators.
func parseNumber(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if strings.Count(s, ",") > 0 && !strings.Contains(s, ",,") {
		s = strings.ReplaceAll(s, ",", "")
	}
	return strconv.ParseFloat(s, 64)
}

func parseBoolLoose(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "t", "true", "yes", "y":
		return true, true
	case "0", "f", "false", "no", "n":
		return false, true
	default:
		return false, false
	}
}

func parseDateLoose(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, lay := range dateLayouts {
		if t, err := time.Parse(lay, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func matchesAny(name string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(name, kw) {
			return true
		}
	}
	return false
}

func keepDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
