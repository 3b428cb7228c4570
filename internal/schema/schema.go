// Package schema profiles cleaned datasets and infers the narrowest
// storage type for each column.
package schema

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"autodash/internal/cleaning"
	"autodash/internal/storage"
)

// ColumnProfile summarizes one cleaned column for inference and reporting.
type ColumnProfile struct {
	Name     string   `json:"name"`
	Kind     string   `json:"kind"`
	Rows     int      `json:"rows"`
	Distinct int      `json:"distinct"`
	Samples  []string `json:"samples,omitempty"`
	Integral bool     `json:"integral,omitempty"`
	Min      float64  `json:"min,omitempty"`
	Max      float64  `json:"max,omitempty"`
	Mean     float64  `json:"mean,omitempty"`
	MaxLen   int      `json:"max_len,omitempty"`
	SQLType  string   `json:"sql_type"`
}

// maxProfileSamples caps how many example values a profile carries.
const maxProfileSamples = 5

// Profile computes a profile for every column in declaration order.
func Profile(ds *cleaning.Dataset) []ColumnProfile {
	out := make([]ColumnProfile, 0, len(ds.Columns))
	for _, c := range ds.Columns {
		def := Infer(c)
		p := ColumnProfile{
			Name:     c.Name,
			Kind:     c.Kind.String(),
			Rows:     len(c.Values),
			Distinct: c.DistinctCount(),
			Samples:  sampleValues(c, maxProfileSamples),
			Integral: c.Integral,
			SQLType:  string(def.Type),
		}
		switch c.Kind {
		case cleaning.KindNumeric:
			p.Min, p.Max = numericBounds(c)
			p.Mean = meanOf(c)
		case cleaning.KindText:
			p.MaxLen = maxTextLen(c)
		}
		out = append(out, p)
	}
	return out
}

// varcharLimit is the widest VARCHAR inference will declare; anything
// needing more becomes TEXT.
const varcharLimit = 255

// varcharHeadroom pads the observed maximum length so slightly longer
// values in future loads of similar data still fit.
const varcharHeadroom = 1.5

// Infer picks the narrowest generic storage type that holds every value in
// the column.
//
// Integer columns land on the smallest signed tier that fits; however the
// tiny tier is reserved for non-negative columns because SQL Server's
// TINYINT is unsigned.
func Infer(c *cleaning.Column) storage.ColumnDef {
	def := storage.ColumnDef{Name: c.Name}

	switch c.Kind {
	case cleaning.KindBool:
		def.Type = storage.TypeBoolean
	case cleaning.KindDate:
		def.Type = storage.TypeDate
	case cleaning.KindNumeric:
		if !c.Integral {
			def.Type = storage.TypeDecimal
			break
		}
		min, max := numericBounds(c)
		def.Type = integerTier(min, max)
	default:
		maxLen := maxTextLen(c)
		if padded := int(math.Ceil(float64(maxLen) * varcharHeadroom)); padded <= varcharLimit {
			if padded < 1 {
				padded = 1
			}
			def.Type = storage.TypeVarchar
			def.Length = padded
		} else {
			def.Type = storage.TypeText
		}
	}
	return def
}

func integerTier(min, max float64) storage.ColumnType {
	switch {
	case min >= 0 && max < 1<<7:
		return storage.TypeTinyInt
	case min >= -(1<<15) && max < 1<<15:
		return storage.TypeSmallInt
	case min >= -(1<<31) && max < 1<<31:
		return storage.TypeInteger
	default:
		return storage.TypeBigInt
	}
}

func numericBounds(c *cleaning.Column) (min, max float64) {
	vals := c.Floats()
	if len(vals) == 0 {
		return 0, 0
	}
	min, max = vals[0], vals[0]
	for _, v := range vals[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max
}

func meanOf(c *cleaning.Column) float64 {
	vals := c.Floats()
	if len(vals) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

// sampleValues returns the first n distinct values in row order,
// stringified for display.
func sampleValues(c *cleaning.Column, n int) []string {
	var out []string
	seen := make(map[string]struct{}, n)
	for _, v := range c.Values {
		if v == nil {
			continue
		}
		s := cellString(v)
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
		if len(out) == n {
			break
		}
	}
	return out
}

func cellString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprint(x)
	}
}

func maxTextLen(c *cleaning.Column) int {
	maxLen := 0
	for _, v := range c.Values {
		if s, ok := v.(string); ok && len(s) > maxLen {
			maxLen = len(s)
		}
	}
	return maxLen
}

// maxTableNameLen matches the Postgres identifier limit, the tightest of
// the supported backends.
const maxTableNameLen = 63

const tablePrefix = "dataset_"

// TableName derives the destination table name from a dataset name,
// typically the uploaded file's base name.
func TableName(dataset string) string {
	slug := slugify(dataset)
	if slug == "" {
		slug = "upload"
	}
	name := tablePrefix + slug
	if len(name) > maxTableNameLen {
		name = strings.TrimRight(name[:maxTableNameLen], "_")
	}
	return name
}

func slugify(s string) string {
	var b strings.Builder
	lastUnderscore := true
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
	}
	return strings.Trim(b.String(), "_")
}

// Build assembles the full table definition for one cleaned dataset.
func Build(dataset string, ds *cleaning.Dataset) storage.SchemaDefinition {
	def := storage.SchemaDefinition{Table: TableName(dataset)}
	for _, c := range ds.Columns {
		def.Columns = append(def.Columns, Infer(c))
	}
	return def
}
