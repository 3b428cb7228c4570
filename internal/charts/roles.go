package charts

import (
	"strings"

	"autodash/internal/cleaning"
)

// roles binds dataset columns to the three chart-facing roles. Resolved
// once per generation; individual charts pick what they need.
type roles struct {
	category  *cleaning.Column // label axis
	magnitude *cleaning.Column // primary numeric series
	temporal  *cleaning.Column // time axis
	numerics  []*cleaning.Column
	texts     []*cleaning.Column
}

var categoryKeywords = []string{
	"gender", "city", "department", "dept", "category", "type", "status",
	"region", "country", "product", "grade",
}

var magnitudeKeywords = []string{
	"salary", "price", "amount", "cost", "revenue", "sales", "income",
	"total", "score", "marks",
}

// resolveRoles matches columns to roles by keyword, falling back to the
// first column of the fitting kind when no keyword matches.
func resolveRoles(ds *cleaning.Dataset) roles {
	var r roles
	for _, c := range ds.Columns {
		switch c.Kind {
		case cleaning.KindNumeric:
			r.numerics = append(r.numerics, c)
			if r.magnitude == nil && matchesKeyword(c.Name, magnitudeKeywords) {
				r.magnitude = c
			}
		case cleaning.KindText:
			r.texts = append(r.texts, c)
			if r.category == nil && matchesKeyword(c.Name, categoryKeywords) {
				r.category = c
			}
		case cleaning.KindDate:
			if r.temporal == nil {
				r.temporal = c
			}
		}
	}
	if r.category == nil && len(r.texts) > 0 {
		r.category = r.texts[0]
	}
	if r.magnitude == nil && len(r.numerics) > 0 {
		r.magnitude = r.numerics[0]
	}
	return r
}

func matchesKeyword(name string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(name, kw) {
			return true
		}
	}
	return false
}
