package charts

import (
	"fmt"
	"log"
	"math/rand"
	"sort"

	"autodash/internal/cleaning"
)

// maxCharts bounds the generator's output.
const maxCharts = 10

// donutMaxCategories gates the share donut: more slices than this reads as
// noise, so the chart is skipped.
const donutMaxCategories = 6

// scatterMaxPoints bounds the scatter sample size.
const scatterMaxPoints = 100

// scatterSeed fixes the sample so repeated generations of the same dataset
// draw the same points.
const scatterSeed = 42

// topBarCategories caps the horizontal ranking bar.
const topBarCategories = 10

// radarCategories and radarMetrics size the radar comparison.
const (
	radarCategories = 3
	radarMetrics    = 3
)

type builder struct {
	name  string
	build func(ds *cleaning.Dataset, r roles) (Spec, error)
}

// builders run in priority order; each failure is logged and skipped.
var builders = []builder{
	{"category-frequency", buildCategoryFrequency},
	{"mean-by-category", buildMeanByCategory},
	{"monthly-trend", buildMonthlyTrend},
	{"quartiles-by-category", buildQuartilesByCategory},
	{"category-donut", buildCategoryDonut},
	{"top-categories", buildTopCategories},
	{"scatter", buildScatter},
	{"cumulative-trend", buildCumulativeTrend},
	{"two-metric-stack", buildTwoMetricStack},
	{"radar", buildRadar},
}

// Generate derives up to ten chart descriptors from a cleaned dataset.
// Chart construction is independent per chart: a builder error means that
// chart is absent from the output, nothing more.
func Generate(ds *cleaning.Dataset) []Spec {
	r := resolveRoles(ds)
	specs := make([]Spec, 0, maxCharts)
	for _, b := range builders {
		spec, err := b.build(ds, r)
		if err != nil {
			log.Printf("charts: skipping %s for %s: %v", b.name, ds.Name, err)
			continue
		}
		specs = append(specs, spec)
		if len(specs) == maxCharts {
			break
		}
	}
	return specs
}

func buildCategoryFrequency(ds *cleaning.Dataset, r roles) (Spec, error) {
	if r.category == nil {
		return Spec{}, fmt.Errorf("no categorical column")
	}
	labels, counts := valueCounts(r.category)
	return Spec{
		Type:  "bar",
		Title: fmt.Sprintf("Distribution of %s", r.category.Name),
		Data: Data{
			Labels: labels,
			Datasets: []Dataset{{
				Label:           "Count",
				Data:            counts,
				BackgroundColor: colorsFor(len(labels)),
			}},
		},
	}, nil
}

func buildMeanByCategory(ds *cleaning.Dataset, r roles) (Spec, error) {
	if r.category == nil || r.magnitude == nil {
		return Spec{}, fmt.Errorf("needs categorical and numeric columns")
	}
	labels, groups := groupFloats(r.category, r.magnitude)
	means := make([]float64, len(groups))
	for i, g := range groups {
		means[i] = round2(meanOf(g))
	}
	return Spec{
		Type:  "bar",
		Title: fmt.Sprintf("Average %s by %s", r.magnitude.Name, r.category.Name),
		Data: Data{
			Labels: labels,
			Datasets: []Dataset{{
				Label:           fmt.Sprintf("Mean %s", r.magnitude.Name),
				Data:            means,
				BackgroundColor: colorsFor(len(labels)),
			}},
		},
	}, nil
}

func buildMonthlyTrend(ds *cleaning.Dataset, r roles) (Spec, error) {
	if r.temporal == nil || r.category == nil {
		return Spec{}, fmt.Errorf("needs temporal and categorical columns")
	}
	counts := map[string]float64{}
	for _, v := range r.temporal.Values {
		s, ok := v.(string)
		if !ok || len(s) < 7 {
			continue
		}
		counts[s[:7]]++ // YYYY-MM
	}
	if len(counts) == 0 {
		return Spec{}, fmt.Errorf("no parseable dates in %s", r.temporal.Name)
	}
	months := make([]string, 0, len(counts))
	for m := range counts {
		months = append(months, m)
	}
	sort.Strings(months)
	series := make([]float64, len(months))
	for i, m := range months {
		series[i] = counts[m]
	}
	return Spec{
		Type:  "line",
		Title: fmt.Sprintf("Records per month (%s)", r.temporal.Name),
		Data: Data{
			Labels: months,
			Datasets: []Dataset{{
				Label:       "Records",
				Data:        series,
				BorderColor: colorAt(0),
				Fill:        false,
			}},
		},
	}, nil
}

func buildQuartilesByCategory(ds *cleaning.Dataset, r roles) (Spec, error) {
	if r.category == nil || r.magnitude == nil {
		return Spec{}, fmt.Errorf("needs categorical and numeric columns")
	}
	labels, groups := groupFloats(r.category, r.magnitude)

	statNames := []string{"Min", "Q1", "Median", "Q3", "Max"}
	series := make([][]float64, len(statNames))
	for i := range series {
		series[i] = make([]float64, len(groups))
	}
	for gi, g := range groups {
		if len(g) == 0 {
			return Spec{}, fmt.Errorf("empty group %q", labels[gi])
		}
		q := quartiles(g)
		for si := range statNames {
			series[si][gi] = round2(q[si])
		}
	}

	datasets := make([]Dataset, len(statNames))
	for i, name := range statNames {
		datasets[i] = Dataset{
			Label:           name,
			Data:            series[i],
			BackgroundColor: colorAt(i),
		}
	}
	return Spec{
		Type:  "bar",
		Title: fmt.Sprintf("%s spread by %s", r.magnitude.Name, r.category.Name),
		Data:  Data{Labels: labels, Datasets: datasets},
	}, nil
}

func buildCategoryDonut(ds *cleaning.Dataset, r roles) (Spec, error) {
	if r.category == nil {
		return Spec{}, fmt.Errorf("no categorical column")
	}
	labels, counts := valueCounts(r.category)
	if len(labels) > donutMaxCategories {
		return Spec{}, fmt.Errorf("%s has %d distinct values, donut cap is %d",
			r.category.Name, len(labels), donutMaxCategories)
	}
	return Spec{
		Type:  "doughnut",
		Title: fmt.Sprintf("Share of %s", r.category.Name),
		Data: Data{
			Labels: labels,
			Datasets: []Dataset{{
				Label:           r.category.Name,
				Data:            counts,
				BackgroundColor: colorsFor(len(labels)),
			}},
		},
	}, nil
}

func buildTopCategories(ds *cleaning.Dataset, r roles) (Spec, error) {
	if r.category == nil {
		return Spec{}, fmt.Errorf("no categorical column")
	}
	labels, counts := valueCounts(r.category)
	if len(labels) > topBarCategories {
		labels = labels[:topBarCategories]
		counts = counts[:topBarCategories]
	}
	return Spec{
		Type:  "horizontalBar",
		Title: fmt.Sprintf("Top %s values", r.category.Name),
		Data: Data{
			Labels: labels,
			Datasets: []Dataset{{
				Label:           "Count",
				Data:            counts,
				BackgroundColor: colorsFor(len(labels)),
			}},
		},
	}, nil
}

func buildScatter(ds *cleaning.Dataset, r roles) (Spec, error) {
	if len(r.numerics) < 2 {
		return Spec{}, fmt.Errorf("needs two numeric columns")
	}
	x, y := r.numerics[0], r.numerics[1]
	n := len(x.Values)

	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	if n > scatterMaxPoints {
		rng := rand.New(rand.NewSource(scatterSeed))
		idx = rng.Perm(n)[:scatterMaxPoints]
		sort.Ints(idx)
	}

	points := make([]Point, 0, len(idx))
	for _, i := range idx {
		xf, xok := x.Values[i].(float64)
		yf, yok := y.Values[i].(float64)
		if !xok || !yok {
			continue
		}
		points = append(points, Point{X: round2(xf), Y: round2(yf)})
	}
	if len(points) == 0 {
		return Spec{}, fmt.Errorf("no numeric point pairs")
	}
	return Spec{
		Type:  "scatter",
		Title: fmt.Sprintf("%s vs %s", y.Name, x.Name),
		Data: Data{
			Datasets: []Dataset{{
				Label:           fmt.Sprintf("%s / %s", x.Name, y.Name),
				Data:            points,
				BackgroundColor: colorAt(0),
			}},
		},
	}, nil
}

func buildCumulativeTrend(ds *cleaning.Dataset, r roles) (Spec, error) {
	if r.temporal == nil || r.magnitude == nil {
		return Spec{}, fmt.Errorf("needs temporal and numeric columns")
	}
	sums := map[string]float64{}
	for i, v := range r.temporal.Values {
		s, ok := v.(string)
		if !ok {
			continue
		}
		if f, ok := r.magnitude.Values[i].(float64); ok {
			sums[s] += f
		}
	}
	if len(sums) == 0 {
		return Spec{}, fmt.Errorf("no date/value pairs")
	}
	dates := make([]string, 0, len(sums))
	for d := range sums {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	running := 0.0
	series := make([]float64, len(dates))
	for i, d := range dates {
		running += sums[d]
		series[i] = round2(running)
	}
	return Spec{
		Type:  "line",
		Title: fmt.Sprintf("Cumulative %s over %s", r.magnitude.Name, r.temporal.Name),
		Data: Data{
			Labels: dates,
			Datasets: []Dataset{{
				Label:       fmt.Sprintf("Cumulative %s", r.magnitude.Name),
				Data:        series,
				BorderColor: colorAt(1),
				Fill:        true,
			}},
		},
	}, nil
}

func buildTwoMetricStack(ds *cleaning.Dataset, r roles) (Spec, error) {
	if r.category == nil || len(r.numerics) < 2 {
		return Spec{}, fmt.Errorf("needs categorical plus two numeric columns")
	}
	m1, m2 := r.numerics[0], r.numerics[1]
	labels, g1 := groupFloats(r.category, m1)
	_, g2 := groupFloats(r.category, m2)

	sums := func(groups [][]float64) []float64 {
		out := make([]float64, len(groups))
		for i, g := range groups {
			var s float64
			for _, v := range g {
				s += v
			}
			out[i] = round2(s)
		}
		return out
	}

	return Spec{
		Type:  "bar",
		Title: fmt.Sprintf("%s and %s by %s", m1.Name, m2.Name, r.category.Name),
		Data: Data{
			Labels: labels,
			Datasets: []Dataset{
				{Label: m1.Name, Data: sums(g1), BackgroundColor: colorAt(0), Stack: "total"},
				{Label: m2.Name, Data: sums(g2), BackgroundColor: colorAt(1), Stack: "total"},
			},
		},
	}, nil
}

func buildRadar(ds *cleaning.Dataset, r roles) (Spec, error) {
	if r.category == nil || len(r.numerics) < radarMetrics {
		return Spec{}, fmt.Errorf("needs categorical plus %d numeric columns", radarMetrics)
	}
	topLabels, _ := valueCounts(r.category)
	if len(topLabels) > radarCategories {
		topLabels = topLabels[:radarCategories]
	}
	metrics := r.numerics[:radarMetrics]

	labels := make([]string, len(metrics))
	for i, m := range metrics {
		labels[i] = m.Name
	}

	datasets := make([]Dataset, 0, len(topLabels))
	for ci, cat := range topLabels {
		series := make([]float64, len(metrics))
		for mi, m := range metrics {
			var vals []float64
			for i, cv := range r.category.Values {
				if s, ok := cv.(string); ok && s == cat {
					if f, ok := m.Values[i].(float64); ok {
						vals = append(vals, f)
					}
				}
			}
			series[mi] = round2(meanOf(vals))
		}
		datasets = append(datasets, Dataset{
			Label:       cat,
			Data:        series,
			BorderColor: colorAt(ci),
		})
	}
	return Spec{
		Type:  "radar",
		Title: fmt.Sprintf("Top %s compared", r.category.Name),
		Data:  Data{Labels: labels, Datasets: datasets},
	}, nil
}

// valueCounts returns the distinct stringified values of a column and their
// counts, most frequent first, ties broken by first observation.
func valueCounts(c *cleaning.Column) ([]string, []float64) {
	counts := map[string]int{}
	order := []string{}
	for _, v := range c.Values {
		s := fmt.Sprint(v)
		if counts[s] == 0 {
			order = append(order, s)
		}
		counts[s]++
	}
	rank := make(map[string]int, len(order))
	for i, s := range order {
		rank[s] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		if counts[order[i]] != counts[order[j]] {
			return counts[order[i]] > counts[order[j]]
		}
		return rank[order[i]] < rank[order[j]]
	})
	out := make([]float64, len(order))
	for i, s := range order {
		out[i] = float64(counts[s])
	}
	return order, out
}

// groupFloats buckets a numeric column's values by category, labels in
// first-observed order.
func groupFloats(category, numeric *cleaning.Column) ([]string, [][]float64) {
	idx := map[string]int{}
	labels := []string{}
	groups := [][]float64{}
	for i, cv := range category.Values {
		label := fmt.Sprint(cv)
		gi, ok := idx[label]
		if !ok {
			gi = len(labels)
			idx[label] = gi
			labels = append(labels, label)
			groups = append(groups, nil)
		}
		if f, ok := numeric.Values[i].(float64); ok {
			groups[gi] = append(groups[gi], f)
		}
	}
	return labels, groups
}

func meanOf(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	var s float64
	for _, v := range vals {
		s += v
	}
	return s / float64(len(vals))
}

// quartiles returns min, Q1, median, Q3, max using linear interpolation
// between order statistics.
func quartiles(vals []float64) [5]float64 {
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	q := func(p float64) float64 {
		if len(sorted) == 1 {
			return sorted[0]
		}
		pos := p * float64(len(sorted)-1)
		lo := int(pos)
		hi := lo + 1
		if hi >= len(sorted) {
			return sorted[lo]
		}
		frac := pos - float64(lo)
		return sorted[lo]*(1-frac) + sorted[hi]*frac
	}
	return [5]float64{sorted[0], q(0.25), q(0.5), q(0.75), sorted[len(sorted)-1]}
}
