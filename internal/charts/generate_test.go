package charts

import (
	"reflect"
	"testing"

	"autodash/internal/cleaning"
)

func colOf(name string, kind cleaning.Kind, vals ...any) *cleaning.Column {
	return &cleaning.Column{Name: name, Kind: kind, Values: vals}
}

func sampleDataset() *cleaning.Dataset {
	return &cleaning.Dataset{
		Name: "emp",
		Columns: []*cleaning.Column{
			colOf("department", cleaning.KindText, "sales", "hr", "sales", "it", "sales", "hr"),
			colOf("salary", cleaning.KindNumeric,
				float64(100), float64(200), float64(300), float64(150), float64(250), float64(180)),
			colOf("age", cleaning.KindNumeric,
				float64(30), float64(40), float64(35), float64(28), float64(45), float64(33)),
			colOf("bonus", cleaning.KindNumeric,
				float64(10), float64(20), float64(30), float64(15), float64(25), float64(18)),
			colOf("join_date", cleaning.KindDate,
				"2024-01-10", "2024-01-20", "2024-02-05", "2024-02-15", "2024-03-01", "2024-03-09"),
		},
	}
}

func TestGenerateFullDataset(t *testing.T) {
	t.Parallel()

	specs := Generate(sampleDataset())
	// Every precondition holds for the sample, so all ten charts emit.
	if len(specs) != 10 {
		types := make([]string, len(specs))
		for i, s := range specs {
			types[i] = s.Type
		}
		t.Fatalf("got %d charts (%v), want 10", len(specs), types)
	}
	wantTypes := []string{
		"bar", "bar", "line", "bar", "doughnut",
		"horizontalBar", "scatter", "line", "bar", "radar",
	}
	for i, s := range specs {
		if s.Type != wantTypes[i] {
			t.Errorf("chart %d type = %s, want %s", i, s.Type, wantTypes[i])
		}
	}
}

func TestCategoryFrequencyOrdersByCount(t *testing.T) {
	t.Parallel()

	spec, err := buildCategoryFrequency(sampleDataset(), resolveRoles(sampleDataset()))
	if err != nil {
		t.Fatalf("buildCategoryFrequency: %v", err)
	}
	if !reflect.DeepEqual(spec.Data.Labels, []string{"sales", "hr", "it"}) {
		t.Errorf("labels = %v", spec.Data.Labels)
	}
	if !reflect.DeepEqual(spec.Data.Datasets[0].Data, []float64{3, 2, 1}) {
		t.Errorf("counts = %v", spec.Data.Datasets[0].Data)
	}
}

// The donut gate is exact: six distinct categories emit, seven do not.
func TestDonutGate(t *testing.T) {
	t.Parallel()

	mk := func(n int) *cleaning.Dataset {
		c := &cleaning.Column{Name: "category", Kind: cleaning.KindText}
		for i := 0; i < n; i++ {
			c.Values = append(c.Values, string(rune('a'+i)))
		}
		return &cleaning.Dataset{Name: "t", Columns: []*cleaning.Column{c}}
	}

	six := mk(6)
	if _, err := buildCategoryDonut(six, resolveRoles(six)); err != nil {
		t.Errorf("6 distinct values should emit a donut, got %v", err)
	}
	seven := mk(7)
	if _, err := buildCategoryDonut(seven, resolveRoles(seven)); err == nil {
		t.Error("7 distinct values should skip the donut")
	}
}

func TestScatterSampleIsBoundedAndDeterministic(t *testing.T) {
	t.Parallel()

	x := &cleaning.Column{Name: "a", Kind: cleaning.KindNumeric}
	y := &cleaning.Column{Name: "b", Kind: cleaning.KindNumeric}
	for i := 0; i < 500; i++ {
		x.Values = append(x.Values, float64(i))
		y.Values = append(y.Values, float64(i*2))
	}
	ds := &cleaning.Dataset{Name: "big", Columns: []*cleaning.Column{x, y}}

	first, err := buildScatter(ds, resolveRoles(ds))
	if err != nil {
		t.Fatalf("buildScatter: %v", err)
	}
	points := first.Data.Datasets[0].Data.([]Point)
	if len(points) != 100 {
		t.Fatalf("sample size = %d, want 100", len(points))
	}

	second, err := buildScatter(ds, resolveRoles(ds))
	if err != nil {
		t.Fatalf("buildScatter second run: %v", err)
	}
	if !reflect.DeepEqual(first.Data.Datasets[0].Data, second.Data.Datasets[0].Data) {
		t.Error("scatter sample should be identical across runs")
	}
}

func TestRadarNeedsThreeNumerics(t *testing.T) {
	t.Parallel()

	ds := &cleaning.Dataset{
		Name: "thin",
		Columns: []*cleaning.Column{
			colOf("city", cleaning.KindText, "a", "b"),
			colOf("x", cleaning.KindNumeric, float64(1), float64(2)),
			colOf("y", cleaning.KindNumeric, float64(3), float64(4)),
		},
	}
	if _, err := buildRadar(ds, resolveRoles(ds)); err == nil {
		t.Error("radar should require three numeric columns")
	}
}

func TestCumulativeTrendIsMonotoneForPositiveSeries(t *testing.T) {
	t.Parallel()

	ds := sampleDataset()
	spec, err := buildCumulativeTrend(ds, resolveRoles(ds))
	if err != nil {
		t.Fatalf("buildCumulativeTrend: %v", err)
	}
	series := spec.Data.Datasets[0].Data.([]float64)
	for i := 1; i < len(series); i++ {
		if series[i] < series[i-1] {
			t.Fatalf("cumulative series decreased at %d: %v", i, series)
		}
	}
	if got := series[len(series)-1]; got != 1180 {
		t.Errorf("final cumulative sum = %v, want 1180", got)
	}
}

func TestGenerateOnEmptyDataset(t *testing.T) {
	t.Parallel()

	specs := Generate(&cleaning.Dataset{Name: "empty"})
	if len(specs) != 0 {
		t.Errorf("empty dataset produced %d charts", len(specs))
	}
}

func TestResolveRolesKeywordAndFallback(t *testing.T) {
	t.Parallel()

	ds := &cleaning.Dataset{
		Name: "t",
		Columns: []*cleaning.Column{
			colOf("notes", cleaning.KindText, "x"),
			colOf("region", cleaning.KindText, "east"),
			colOf("height", cleaning.KindNumeric, float64(1)),
			colOf("revenue", cleaning.KindNumeric, float64(2)),
		},
	}
	r := resolveRoles(ds)
	if r.category == nil || r.category.Name != "region" {
		t.Errorf("category = %v, want region (keyword beats first text)", r.category)
	}
	if r.magnitude == nil || r.magnitude.Name != "revenue" {
		t.Errorf("magnitude = %v, want revenue", r.magnitude)
	}

	noKw := &cleaning.Dataset{
		Name: "t2",
		Columns: []*cleaning.Column{
			colOf("notes", cleaning.KindText, "x"),
			colOf("height", cleaning.KindNumeric, float64(1)),
		},
	}
	r2 := resolveRoles(noKw)
	if r2.category == nil || r2.category.Name != "notes" {
		t.Errorf("fallback category = %v, want notes", r2.category)
	}
	if r2.magnitude == nil || r2.magnitude.Name != "height" {
		t.Errorf("fallback magnitude = %v, want height", r2.magnitude)
	}
}
