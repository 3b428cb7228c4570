package cleaning

import (
	"reflect"
	"testing"
	"time"

	"autodash/pkg/records"
)

func fixedClock() time.Time {
	return time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
}

func testEngine() *Engine {
	cfg := DefaultConfig()
	cfg.Now = fixedClock
	return NewEngine(cfg)
}

func TestNormalizeColumnNames(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   []string
		want []string
	}{
		{
			name: "mixed case and punctuation",
			in:   []string{"First Name", "AGE!", "e-mail address"},
			want: []string{"first_name", "age", "e_mail_address"},
		},
		{
			name: "leading digit gets prefix",
			in:   []string{"2024 revenue"},
			want: []string{"col_2024_revenue"},
		},
		{
			name: "empty header",
			in:   []string{"", "x"},
			want: []string{"col", "x"},
		},
		{
			name: "collision suffixes",
			in:   []string{"Name", "name", "NAME "},
			want: []string{"name", "name_1", "name_2"},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := NormalizeColumnNames(tc.in)
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("NormalizeColumnNames(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

// Normalization must be a fixed point: feeding its own output back in
// changes nothing.
func TestNormalizeColumnNamesIdempotent(t *testing.T) {
	t.Parallel()

	in := []string{"First Name", "first name", "2024", "", "Total $"}
	once := NormalizeColumnNames(in)
	twice := NormalizeColumnNames(once)
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("not idempotent: first pass %q, second pass %q", once, twice)
	}
}

func TestCleanAgeMedianFill(t *testing.T) {
	t.Parallel()

	raw := &records.RawSet{
		Columns: []string{"age"},
		Rows:    [][]string{{"25"}, {"-5"}, {"150"}, {"30"}},
	}
	ds := testEngine().Clean("people", raw)

	col := ds.Column("age")
	if col == nil {
		t.Fatal("age column missing after clean")
	}
	// -5 and 150 fall outside 1..100 and take the median of {25, 30}.
	want := []any{float64(25), 27.5, 27.5, float64(30)}
	if !reflect.DeepEqual(col.Values, want) {
		t.Errorf("age values = %v, want %v", col.Values, want)
	}
}

func TestCleanGenderSynonyms(t *testing.T) {
	t.Parallel()

	raw := &records.RawSet{
		Columns: []string{"gender"},
		Rows: [][]string{
			{"M"}, {"boy"}, {"Woman"}, {"f"}, {"FEMALE"}, {"xyz"}, {""},
		},
	}
	ds := testEngine().Clean("survey", raw)

	col := ds.Column("gender")
	if col == nil {
		t.Fatal("gender column missing")
	}
	// xyz and the blank take the mode, which is female (3 vs 2).
	want := []any{"male", "male", "female", "female", "female", "female", "female"}
	if !reflect.DeepEqual(col.Values, want) {
		t.Errorf("gender values = %v, want %v", col.Values, want)
	}
}

func TestCleanScoreDropsRows(t *testing.T) {
	t.Parallel()

	raw := &records.RawSet{
		Columns: []string{"name", "score"},
		Rows: [][]string{
			{"a", "90"},
			{"b", "0"},   // zero counts as missing under the default policy
			{"c", ""},    // missing
			{"d", "101"}, // out of range
			{"e", "55"},
		},
	}
	ds := testEngine().Clean("exam", raw)
	if got := ds.NumRows(); got != 2 {
		t.Fatalf("NumRows = %d, want 2", got)
	}
	if got := ds.Column("name").Values; !reflect.DeepEqual(got, []any{"a", "e"}) {
		t.Errorf("surviving names = %v, want [a e]", got)
	}
}

func TestCleanScoreKeepsZeroWhenConfigured(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.ZeroScoreIsMissing = false
	cfg.Now = fixedClock
	e := NewEngine(cfg)

	raw := &records.RawSet{
		Columns: []string{"score"},
		Rows:    [][]string{{"90"}, {"0"}, {"55"}},
	}
	ds := e.Clean("exam", raw)
	if got := ds.NumRows(); got != 3 {
		t.Fatalf("NumRows = %d, want 3", got)
	}
}

func TestCleanPercentageClamp(t *testing.T) {
	t.Parallel()

	raw := &records.RawSet{
		Columns: []string{"completion_rate"},
		Rows:    [][]string{{"-10"}, {"50"}, {"120"}},
	}
	ds := testEngine().Clean("progress", raw)
	want := []any{float64(0), float64(50), float64(100)}
	if got := ds.Column("completion_rate").Values; !reflect.DeepEqual(got, want) {
		t.Errorf("clamped values = %v, want %v", got, want)
	}
}

func TestCleanQuantityConstFill(t *testing.T) {
	t.Parallel()

	raw := &records.RawSet{
		Columns: []string{"qty"},
		Rows:    [][]string{{"3.4"}, {"-2"}, {""}, {"7"}},
	}
	ds := testEngine().Clean("orders", raw)
	want := []any{float64(3), float64(1), float64(1), float64(7)}
	if got := ds.Column("qty").Values; !reflect.DeepEqual(got, want) {
		t.Errorf("qty values = %v, want %v", got, want)
	}
}

func TestCleanPhoneRule(t *testing.T) {
	t.Parallel()

	raw := &records.RawSet{
		Columns: []string{"phone_number"},
		Rows: [][]string{
			{"(415) 555-0123"},
			{"12345"},
			{""},
		},
	}
	ds := testEngine().Clean("contacts", raw)
	want := []any{"4155550123", "Not Available", "Not Available"}
	if got := ds.Column("phone_number").Values; !reflect.DeepEqual(got, want) {
		t.Errorf("phone values = %v, want %v", got, want)
	}
}

func TestCleanEmailRule(t *testing.T) {
	t.Parallel()

	raw := &records.RawSet{
		Columns: []string{"email"},
		Rows:    [][]string{{"a@b.com"}, {"not-an-address"}, {""}},
	}
	ds := testEngine().Clean("contacts", raw)
	want := []any{"a@b.com", "Not Available", "Not Available"}
	if got := ds.Column("email").Values; !reflect.DeepEqual(got, want) {
		t.Errorf("email values = %v, want %v", got, want)
	}
}

func TestCleanIdentifierDropsNullRows(t *testing.T) {
	t.Parallel()

	raw := &records.RawSet{
		Columns: []string{"student_id", "city"},
		Rows: [][]string{
			{"1", "pune"},
			{"", "delhi"},
			{"3", "pune"},
		},
	}
	ds := testEngine().Clean("students", raw)
	if got := ds.NumRows(); got != 2 {
		t.Fatalf("NumRows = %d, want 2", got)
	}
}

// Country columns must not be caught by the count/quantity keywords.
func TestCleanCountryNotQuantity(t *testing.T) {
	t.Parallel()

	raw := &records.RawSet{
		Columns: []string{"country"},
		Rows:    [][]string{{"India"}, {"India"}, {""}},
	}
	ds := testEngine().Clean("geo", raw)
	want := []any{"India", "India", "India"}
	if got := ds.Column("country").Values; !reflect.DeepEqual(got, want) {
		t.Errorf("country values = %v, want %v", got, want)
	}
}

func TestCleanDateNormalization(t *testing.T) {
	t.Parallel()

	raw := &records.RawSet{
		Columns: []string{"join_date"},
		Rows: [][]string{
			{"2024-01-15"},
			{"15/01/2024"},
			{"garbage"},
			{"2024-03-02"},
		},
	}
	ds := testEngine().Clean("staff", raw)
	col := ds.Column("join_date")
	if col.Kind != KindDate {
		t.Fatalf("kind = %v, want date", col.Kind)
	}
	// Garbage takes the mode (2024-01-15 appears twice after parsing).
	want := []any{"2024-01-15", "2024-01-15", "2024-01-15", "2024-03-02"}
	if !reflect.DeepEqual(col.Values, want) {
		t.Errorf("date values = %v, want %v", col.Values, want)
	}
}

func TestCleanDateModeTieBreaksToFirst(t *testing.T) {
	t.Parallel()

	raw := &records.RawSet{
		Columns: []string{"event_date", "city"},
		Rows: [][]string{
			{"2024-05-01", "pune"},
			{"", "delhi"},
			{"2024-05-02", "agra"},
		},
	}
	ds := testEngine().Clean("events", raw)
	col := ds.Column("event_date")
	if col.Kind != KindDate {
		t.Fatalf("kind = %v, want date", col.Kind)
	}
	// Two distinct dates tie; the first observed wins as mode.
	if got := col.Values[1]; got != "2024-05-01" {
		t.Errorf("filled date = %v, want 2024-05-01", got)
	}
}

// Deduplication runs after filling, so rows made identical by a fill
// collapse to one.
func TestCleanDeduplicatesAfterFill(t *testing.T) {
	t.Parallel()

	raw := &records.RawSet{
		Columns: []string{"city", "amount"},
		Rows: [][]string{
			{"pune", "10"},
			{"pune", ""},   // fill makes this identical to the median row
			{"pune", "10"}, // exact duplicate of row one
			{"delhi", "20"},
		},
	}
	ds := testEngine().Clean("sales", raw)
	if got := ds.NumRows(); got != 2 {
		t.Fatalf("NumRows = %d, want 2 (dedupe after fill), cities %v", got, ds.Column("city").Values)
	}
}

func TestCleanDropsEmptyRowsAndColumns(t *testing.T) {
	t.Parallel()

	raw := &records.RawSet{
		Columns: []string{"a", "b", "junk"},
		Rows: [][]string{
			{"1", "x", ""},
			{"", "", "null"},
			{"2", "y", "n/a"},
		},
	}
	ds := testEngine().Clean("t", raw)
	if got := ds.NumRows(); got != 2 {
		t.Errorf("NumRows = %d, want 2", got)
	}
	if ds.Column("junk") != nil {
		t.Error("all-null column survived")
	}
}

func TestCleanNumericCoercionMajority(t *testing.T) {
	t.Parallel()

	raw := &records.RawSet{
		Columns: []string{"reading", "city"},
		Rows: [][]string{
			{"1.5", "pune"},
			{"2.5", "pune"},
			{"oops", "pune"},
		},
	}
	ds := testEngine().Clean("sensor", raw)
	col := ds.Column("reading")
	if col.Kind != KindNumeric {
		t.Fatalf("kind = %v, want numeric", col.Kind)
	}
	// "oops" became null and took the median of {1.5, 2.5}.
	want := []any{1.5, 2.5, float64(2)}
	if !reflect.DeepEqual(col.Values, want) {
		t.Errorf("values = %v, want %v", col.Values, want)
	}
}

func TestCleanBoolCoercion(t *testing.T) {
	t.Parallel()

	raw := &records.RawSet{
		Columns: []string{"active"},
		Rows:    [][]string{{"yes"}, {"no"}, {"TRUE"}},
	}
	ds := testEngine().Clean("flags", raw)
	col := ds.Column("active")
	if col.Kind != KindBool {
		t.Fatalf("kind = %v, want bool", col.Kind)
	}
	want := []any{true, false, true}
	if !reflect.DeepEqual(col.Values, want) {
		t.Errorf("values = %v, want %v", col.Values, want)
	}
}

func TestCleanIntegralDowncast(t *testing.T) {
	t.Parallel()

	raw := &records.RawSet{
		Columns: []string{"units", "price"},
		Rows:    [][]string{{"1", "9.99"}, {"2", "5.00"}, {"3", "1.25"}},
	}
	ds := testEngine().Clean("inv", raw)
	if !ds.Column("units").Integral {
		t.Error("units should downcast to integral")
	}
	if ds.Column("price").Integral {
		t.Error("price holds fractions and must stay floating")
	}
}

func TestCleanNoNullsRemain(t *testing.T) {
	t.Parallel()

	raw := &records.RawSet{
		Columns: []string{"name", "age", "salary", "gender", "join_date", "notes"},
		Rows: [][]string{
			{"a", "", "-1", "m", "2024-01-01", ""},
			{"", "25", "", "", "", "hello"},
			{"c", "200", "50000", "girl", "bad", "?"},
		},
	}
	ds := testEngine().Clean("mixed", raw)
	for _, c := range ds.Columns {
		for i, v := range c.Values {
			if v == nil {
				t.Errorf("column %s row %d still null after clean", c.Name, i)
			}
		}
	}
}
