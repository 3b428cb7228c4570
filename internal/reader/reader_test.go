package reader

import (
	"errors"
	"reflect"
	"testing"
)

func TestReadBytesCSV(t *testing.T) {
	t.Parallel()

	data := []byte("name, age ,city\nalice, 30 ,pune\nbob,25,delhi\n")
	set, err := ReadBytes(data, "csv")
	if err != nil {
		t.Fatalf("ReadBytes: %v", err)
	}
	if !reflect.DeepEqual(set.Columns, []string{"name", "age", "city"}) {
		t.Errorf("columns = %v", set.Columns)
	}
	want := [][]string{{"alice", "30", "pune"}, {"bob", "25", "delhi"}}
	if !reflect.DeepEqual(set.Rows, want) {
		t.Errorf("rows = %v, want %v", set.Rows, want)
	}
}

func TestReadBytesSkipsMisalignedRows(t *testing.T) {
	t.Parallel()

	data := []byte("a,b\n1,2\nonly-one-cell\n3,4\n")
	set, err := ReadBytes(data, "csv")
	if err != nil {
		t.Fatalf("ReadBytes: %v", err)
	}
	if set.NumRows() != 2 {
		t.Errorf("NumRows = %d, want 2 (misaligned row skipped)", set.NumRows())
	}
}

func TestReadBytesTSV(t *testing.T) {
	t.Parallel()

	set, err := ReadBytes([]byte("x\ty\n1\t2\n"), "tsv")
	if err != nil {
		t.Fatalf("ReadBytes: %v", err)
	}
	if !reflect.DeepEqual(set.Columns, []string{"x", "y"}) {
		t.Errorf("columns = %v", set.Columns)
	}
}

// Plain text tries tabs first and falls back to commas when tabs produce a
// single column.
func TestReadBytesTxtFallback(t *testing.T) {
	t.Parallel()

	tabbed, err := ReadBytes([]byte("a\tb\n1\t2\n"), "txt")
	if err != nil {
		t.Fatalf("tabbed: %v", err)
	}
	if tabbed.NumColumns() != 2 {
		t.Errorf("tabbed columns = %d, want 2", tabbed.NumColumns())
	}

	comma, err := ReadBytes([]byte("a,b\n1,2\n"), "txt")
	if err != nil {
		t.Fatalf("comma: %v", err)
	}
	if comma.NumColumns() != 2 {
		t.Errorf("comma columns = %d, want 2", comma.NumColumns())
	}
}

func TestReadBytesUTF8BOM(t *testing.T) {
	t.Parallel()

	data := append([]byte{0xEF, 0xBB, 0xBF}, []byte("a,b\n1,2\n")...)
	set, err := ReadBytes(data, "csv")
	if err != nil {
		t.Fatalf("ReadBytes: %v", err)
	}
	if set.Columns[0] != "a" {
		t.Errorf("first header = %q, BOM not stripped", set.Columns[0])
	}
}

func TestReadBytesWindows1252(t *testing.T) {
	t.Parallel()

	// 0xE9 is é in Windows-1252 and invalid on its own in UTF-8.
	data := []byte("name\ncaf\xe9\n")
	set, err := ReadBytes(data, "csv")
	if err != nil {
		t.Fatalf("ReadBytes: %v", err)
	}
	if set.Rows[0][0] != "café" {
		t.Errorf("cell = %q, want café", set.Rows[0][0])
	}
}

func TestReadBytesJSONArray(t *testing.T) {
	t.Parallel()

	data := []byte(`[{"name":"a","age":30},{"name":"b","age":25}]`)
	set, err := ReadBytes(data, "json")
	if err != nil {
		t.Fatalf("ReadBytes: %v", err)
	}
	if !reflect.DeepEqual(set.Columns, []string{"age", "name"}) {
		t.Errorf("columns = %v", set.Columns)
	}
	if set.Rows[0][0] != "30" {
		t.Errorf("age cell = %q, want textual 30", set.Rows[0][0])
	}
}

func TestReadBytesJSONEnvelope(t *testing.T) {
	t.Parallel()

	data := []byte(`{"count":2,"items":[{"x":1},{"x":2}]}`)
	set, err := ReadBytes(data, "json")
	if err != nil {
		t.Fatalf("ReadBytes: %v", err)
	}
	if !reflect.DeepEqual(set.Columns, []string{"x"}) {
		t.Errorf("columns = %v", set.Columns)
	}
	if set.NumRows() != 2 {
		t.Errorf("NumRows = %d, want 2", set.NumRows())
	}
}

func TestReadBytesJSONNested(t *testing.T) {
	t.Parallel()

	data := []byte(`[{"user":{"name":"a"},"tags":["x","y"]}]`)
	set, err := ReadBytes(data, "json")
	if err != nil {
		t.Fatalf("ReadBytes: %v", err)
	}
	if !reflect.DeepEqual(set.Columns, []string{"tags", "user.name"}) {
		t.Errorf("columns = %v", set.Columns)
	}
	if set.Rows[0][0] != "x,y" {
		t.Errorf("tags cell = %q, want x,y", set.Rows[0][0])
	}
}

func TestReadBytesNDJSON(t *testing.T) {
	t.Parallel()

	data := []byte("{\"a\":1}\n{\"a\":2}\n{\"a\":3}\n")
	set, err := ReadBytes(data, "json")
	if err != nil {
		t.Fatalf("ReadBytes: %v", err)
	}
	if set.NumRows() != 3 {
		t.Errorf("NumRows = %d, want 3", set.NumRows())
	}
}

func TestReadBytesHTMLTable(t *testing.T) {
	t.Parallel()

	data := []byte(`<html><body><table>
		<tr><th>name</th><th>age</th></tr>
		<tr><td>a</td><td>30</td></tr>
		<tr><td>b</td><td>25</td></tr>
	</table></body></html>`)
	set, err := ReadBytes(data, "html")
	if err != nil {
		t.Fatalf("ReadBytes: %v", err)
	}
	if !reflect.DeepEqual(set.Columns, []string{"name", "age"}) {
		t.Errorf("columns = %v", set.Columns)
	}
	if set.NumRows() != 2 {
		t.Errorf("NumRows = %d, want 2", set.NumRows())
	}
}

func TestReadBytesErrors(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		data []byte
		ext  string
		want error
	}{
		{"unknown extension", []byte("a,b\n1,2\n"), "parquet", ErrUnsupportedFormat},
		{"empty csv", []byte(""), "csv", ErrEmptyFile},
		{"header only", []byte("a,b\n"), "csv", ErrEmptyFile},
		{"empty json", []byte(""), "json", ErrEmptyFile},
		{"json empty array", []byte("[]"), "json", ErrEmptyFile},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := ReadBytes(tc.data, tc.ext)
			if !errors.Is(err, tc.want) {
				t.Errorf("ReadBytes error = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestReadBytesJSONScalarRoot(t *testing.T) {
	t.Parallel()

	var perr *ParseError
	_, err := ReadBytes([]byte(`42`), "json")
	if !errors.As(err, &perr) {
		t.Errorf("scalar root error = %v, want *ParseError", err)
	}
}

func TestNormalizeExt(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		".CSV":  "csv",
		"Xlsx":  "xlsx",
		" json": "json",
		"htm":   "htm",
	}
	for in, want := range cases {
		if got := normalizeExt(in); got != want {
			t.Errorf("normalizeExt(%q) = %q, want %q", in, got, want)
		}
	}
}
