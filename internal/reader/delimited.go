package reader

import (
	"bytes"
	"encoding/csv"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"autodash/pkg/records"
)

// readDelimited parses delimited text into a header row and data rows.
//
// The implementation is intentionally best-effort:
//   - records with the wrong field count are skipped
//   - cells are trimmed
//   - quoting is lax (LazyQuotes) so half-quoted exports still parse
func readDelimited(data []byte, delimiter rune) (*records.RawSet, error) {
	data = bytes.TrimSpace(decodeText(data))
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = delimiter
	r.FieldsPerRecord = -1 // we validate manually
	r.LazyQuotes = true

	headers, err := r.Read()
	if err != nil {
		return nil, &ParseError{Format: "delimited", Line: 1, Err: err}
	}
	for i := range headers {
		headers[i] = strings.TrimSpace(headers[i])
	}

	rows := make([][]string, 0, 1024)
	line := 1
	for {
		line++
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Lenient: a single bad record must not fail the upload.
			continue
		}
		if len(rec) != len(headers) {
			continue
		}
		row := make([]string, len(rec))
		for i := range rec {
			row[i] = strings.TrimSpace(rec[i])
		}
		rows = append(rows, row)
	}

	return &records.RawSet{Columns: headers, Rows: rows}, nil
}

// decodeText normalizes input bytes to UTF-8. UTF-8/UTF-16 BOMs are honored
// and stripped; remaining invalid UTF-8 is re-decoded as Windows-1252, the
// usual culprit for spreadsheet exports.
func decodeText(data []byte) []byte {
	if hasBOM(data) {
		bomAware := unicode.BOMOverride(unicode.UTF8.NewDecoder())
		if out, _, err := transform.Bytes(bomAware, data); err == nil {
			return out
		}
	}
	if !utf8.Valid(data) {
		if out, _, err := transform.Bytes(charmap.Windows1252.NewDecoder(), data); err == nil {
			return out
		}
	}
	return data
}

func hasBOM(data []byte) bool {
	return bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}) ||
		bytes.HasPrefix(data, []byte{0xFF, 0xFE}) ||
		bytes.HasPrefix(data, []byte{0xFE, 0xFF})
}
