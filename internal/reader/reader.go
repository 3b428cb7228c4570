// Package reader parses uploaded tabular files into a records.RawSet.
//
// The reader package is responsible for:
//   - Dispatching on the declared file extension (allow-list, no sniffing
//     beyond the txt tab/comma fallback)
//   - Producing rectangular record sets aligned with the source header
//   - Classifying failures as unsupported-format, empty-file, or parse error
//
// Design constraints:
//   - Parsing is a pure function of the input bytes; no side effects.
//   - Row-level problems are handled leniently (misaligned rows are
//     skipped); only structural failures surface as errors.
package reader

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"autodash/pkg/records"
)

var (
	// ErrUnsupportedFormat is returned for extensions outside the allow-list.
	ErrUnsupportedFormat = errors.New("reader: unsupported file format")
	// ErrEmptyFile is returned when parsing yields zero data rows or columns.
	ErrEmptyFile = errors.New("reader: file contains no data")
)

// ParseError wraps a structural parse failure with the format that produced it.
type ParseError struct {
	Format string
	Line   int
	Err    error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("reader: parse %s (line %d): %v", e.Format, e.Line, e.Err)
	}
	return fmt.Sprintf("reader: parse %s: %v", e.Format, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Read loads and parses the file at path. The extension is declared by the
// caller (upload metadata) rather than derived from the path, so renamed
// uploads parse the way the user declared them.
func Read(path, ext string) (*records.RawSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reader: open %s: %w", path, err)
	}
	return ReadBytes(data, ext)
}

// ReadBytes parses raw file bytes according to the declared extension.
//
// Errors:
//   - ErrUnsupportedFormat for unknown extensions.
//   - ErrEmptyFile when zero data rows (or zero columns) result.
//   - *ParseError for malformed content.
func ReadBytes(data []byte, ext string) (*records.RawSet, error) {
	var (
		set *records.RawSet
		err error
	)

	switch normalizeExt(ext) {
	case "csv":
		set, err = readDelimited(data, ',')
	case "tsv":
		set, err = readDelimited(data, '\t')
	case "txt":
		set, err = readPlainText(data)
	case "xlsx", "xls":
		set, err = readWorkbook(data)
	case "json":
		set, err = readJSON(data)
	case "html", "htm":
		set, err = readHTMLTable(data)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, err
	}

	if set == nil || set.NumColumns() == 0 || set.NumRows() == 0 {
		return nil, ErrEmptyFile
	}
	return set, nil
}

// readPlainText attempts tab-delimited parsing first and falls back to
// comma when the result does not look tabular (a single column usually
// means the guessed delimiter never occurred in the data).
func readPlainText(data []byte) (*records.RawSet, error) {
	set, err := readDelimited(data, '\t')
	if err == nil && set.NumColumns() > 1 {
		return set, nil
	}
	return readDelimited(data, ',')
}

func normalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
}
