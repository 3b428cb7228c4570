package reader

import (
	"bytes"
	"strings"

	"github.com/xuri/excelize/v2"

	"autodash/pkg/records"
)

// readWorkbook parses a spreadsheet. The first sheet containing a plausible
// table (a non-empty header row followed by at least one data row) wins;
// workbooks often carry cover or notes sheets before the data.
func readWorkbook(data []byte) (*records.RawSet, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, &ParseError{Format: "xlsx", Err: err}
	}
	defer f.Close()

	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			continue
		}
		if set := tableFromSheet(rows); set != nil {
			return set, nil
		}
	}
	return nil, ErrEmptyFile
}

func tableFromSheet(rows [][]string) *records.RawSet {
	// Header is the first row with at least one non-blank cell.
	start := -1
	for i, row := range rows {
		if hasContent(row) {
			start = i
			break
		}
	}
	if start < 0 || start == len(rows)-1 {
		return nil
	}

	headers := make([]string, len(rows[start]))
	for i, h := range rows[start] {
		headers[i] = strings.TrimSpace(h)
	}

	out := make([][]string, 0, len(rows)-start-1)
	for _, row := range rows[start+1:] {
		if !hasContent(row) {
			continue
		}
		// excelize trims trailing empty cells; pad back to header width.
		cells := make([]string, len(headers))
		for i := range cells {
			if i < len(row) {
				cells[i] = strings.TrimSpace(row[i])
			}
		}
		out = append(out, cells)
	}
	if len(out) == 0 {
		return nil
	}
	return &records.RawSet{Columns: headers, Rows: out}
}

func hasContent(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return true
		}
	}
	return false
}
