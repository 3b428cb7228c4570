package reader

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"autodash/pkg/records"
)

// readHTMLTable extracts the first <table> of an HTML document.
//
// Header cells come from the first row (th preferred, td accepted); data
// rows must match the header width exactly, everything else is skipped.
func readHTMLTable(data []byte) (*records.RawSet, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, &ParseError{Format: "html", Err: err}
	}

	table := doc.Find("table").First()
	if table.Length() == 0 {
		return nil, ErrEmptyFile
	}

	var headers []string
	var rows [][]string

	table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		cells := tr.Find("th, td")
		vals := make([]string, 0, cells.Length())
		cells.Each(func(_ int, cell *goquery.Selection) {
			vals = append(vals, strings.TrimSpace(cell.Text()))
		})
		if len(vals) == 0 {
			return
		}
		if headers == nil {
			headers = vals
			return
		}
		if len(vals) == len(headers) {
			rows = append(rows, vals)
		}
	})

	if len(headers) == 0 || len(rows) == 0 {
		return nil, ErrEmptyFile
	}
	return &records.RawSet{Columns: headers, Rows: rows}, nil
}
