//go:build !noxlsx

package employee

import (
	"bytes"
	"fmt"
	"iter"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

var defaultSpreadsheetReader SpreadsheetReader = readXLSX

func readXLSX(content []byte, hasHeader bool) iter.Seq2[RawRow, error] {
	return func(yield func(RawRow, error) bool) {
		book, err := excelize.OpenReader(bytes.NewReader(content))
		if err != nil {
			yield(nil, fmt.Errorf("%w: open workbook: %v", ErrUnreadableUpload, err))
			return
		}
		defer book.Close()

		sheet := book.GetSheetName(book.GetActiveSheetIndex())
		rows, err := book.Rows(sheet)
		if err != nil {
			yield(nil, fmt.Errorf("%w: read sheet %q: %v", ErrUnreadableUpload, sheet, err))
			return
		}
		defer rows.Close()

		var (
			headers []string
			keep    []bool
		)
		for rows.Next() {
			cells, err := rows.Columns(excelize.Options{RawCellValue: true})
			if err != nil {
				yield(nil, fmt.Errorf("%w: read sheet row: %v", ErrUnreadableUpload, err))
				return
			}

			if hasHeader && headers == nil {
				headers = make([]string, len(cells))
				for i, cell := range cells {
					headers[i] = strings.TrimSpace(cell)
				}
				keep = firstColumns(headers)
				continue
			}

			if !yield(sheetRow(headers, keep, cells), nil) {
				return
			}
		}

		if err := rows.Error(); err != nil {
			yield(nil, fmt.Errorf("%w: iterate sheet rows: %v", ErrUnreadableUpload, err))
		}
	}
}

// sheetRow keys cells by header name and falls back to the column index past the header.
func sheetRow(headers []string, keep []bool, cells []string) RawRow {
	row := make(RawRow, len(cells))
	for i, cell := range cells {
		if i < len(headers) {
			if keep[i] {
				row[headers[i]] = cell
			}
			continue
		}
		row[strconv.Itoa(i)] = cell
	}
	return row
}
