package employee

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"iter"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// RawRow maps a column identifier to the cell value as read from the upload.
type RawRow map[string]any

// SpreadsheetReader streams the rows of the active sheet of a workbook.
type SpreadsheetReader func(content []byte, hasHeader bool) iter.Seq2[RawRow, error]

type RowDecoder struct {
	Spreadsheet SpreadsheetReader
}

// NewRowDecoder returns a decoder with every reader compiled into this build.
func NewRowDecoder() RowDecoder {
	return RowDecoder{Spreadsheet: defaultSpreadsheetReader}
}

func DetectFormat(fileName string) (Format, error) {
	name := strings.ToLower(strings.TrimSpace(fileName))
	switch {
	case strings.HasSuffix(name, ".csv"):
		return FormatCSV, nil
	case strings.HasSuffix(name, ".xlsx"):
		return FormatXLSX, nil
	default:
		return "", ErrUnsupportedFormat
	}
}

// Decode returns a forward-only sequence of rows. Read errors end the sequence.
func (d RowDecoder) Decode(content []byte, format Format, hasHeader bool) (iter.Seq2[RawRow, error], error) {
	switch format {
	case FormatCSV:
		return decodeCSV(content, hasHeader), nil
	case FormatXLSX:
		if d.Spreadsheet == nil {
			return nil, ErrSpreadsheetUnsupported
		}
		return d.Spreadsheet(content, hasHeader), nil
	default:
		return nil, ErrUnsupportedFormat
	}
}

func decodeCSV(content []byte, hasHeader bool) iter.Seq2[RawRow, error] {
	return func(yield func(RawRow, error) bool) {
		// BOMOverride switches to UTF-16 when a BOM says so and drops a UTF-8 BOM.
		decoded := transform.NewReader(bytes.NewReader(content), unicode.BOMOverride(unicode.UTF8.NewDecoder()))

		reader := csv.NewReader(decoded)
		reader.FieldsPerRecord = -1
		reader.LazyQuotes = true

		var headers []string
		if hasHeader {
			record, err := reader.Read()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				yield(nil, fmt.Errorf("%w: read csv header: %v", ErrUnreadableUpload, err))
				return
			}
			headers = record
			keep = firstColumns(headers)
		}

		for {
			record, err := reader.Read()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				yield(nil, fmt.Errorf("%w: read csv row: %v", ErrUnreadableUpload, err))
				return
			}

			if !yield(csvRow(headers, keep, record, hasHeader), nil) {
				return
			}
		}
	}
}

func csvRow(headers []string, keep []bool, record []string, hasHeader bool) RawRow {
	row := make(RawRow, len(record))
	for i, value := range record {
		if !hasHeader {
			row[strconv.Itoa(i)] = value
			continue
		}
		if i >= len(headers) {
			break
		}
		if keep[i] {
			row[headers[i]] = value
		}
	}
	return row
}

// firstColumns marks the header cells that are the leftmost with their folded name.
// Later columns folding to the same name are dropped, so the leftmost one wins.
func firstColumns(headers []string) []bool {
	keep := make([]bool, len(headers))
	seen := make(map[string]struct{}, len(headers))
	for i, header := range headers {
		key := foldHeader(header)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		keep[i] = true
	}
	return keep
}
