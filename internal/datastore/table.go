package datastore

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

// table is a header plus string rows, the common shape of CSV and XLSX input.
type table struct {
	header []string
	rows   [][]string
	// skipped counts rows that could not be parsed at all.
	skipped int
}

// column returns the index of name in the header, or -1. Matching ignores
// case and surrounding whitespace.
func (t *table) column(name string) int {
	for i, h := range t.header {
		if strings.EqualFold(strings.TrimSpace(h), name) {
			return i
		}
	}
	return -1
}

// requireColumns resolves every name or returns a DataLoadError naming the
// first one that is missing.
func (t *table) requireColumns(source string, names ...string) ([]int, error) {
	idx := make([]int, len(names))
	for i, n := range names {
		idx[i] = t.column(n)
		if idx[i] < 0 {
			return nil, &DataLoadError{Source: source, Column: n}
		}
	}
	return idx, nil
}

// field returns row[i] trimmed, or "" when the row is short.
func field(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// readCSV reads a delimited file with a header row. Malformed rows are
// counted and skipped; I/O errors abort.
func readCSV(ctx context.Context, r io.Reader) (*table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	t := &table{}
	first := true
	for {
		if ctx.Err() != nil {
			return nil, eris.Wrap(ctx.Err(), "csv: context cancelled")
		}

		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) && !first {
				t.skipped++
				continue
			}
			return nil, eris.Wrap(err, "csv: read row")
		}

		if first {
			first = false
			if len(record) > 0 {
				record[0] = strings.TrimPrefix(record[0], "\ufeff")
			}
			t.header = record
			continue
		}
		t.rows = append(t.rows, record)
	}

	if first {
		return nil, eris.New("csv: empty file")
	}
	return t, nil
}

// readXLSX reads the first sheet of a workbook, treating its first row as
// the header.
func readXLSX(ctx context.Context, path string) (*table, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "xlsx: open file")
	}
	if len(f.Sheets) == 0 {
		return nil, eris.New("xlsx: workbook has no sheets")
	}

	sheet := f.Sheets[0]
	t := &table{}
	for i, row := range sheet.Rows {
		if ctx.Err() != nil {
			return nil, eris.Wrap(ctx.Err(), "xlsx: context cancelled")
		}
		cells := make([]string, len(row.Cells))
		for j, cell := range row.Cells {
			cells[j] = cell.String()
		}
		if i == 0 {
			t.header = cells
			continue
		}
		t.rows = append(t.rows, cells)
	}

	if t.header == nil {
		return nil, eris.New("xlsx: empty sheet")
	}
	return t, nil
}
