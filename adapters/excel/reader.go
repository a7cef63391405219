// Package excel loads tabular files into in-memory tables: xlsx workbooks
// through excelize and delimited text through encoding/csv. Cells come out
// as strings (empty cells as missing); semantic typing is left to inference.
package excel

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"goprofile/adapters/memtable"
	"goprofile/domain/core"
	"goprofile/internal/errors"
)

// ReadFile loads a table from a file, dispatching on the extension.
func ReadFile(path string) (*memtable.Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return ReadWorkbook(path)
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", path, err)
		}
		defer f.Close()
		return ReadCSV(f)
	default:
		return nil, errors.UnsupportedInput(fmt.Sprintf("unsupported file type %q", filepath.Ext(path)))
	}
}

// ReadWorkbook loads the first sheet of an xlsx workbook.
func ReadWorkbook(path string) (*memtable.Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, errors.UnsupportedInput("workbook has no sheets")
	}
	return ReadSheet(f, sheet)
}

// ReadSheet loads one sheet: the first row names the columns, every
// following row is data. Short rows are padded with missing cells.
func ReadSheet(f *excelize.File, sheet string) (*memtable.Table, error) {
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	return fromRows(rows)
}

// ReadCSV loads comma-separated data with a header row.
func ReadCSV(r io.Reader) (*memtable.Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return fromRows(rows)
}

func fromRows(rows [][]string) (*memtable.Table, error) {
	if len(rows) == 0 {
		return nil, core.ErrEmptyTable
	}
	header := rows[0]
	names := make([]string, len(header))
	for i, name := range header {
		name = strings.TrimSpace(name)
		if name == "" {
			name = fmt.Sprintf("column_%d", i+1)
		}
		names[i] = name
	}

	cells := make([][]any, len(names))
	for i := range cells {
		cells[i] = make([]any, 0, len(rows)-1)
	}
	for _, row := range rows[1:] {
		for i := range names {
			if i >= len(row) || strings.TrimSpace(row[i]) == "" {
				cells[i] = append(cells[i], nil)
				continue
			}
			cells[i] = append(cells[i], row[i])
		}
	}

	columns := make([]*memtable.Column, len(names))
	for i, name := range names {
		columns[i] = memtable.AnyColumn(name, cells[i])
	}
	return memtable.New(columns...)
}
