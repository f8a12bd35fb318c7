// Package refdata loads the reference tables the pipeline joins against.
package refdata

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"restoflow/internal/tab"
)

// Required columns of the country-code reference table.
const (
	CodeColumn = "Country Code"
	NameColumn = "Country"
)

// Countries maps a country code to its country name.
type Countries map[int64]string

// ReferenceDataError reports a reference table that is missing, malformed or
// empty. It is fatal to the component that needed the table.
type ReferenceDataError struct {
	Path   string
	Reason string
	Err    error
}

func (e *ReferenceDataError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("reference data %s: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("reference data %s: %s", e.Path, e.Reason)
}

func (e *ReferenceDataError) Unwrap() error { return e.Err }

// LoadCountries reads the country-code reference set from a .xlsx or .csv
// file. Rows whose code cell is not an integer are skipped; a table that
// yields zero usable rows is an error, never a silently empty set.
func LoadCountries(path string) (Countries, error) {
	var (
		rows [][]string
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		rows, err = readXLSX(path)
	default:
		rows, err = readCSVRows(path)
	}
	if err != nil {
		return nil, err
	}
	return buildCountries(path, rows)
}

func readXLSX(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, &ReferenceDataError{Path: path, Reason: "cannot open workbook", Err: err}
	}
	defer f.Close()
	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, &ReferenceDataError{Path: path, Reason: "cannot read sheet " + sheet, Err: err}
	}
	return rows, nil
}

func readCSVRows(path string) ([][]string, error) {
	t, err := tab.ReadCSV(path)
	if err != nil {
		return nil, &ReferenceDataError{Path: path, Reason: "cannot read csv", Err: err}
	}
	rows := make([][]string, 0, t.Len()+1)
	rows = append(rows, t.Columns)
	for _, r := range t.Rows {
		rec := make([]string, len(t.Columns))
		for i, c := range t.Columns {
			rec[i] = tab.CellString(r[c])
		}
		rows = append(rows, rec)
	}
	return rows, nil
}

func buildCountries(path string, rows [][]string) (Countries, error) {
	if len(rows) == 0 {
		return nil, &ReferenceDataError{Path: path, Reason: "table is empty"}
	}
	codeIdx, nameIdx := -1, -1
	for i, h := range rows[0] {
		switch strings.TrimSpace(h) {
		case CodeColumn:
			codeIdx = i
		case NameColumn:
			nameIdx = i
		}
	}
	if codeIdx < 0 || nameIdx < 0 {
		return nil, &ReferenceDataError{
			Path:   path,
			Reason: fmt.Sprintf("required columns %q and %q not found", CodeColumn, NameColumn),
		}
	}

	out := make(Countries)
	for _, rec := range rows[1:] {
		if codeIdx >= len(rec) || nameIdx >= len(rec) {
			continue
		}
		code, ok := tab.Int64(rec[codeIdx])
		if !ok {
			continue
		}
		name, ok := tab.Text(rec[nameIdx])
		if !ok {
			continue
		}
		out[code] = name
	}
	if len(out) == 0 {
		return nil, &ReferenceDataError{Path: path, Reason: "no usable rows"}
	}
	return out, nil
}
