package tab

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// WriteCSV exports the table with a UTF-8 BOM, LF line endings and minimal
// quoting. Columns named in floatColumns render through PyFloat so integral
// ratings keep their .0, matching the reference exports.
func WriteCSV(path string, t *Table, floatColumns ...string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return err
	}
	if err := writeRecord(f, t.Columns); err != nil {
		return err
	}
	isFloat := make(map[string]bool, len(floatColumns))
	for _, c := range floatColumns {
		isFloat[c] = true
	}
	for _, r := range t.Rows {
		rec := make([]string, len(t.Columns))
		for i, c := range t.Columns {
			if isFloat[c] {
				if v, ok := Float64(r[c]); ok {
					rec[i] = PyFloat(v)
					continue
				}
			}
			rec[i] = CellString(r[c])
		}
		if err := writeRecord(f, rec); err != nil {
			return err
		}
	}
	return nil
}

func writeRecord(w io.Writer, rec []string) error {
	for i, field := range rec {
		if i > 0 {
			if _, err := io.WriteString(w, ","); err != nil {
				return err
			}
		}
		if strings.ContainsAny(field, ",\"\n\r") {
			escaped := strings.ReplaceAll(field, `"`, `""`)
			if _, err := io.WriteString(w, `"`+escaped+`"`); err != nil {
				return err
			}
		} else {
			if _, err := io.WriteString(w, field); err != nil {
				return err
			}
		}
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// ReadCSV loads a CSV file into a table of string cells. A leading BOM is
// tolerated and short records pad with empty strings.
func ReadCSV(path string) (*Table, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	b = bytes.TrimPrefix(b, []byte{0xEF, 0xBB, 0xBF})
	r := csv.NewReader(bytes.NewReader(b))
	r.FieldsPerRecord = -1
	headers, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, Schemaf("%s: no header row", path)
		}
		return nil, err
	}
	t := New(headers...)
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		row := make(Row, len(headers))
		for i, h := range headers {
			if i < len(rec) {
				row[h] = rec[i]
			} else {
				row[h] = ""
			}
		}
		t.Append(row)
	}
	return t, nil
}
