// Package tab holds the tabular core shared by every pipeline stage: an
// ordered column schema over map-backed rows, value coercion helpers, CSV and
// SQLite export writers, and the error taxonomy the stages surface.
package tab

// NA is the marker written into any absent or unparseable cell. After the
// polish stage every column exists on every row, so downstream code branches
// on equality with NA, never on key presence.
const NA = "NA"

// Row is one record keyed by column name.
type Row map[string]any

// Table is an ordered set of columns over rows. Stages never mutate their
// input table; they return a new one.
type Table struct {
	Columns []string
	Rows    []Row
}

func New(columns ...string) *Table {
	return &Table{Columns: append([]string(nil), columns...)}
}

func (t *Table) Len() int { return len(t.Rows) }

func (t *Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// AddColumn appends the column to the schema if it is not already present.
func (t *Table) AddColumn(name string) {
	if !t.HasColumn(name) {
		t.Columns = append(t.Columns, name)
	}
}

func (t *Table) Append(r Row) {
	t.Rows = append(t.Rows, r)
}

// Clone copies the schema and every row map. Cell values are shared; rows
// holding nested maps must not be edited in place after cloning.
func (t *Table) Clone() *Table {
	out := New(t.Columns...)
	out.Rows = make([]Row, 0, len(t.Rows))
	for _, r := range t.Rows {
		cp := make(Row, len(r))
		for k, v := range r {
			cp[k] = v
		}
		out.Rows = append(out.Rows, cp)
	}
	return out
}

// Project returns a new table restricted to the given columns, in the given
// order. Cells absent on a row come through as nil.
func (t *Table) Project(columns ...string) *Table {
	out := New(columns...)
	out.Rows = make([]Row, 0, len(t.Rows))
	for _, r := range t.Rows {
		row := make(Row, len(columns))
		for _, c := range columns {
			row[c] = r[c]
		}
		out.Rows = append(out.Rows, row)
	}
	return out
}

// RequireColumns reports a SchemaError naming the first missing column.
func (t *Table) RequireColumns(columns ...string) error {
	for _, c := range columns {
		if !t.HasColumn(c) {
			return Schemaf("required column %q is missing", c)
		}
	}
	return nil
}
