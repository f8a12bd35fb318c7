package tab

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

// ArtifactTable describes one table of the SQLite export artifact. Types maps
// column names to SQLite column types; anything unmapped is TEXT. Indexes
// lists columns to index after the load.
type ArtifactTable struct {
	Name    string
	Table   *Table
	Types   map[string]string
	Indexes []string
}

// WriteSQLite rebuilds the artifact file from scratch and loads every table
// through a prepared insert. The artifact is write-only output; nothing in
// the pipeline reads it back.
func WriteSQLite(path string, tables []ArtifactTable) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	_ = os.Remove(path)
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return err
	}
	defer db.Close()

	for _, at := range tables {
		if err := writeArtifactTable(db, at); err != nil {
			return fmt.Errorf("sqlite table %s: %w", at.Name, err)
		}
	}
	return nil
}

func writeArtifactTable(db *sql.DB, at ArtifactTable) error {
	cols := at.Table.Columns
	defs := make([]string, 0, len(cols))
	for _, c := range cols {
		t := at.Types[c]
		if t == "" {
			t = "TEXT"
		}
		defs = append(defs, fmt.Sprintf("%q %s", c, t))
	}
	if _, err := db.Exec(fmt.Sprintf("DROP TABLE IF EXISTS %q", at.Name)); err != nil {
		return err
	}
	if _, err := db.Exec(fmt.Sprintf("CREATE TABLE %q (%s)", at.Name, strings.Join(defs, ","))); err != nil {
		return err
	}

	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = fmt.Sprintf("%q", c)
	}
	placeholders := strings.TrimRight(strings.Repeat("?,", len(cols)), ",")
	stmt, err := db.Prepare(fmt.Sprintf("INSERT INTO %q (%s) VALUES (%s)", at.Name, strings.Join(quoted, ","), placeholders))
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range at.Table.Rows {
		args := make([]any, 0, len(cols))
		for _, c := range cols {
			args = append(args, sqliteValue(r[c]))
		}
		if _, err := stmt.Exec(args...); err != nil {
			return err
		}
	}

	for _, col := range at.Indexes {
		idx := fmt.Sprintf("CREATE INDEX IF NOT EXISTS %q ON %q(%q)", "idx_"+at.Name+"_"+col, at.Name, col)
		if _, err := db.Exec(idx); err != nil {
			return err
		}
	}
	return nil
}

func sqliteValue(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case bool:
		if t {
			return 1
		}
		return 0
	default:
		return t
	}
}
