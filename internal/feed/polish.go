package feed

import "restoflow/internal/tab"

// EmbeddedColumns names the two embedded-object columns the polisher expands
// into top-level fields.
var EmbeddedColumns = []string{"location", "user_rating"}

// Polish expands the known embedded blocks and then fills every remaining
// nil cell with the NA marker. Expansion must run before the fill: filling
// first would turn whole blocks into NA scalars and lose their sub-fields.
// Polishing an already-polished table is a no-op.
func Polish(t *tab.Table) *tab.Table {
	out := t.Clone()
	for _, col := range EmbeddedColumns {
		out = expandEmbedded(out, col)
	}
	return fillNA(out)
}

// expandEmbedded lifts the sub-fields of one map-valued column to top level,
// removing the original column. The expanded schema is the sorted union of
// sub-fields across all rows; a sub-field whose name collides with an
// existing populated column does not overwrite it.
func expandEmbedded(t *tab.Table, col string) *tab.Table {
	if !t.HasColumn(col) {
		return t
	}
	subs := map[string]struct{}{}
	for _, r := range t.Rows {
		for k := range tab.AsMap(r[col]) {
			subs[k] = struct{}{}
		}
	}
	subCols := sortedKeys(subs)

	out := tab.New()
	for _, c := range t.Columns {
		if c != col {
			out.AddColumn(c)
		}
	}
	for _, c := range subCols {
		out.AddColumn(c)
	}

	for _, r := range t.Rows {
		row := make(tab.Row, len(r)+len(subCols))
		for k, v := range r {
			if k != col {
				row[k] = v
			}
		}
		for _, k := range subCols {
			v, ok := tab.AsMap(r[col])[k]
			if !ok {
				continue
			}
			if existing, exists := row[k]; exists && existing != nil {
				continue
			}
			row[k] = v
		}
		out.Append(row)
	}
	return out
}

func fillNA(t *tab.Table) *tab.Table {
	out := tab.New(t.Columns...)
	for _, r := range t.Rows {
		row := make(tab.Row, len(t.Columns))
		for k, v := range r {
			row[k] = v
		}
		for _, c := range t.Columns {
			if row[c] == nil {
				row[c] = tab.NA
			}
		}
		out.Append(row)
	}
	return out
}
