// Package feed turns the raw paginated restaurant feed into flat restaurant
// and event tables with a fixed schema.
package feed

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"restoflow/internal/tab"
)

// EventColumns is the fixed schema every flattened event carries, in export
// order. restaurant_res_id is the synthesized key back to the owning
// restaurant; photos keeps the raw photo wrapper list for the event export.
var EventColumns = []string{
	"event_id", "title", "description", "start_date", "end_date",
	"start_time", "end_time", "event_category", "photos", "restaurant_res_id",
}

var eventScalarFields = []string{
	"event_id", "title", "description", "start_date", "end_date",
	"start_time", "end_time", "event_category",
}

// ParsePages decodes one feed snapshot. Numbers decode as json.Number so
// restaurant ids survive without float rounding.
func ParsePages(data []byte) ([]any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var root any
	if err := dec.Decode(&root); err != nil {
		return nil, fmt.Errorf("decode feed: %w", err)
	}
	pages, ok := root.([]any)
	if !ok {
		return nil, tab.Schemaf("feed root is %T, want a sequence of pages", root)
	}
	return pages, nil
}

// Flatten walks page -> restaurant wrapper -> zomato_events and produces the
// two flat tables. Restaurant columns are the sorted union of source keys;
// duplicate restaurant ids keep the last occurrence so the id stays a unique
// key. Event rows always carry every column of EventColumns, absent source
// fields filled with the NA marker.
func Flatten(pages []any) (*tab.Table, *tab.Table, error) {
	restaurants := tab.New()
	events := tab.New(EventColumns...)
	columns := map[string]struct{}{}

	for pi, page := range pages {
		pm := tab.AsMap(page)
		if pm == nil {
			return nil, nil, tab.Schemaf("page %d is not a keyed structure", pi)
		}
		wrappersVal, ok := pm["restaurants"]
		if !ok {
			continue
		}
		wrappers, ok := wrappersVal.([]any)
		if !ok {
			return nil, nil, tab.Schemaf("page %d: restaurants is not a sequence", pi)
		}
		for wi, w := range wrappers {
			wm := tab.AsMap(w)
			if wm == nil {
				return nil, nil, tab.Schemaf("page %d entry %d: wrapper is not a keyed structure", pi, wi)
			}
			rm := map[string]any{}
			if rv, present := wm["restaurant"]; present {
				rm = tab.AsMap(rv)
				if rm == nil {
					return nil, nil, tab.Schemaf("page %d entry %d: restaurant is not a keyed structure", pi, wi)
				}
			}

			row := make(tab.Row, len(rm))
			for k, v := range rm {
				row[k] = v
				columns[k] = struct{}{}
			}
			restaurants.Append(row)

			if err := flattenEvents(events, rm, pi, wi); err != nil {
				return nil, nil, err
			}
		}
	}

	restaurants.Columns = sortedKeys(columns)
	dedupeByID(restaurants)
	return restaurants, events, nil
}

func flattenEvents(events *tab.Table, rm map[string]any, pi, wi int) error {
	raw, present := rm["zomato_events"]
	if !present {
		return nil
	}
	list, ok := raw.([]any)
	if !ok {
		return tab.Schemaf("page %d entry %d: zomato_events is not a sequence", pi, wi)
	}
	for _, item := range list {
		em := tab.AsMap(tab.AsMap(item)["event"])
		row := make(tab.Row, len(EventColumns))
		for _, f := range eventScalarFields {
			if v, ok := em[f]; ok && v != nil {
				row[f] = v
			} else {
				row[f] = tab.NA
			}
		}
		if photos, ok := em["photos"]; ok && photos != nil {
			row["photos"] = photos
		} else {
			row["photos"] = tab.NA
		}
		if id, ok := rm["id"]; ok && id != nil {
			row["restaurant_res_id"] = id
		} else {
			row["restaurant_res_id"] = tab.NA
		}
		events.Append(row)
	}
	return nil
}

// dedupeByID keeps the last row per non-empty restaurant id, preserving
// first-seen order. Rows without an id are kept as-is.
func dedupeByID(t *tab.Table) {
	lastByID := make(map[string]int, len(t.Rows))
	for i, r := range t.Rows {
		if k := tab.KeyString(r["id"]); k != "" {
			lastByID[k] = i
		}
	}
	out := make([]tab.Row, 0, len(t.Rows))
	for i, r := range t.Rows {
		k := tab.KeyString(r["id"])
		if k != "" && lastByID[k] != i {
			continue
		}
		out = append(out, r)
	}
	t.Rows = out
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
