package report

import (
	"fmt"
	"strings"
	"time"

	"restoflow/internal/tab"
)

// EventExportColumns is the fixed monthly event export schema.
var EventExportColumns = []string{
	"event_id", "restaurant_res_id", "restaurant_name", "photo_url",
	"title", "start_date", "end_date",
}

// MonthWindow returns the inclusive [first day, last day] of the month.
// December rolls over into next-year January when computing the last day.
func MonthWindow(year, month int) (time.Time, time.Time, error) {
	if month < 1 || month > 12 {
		return time.Time{}, time.Time{}, fmt.Errorf("month %d out of range 1..12", month)
	}
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	return first, last, nil
}

// FilterEventsByMonth keeps events whose [start_date, end_date] interval
// overlaps the month window — an overlap test, not containment, so an event
// spanning several months appears in each of them. Events with an
// unparseable start or end date never satisfy the overlap and are silently
// excluded. The result joins back the owning restaurant's name and flattens
// the photo URL list.
func FilterEventsByMonth(events, restaurants *tab.Table, year, month int) (*tab.Table, error) {
	if events == nil || events.Len() == 0 {
		return nil, &tab.EmptyInputError{Name: "events"}
	}
	if restaurants == nil || restaurants.Len() == 0 {
		return nil, &tab.EmptyInputError{Name: "restaurants"}
	}
	first, last, err := MonthWindow(year, month)
	if err != nil {
		return nil, err
	}

	names := make(map[string]any, restaurants.Len())
	for _, r := range restaurants.Rows {
		if k := tab.KeyString(r["id"]); k != "" {
			names[k] = r["name"]
		}
	}

	out := tab.New(EventExportColumns...)
	for _, r := range events.Rows {
		start, ok := parseDate(r["start_date"])
		if !ok {
			continue
		}
		end, ok := parseDate(r["end_date"])
		if !ok {
			continue
		}
		if start.After(last) || end.Before(first) {
			continue
		}

		row := tab.Row{
			"event_id":          r["event_id"],
			"restaurant_res_id": r["restaurant_res_id"],
			"restaurant_name":   tab.NA,
			"photo_url":         photoURLs(r["photos"]),
			"title":             r["title"],
			"start_date":        start.Format(dateLayout),
			"end_date":          end.Format(dateLayout),
		}
		if name, ok := names[tab.KeyString(r["restaurant_res_id"])]; ok && !tab.Missing(name) {
			row["restaurant_name"] = name
		}
		out.Append(row)
	}
	if out.Len() == 0 {
		return nil, &tab.NoMatchError{Msg: fmt.Sprintf("no events overlap %04d-%02d", year, month)}
	}
	return out, nil
}

func parseDate(v any) (time.Time, bool) {
	s, ok := tab.Text(v)
	if !ok {
		return time.Time{}, false
	}
	d, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

// photoURLs joins every photo.url of the wrapper list with ", ". A missing
// or empty list renders as the NA marker; a wrapper without a url
// contributes NA to the join.
func photoURLs(v any) string {
	list := tab.AsSlice(v)
	if len(list) == 0 {
		return tab.NA
	}
	parts := make([]string, 0, len(list))
	for _, item := range list {
		url, ok := tab.Text(tab.AsMap(tab.AsMap(item)["photo"])["url"])
		if !ok {
			url = tab.NA
		}
		parts = append(parts, url)
	}
	return strings.Join(parts, ", ")
}
