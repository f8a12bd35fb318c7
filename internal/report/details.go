// Package report derives the restaurant- and event-facing exports from the
// polished tables.
package report

import (
	"time"

	"restoflow/internal/refdata"
	"restoflow/internal/tab"
)

const dateLayout = "2006-01-02"

// DetailColumns is the fixed restaurant detail export schema.
var DetailColumns = []string{
	"Restaurant Id", "Restaurant Name", "Country", "City",
	"User Rating Votes", "User Aggregate Rating", "Cuisines", "Event Date",
}

var detailSourceColumns = []string{
	"id", "name", "country_id", "city", "votes", "aggregate_rating", "cuisines",
}

// BuildRestaurantDetails keeps restaurants whose country code appears in the
// reference set, annotates the country name and the earliest event start
// date, and projects the fixed 8-column view. Restaurants with an unknown or
// unparseable country code are dropped, not errored.
func BuildRestaurantDetails(restaurants, events *tab.Table, countries refdata.Countries) (*tab.Table, error) {
	if len(countries) == 0 {
		return nil, &refdata.ReferenceDataError{Path: "countries", Reason: "reference set is empty"}
	}
	if err := restaurants.RequireColumns(detailSourceColumns...); err != nil {
		return nil, err
	}

	earliest := earliestEventDates(events)
	out := tab.New(DetailColumns...)
	for _, r := range restaurants.Rows {
		code, ok := tab.Int64(r["country_id"])
		if !ok {
			continue
		}
		country, ok := countries[code]
		if !ok {
			continue
		}

		row := tab.Row{
			"Restaurant Id":   r["id"],
			"Restaurant Name": r["name"],
			"Country":         country,
			"City":            r["city"],
			"User Rating Votes": r["votes"],
			"Cuisines":        r["cuisines"],
		}
		if f, ok := tab.Float64(r["aggregate_rating"]); ok {
			row["User Aggregate Rating"] = f
		} else {
			row["User Aggregate Rating"] = r["aggregate_rating"]
		}
		if d, ok := earliest[tab.KeyString(r["id"])]; ok {
			row["Event Date"] = d.Format(dateLayout)
		} else {
			row["Event Date"] = tab.NA
		}
		out.Append(row)
	}
	return out, nil
}

// earliestEventDates indexes the minimum parseable start_date per
// restaurant key. Unparseable dates sort last, so they never win over a
// parsed one; a restaurant whose events are all unparseable gets no entry.
func earliestEventDates(events *tab.Table) map[string]time.Time {
	out := make(map[string]time.Time)
	if events == nil {
		return out
	}
	for _, r := range events.Rows {
		key := tab.KeyString(r["restaurant_res_id"])
		if key == "" {
			continue
		}
		s, ok := tab.Text(r["start_date"])
		if !ok {
			continue
		}
		d, err := time.Parse(dateLayout, s)
		if err != nil {
			continue
		}
		if cur, exists := out[key]; !exists || d.Before(cur) {
			out[key] = d
		}
	}
	return out
}
