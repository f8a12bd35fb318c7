// Package carpark flattens the carpark availability API payload, merges it
// with the HDB carpark metadata table and applies the freshness filter.
package carpark

import (
	"strings"
	"time"

	"restoflow/internal/tab"
)

// Availability mirrors the carpark availability API payload.
type Availability struct {
	Items []Item `json:"items"`
}

type Item struct {
	Timestamp   string    `json:"timestamp"`
	CarparkData []Carpark `json:"carpark_data"`
}

type Carpark struct {
	CarparkInfo    []LotInfo `json:"carpark_info"`
	CarparkNumber  string    `json:"carpark_number"`
	UpdateDatetime string    `json:"update_datetime"`
}

type LotInfo struct {
	TotalLots     string `json:"total_lots"`
	LotsAvailable string `json:"lots_available"`
	LotType       string `json:"lot_type"`
}

// Columns is the flattened availability schema.
var Columns = []string{
	"carpark_number", "total_lots", "lots_available", "lot_type", "update_datetime",
}

// FreshnessWindow is how far back an update timestamp may lie and still
// count as current.
const FreshnessWindow = 15 * time.Minute

const updateLayout = "2006-01-02T15:04:05"

// Flatten produces one row per lot-type entry: a carpark reporting several
// lot types yields several rows. Lot counts that parse as integers are
// stored numeric; anything else keeps its raw text and is dropped later by
// the numeric filters in Clean.
func Flatten(av *Availability) *tab.Table {
	out := tab.New(Columns...)
	if av == nil {
		return out
	}
	for _, item := range av.Items {
		for _, cp := range item.CarparkData {
			for _, info := range cp.CarparkInfo {
				row := tab.Row{
					"carpark_number":  cp.CarparkNumber,
					"total_lots":      numericOrRaw(info.TotalLots),
					"lots_available":  numericOrRaw(info.LotsAvailable),
					"lot_type":        info.LotType,
					"update_datetime": cp.UpdateDatetime,
				}
				out.Append(row)
			}
		}
	}
	return out
}

func numericOrRaw(s string) any {
	if i, ok := tab.Int64(s); ok {
		return i
	}
	return s
}

// Clean left-joins the HDB metadata on carpark number and keeps only rows
// that joined, carry non-negative numeric lot counts, and were updated
// within the freshness window ending at now. The join key column of the
// metadata table is not copied into the result.
func Clean(av, hdb *tab.Table, now time.Time) (*tab.Table, error) {
	if av == nil || av.Len() == 0 {
		return nil, &tab.EmptyInputError{Name: "carpark availability"}
	}
	if err := hdb.RequireColumns("car_park_no"); err != nil {
		return nil, err
	}

	meta := make(map[string]tab.Row, hdb.Len())
	for _, r := range hdb.Rows {
		if k, ok := tab.Text(r["car_park_no"]); ok {
			meta[strings.ToUpper(k)] = r
		}
	}

	out := tab.New(Columns...)
	for _, c := range hdb.Columns {
		if c != "car_park_no" {
			out.AddColumn(c)
		}
	}

	cutoff := now.Add(-FreshnessWindow)
	for _, r := range av.Rows {
		number, ok := tab.Text(r["carpark_number"])
		if !ok {
			continue
		}
		info, ok := meta[strings.ToUpper(number)]
		if !ok {
			continue
		}
		total, ok := tab.Int64(r["total_lots"])
		if !ok || total < 0 {
			continue
		}
		avail, ok := tab.Int64(r["lots_available"])
		if !ok || avail < 0 {
			continue
		}
		updatedStr, ok := tab.Text(r["update_datetime"])
		if !ok {
			continue
		}
		updated, err := time.ParseInLocation(updateLayout, updatedStr, now.Location())
		if err != nil {
			continue
		}
		if updated.After(now) || updated.Before(cutoff) {
			continue
		}

		row := tab.Row{
			"carpark_number":  number,
			"total_lots":      total,
			"lots_available":  avail,
			"lot_type":        r["lot_type"],
			"update_datetime": updatedStr,
		}
		for k, v := range info {
			if k == "car_park_no" {
				continue
			}
			row[k] = v
		}
		out.Append(row)
	}
	return out, nil
}

// Search returns the rows matching the carpark number, case-insensitively.
func Search(t *tab.Table, number string) *tab.Table {
	out := tab.New(t.Columns...)
	want := strings.ToUpper(strings.TrimSpace(number))
	for _, r := range t.Rows {
		if got, ok := tab.Text(r["carpark_number"]); ok && strings.ToUpper(got) == want {
			out.Append(r)
		}
	}
	return out
}
