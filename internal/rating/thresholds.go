// Package rating derives the five-tier rating scale from observed aggregate
// ratings and reclassifies unrecognized rating labels against it.
package rating

import (
	"restoflow/internal/tab"
)

// QualityOrder is the fixed ascending quality order of the canonical labels.
// Range iteration during classification follows this order, so when ranges
// overlap the lower-quality label wins.
var QualityOrder = []string{"Poor", "Average", "Good", "Very Good", "Excellent"}

// CategoryRange holds the observed aggregate-rating bounds of one canonical
// label. Bounds are inclusive.
type CategoryRange struct {
	Label string
	Min   float64
	Max   float64
	Range float64
}

// SkippedRecord is a record excluded from the analysis because its
// aggregate_rating could not be coerced to a number. The batch continues
// without it.
type SkippedRecord struct {
	Row tab.Row
	Err error
}

// Result carries the threshold table and the two disjoint reclassification
// partitions.
type Result struct {
	Ranges   []CategoryRange
	Mapped   *tab.Table
	Unmapped *tab.Table
	Skipped  []SkippedRecord
}

// ReclassColumns is the schema of the Mapped and Unmapped tables. Unmapped
// rows carry the NA marker in mapped_rating_text.
var ReclassColumns = []string{"rating_text", "aggregate_rating", "mapped_rating_text"}

// ThresholdColumns is the schema of the exported threshold table.
var ThresholdColumns = []string{"rating_text", "min", "max", "range"}

// Analyze partitions the table into canonical and non-canonical rating
// labels, computes per-label min/max bounds from the canonical records, and
// classifies each non-canonical record by inclusive containment in those
// bounds, first match in ascending quality order. Records whose rating is
// not numeric are skipped and collected, never fatal to the batch.
func Analyze(restaurants *tab.Table) (*Result, error) {
	if err := restaurants.RequireColumns("rating_text", "aggregate_rating"); err != nil {
		return nil, err
	}

	canonical := make(map[string]bool, len(QualityOrder))
	for _, l := range QualityOrder {
		canonical[l] = true
	}

	type bounds struct {
		min, max float64
		seen     bool
	}
	agg := make(map[string]*bounds, len(QualityOrder))
	var nonCanonical []tab.Row
	res := &Result{
		Mapped:   tab.New(ReclassColumns...),
		Unmapped: tab.New(ReclassColumns...),
	}

	for _, r := range restaurants.Rows {
		label, _ := tab.Text(r["rating_text"])
		if !canonical[label] {
			nonCanonical = append(nonCanonical, r)
			continue
		}
		v, ok := tab.Float64(r["aggregate_rating"])
		if !ok {
			res.Skipped = append(res.Skipped, SkippedRecord{
				Row: r,
				Err: &tab.ValueError{Column: "aggregate_rating", Value: r["aggregate_rating"]},
			})
			continue
		}
		b := agg[label]
		if b == nil {
			b = &bounds{min: v, max: v, seen: true}
			agg[label] = b
			continue
		}
		if v < b.min {
			b.min = v
		}
		if v > b.max {
			b.max = v
		}
	}

	// Labels with zero canonical records yield no range at all.
	for _, label := range QualityOrder {
		b := agg[label]
		if b == nil {
			continue
		}
		res.Ranges = append(res.Ranges, CategoryRange{
			Label: label,
			Min:   b.min,
			Max:   b.max,
			Range: b.max - b.min,
		})
	}

	for _, r := range nonCanonical {
		v, ok := tab.Float64(r["aggregate_rating"])
		if !ok {
			res.Skipped = append(res.Skipped, SkippedRecord{
				Row: r,
				Err: &tab.ValueError{Column: "aggregate_rating", Value: r["aggregate_rating"]},
			})
			continue
		}
		row := tab.Row{
			"rating_text":      r["rating_text"],
			"aggregate_rating": v,
		}
		if label, ok := classify(res.Ranges, v); ok {
			row["mapped_rating_text"] = label
			res.Mapped.Append(row)
		} else {
			row["mapped_rating_text"] = tab.NA
			res.Unmapped.Append(row)
		}
	}
	return res, nil
}

// ThresholdTable renders the ranges for export, rows already in ascending
// quality order.
func (r *Result) ThresholdTable() *tab.Table {
	out := tab.New(ThresholdColumns...)
	for _, cr := range r.Ranges {
		out.Append(tab.Row{
			"rating_text": cr.Label,
			"min":         cr.Min,
			"max":         cr.Max,
			"range":       cr.Range,
		})
	}
	return out
}

func classify(ranges []CategoryRange, v float64) (string, bool) {
	for _, cr := range ranges {
		if v >= cr.Min && v <= cr.Max {
			return cr.Label, true
		}
	}
	return "", false
}
