package carpark

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"restoflow/internal/tab"
)

var testNow = time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

func stamp(d time.Duration) string {
	return testNow.Add(d).Format(updateLayout)
}

func availabilityFixture() *Availability {
	return &Availability{Items: []Item{{
		Timestamp: stamp(0),
		CarparkData: []Carpark{
			{
				CarparkNumber:  "A12",
				UpdateDatetime: stamp(-5 * time.Minute),
				CarparkInfo: []LotInfo{
					{TotalLots: "100", LotsAvailable: "42", LotType: "C"},
					{TotalLots: "20", LotsAvailable: "3", LotType: "M"},
				},
			},
			{
				CarparkNumber:  "B9",
				UpdateDatetime: stamp(-40 * time.Minute),
				CarparkInfo: []LotInfo{
					{TotalLots: "50", LotsAvailable: "10", LotType: "C"},
				},
			},
			{
				CarparkNumber:  "C3",
				UpdateDatetime: stamp(-2 * time.Minute),
				CarparkInfo: []LotInfo{
					{TotalLots: "80", LotsAvailable: "-4", LotType: "C"},
				},
			},
			{
				CarparkNumber:  "ZZ1",
				UpdateDatetime: stamp(-1 * time.Minute),
				CarparkInfo: []LotInfo{
					{TotalLots: "30", LotsAvailable: "12", LotType: "C"},
				},
			},
		},
	}}}
}

func hdbFixture() *tab.Table {
	t := tab.New("car_park_no", "address", "car_park_type")
	t.Append(tab.Row{"car_park_no": "a12", "address": "1 Main Rd", "car_park_type": "SURFACE"})
	t.Append(tab.Row{"car_park_no": "B9", "address": "9 Side St", "car_park_type": "MULTI-STOREY"})
	t.Append(tab.Row{"car_park_no": "C3", "address": "3 Hill Ave", "car_park_type": "SURFACE"})
	return t
}

func TestFlattenOneRowPerLotType(t *testing.T) {
	flat := Flatten(availabilityFixture())
	require.Equal(t, Columns, flat.Columns)
	require.Equal(t, 5, flat.Len())

	// A12 reports two lot types and therefore owns two rows.
	require.Equal(t, "A12", flat.Rows[0]["carpark_number"])
	require.Equal(t, int64(100), flat.Rows[0]["total_lots"])
	require.Equal(t, "C", flat.Rows[0]["lot_type"])
	require.Equal(t, "A12", flat.Rows[1]["carpark_number"])
	require.Equal(t, "M", flat.Rows[1]["lot_type"])
}

func TestFlattenKeepsRawNonNumericCounts(t *testing.T) {
	av := &Availability{Items: []Item{{CarparkData: []Carpark{{
		CarparkNumber:  "X1",
		UpdateDatetime: stamp(0),
		CarparkInfo:    []LotInfo{{TotalLots: "n/a", LotsAvailable: "7", LotType: "C"}},
	}}}}}
	flat := Flatten(av)
	require.Equal(t, 1, flat.Len())
	require.Equal(t, "n/a", flat.Rows[0]["total_lots"])
	require.Equal(t, int64(7), flat.Rows[0]["lots_available"])
}

func TestFlattenNil(t *testing.T) {
	flat := Flatten(nil)
	require.Equal(t, 0, flat.Len())
	require.Equal(t, Columns, flat.Columns)
}

func TestCleanJoinsAndFilters(t *testing.T) {
	flat := Flatten(availabilityFixture())
	clean, err := Clean(flat, hdbFixture(), testNow)
	require.NoError(t, err)

	// B9 is stale, C3 reports a negative count, ZZ1 has no metadata row.
	require.Equal(t, 2, clean.Len())
	for _, r := range clean.Rows {
		require.Equal(t, "A12", r["carpark_number"])
		require.Equal(t, "1 Main Rd", r["address"])
		require.Equal(t, "SURFACE", r["car_park_type"])
	}
	require.NotContains(t, clean.Columns, "car_park_no")
	require.Contains(t, clean.Columns, "address")
}

func TestCleanRejectsFutureTimestamps(t *testing.T) {
	av := &Availability{Items: []Item{{CarparkData: []Carpark{{
		CarparkNumber:  "A12",
		UpdateDatetime: stamp(2 * time.Minute),
		CarparkInfo:    []LotInfo{{TotalLots: "10", LotsAvailable: "5", LotType: "C"}},
	}}}}}
	clean, err := Clean(Flatten(av), hdbFixture(), testNow)
	require.NoError(t, err)
	require.Equal(t, 0, clean.Len())
}

func TestCleanEmptyAvailability(t *testing.T) {
	_, err := Clean(tab.New(Columns...), hdbFixture(), testNow)
	var emptyErr *tab.EmptyInputError
	require.ErrorAs(t, err, &emptyErr)
}

func TestCleanRequiresJoinColumn(t *testing.T) {
	hdb := tab.New("address")
	hdb.Append(tab.Row{"address": "somewhere"})
	_, err := Clean(Flatten(availabilityFixture()), hdb, testNow)
	var schemaErr *tab.SchemaError
	require.ErrorAs(t, err, &schemaErr)
}

func TestSearchIsCaseInsensitive(t *testing.T) {
	flat := Flatten(availabilityFixture())
	clean, err := Clean(flat, hdbFixture(), testNow)
	require.NoError(t, err)

	hits := Search(clean, " a12 ")
	require.Equal(t, 2, hits.Len())
	require.Equal(t, clean.Columns, hits.Columns)

	require.Equal(t, 0, Search(clean, "B9").Len())
}
