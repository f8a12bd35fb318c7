package feed

import (
	"testing"

	"github.com/stretchr/testify/require"

	"restoflow/internal/tab"
)

const sampleFeed = `[
  {
    "results_found": 2,
    "restaurants": [
      {
        "restaurant": {
          "id": "18649486",
          "name": "The Drunken Botanist",
          "cuisines": "Continental, Italian",
          "location": {"city": "Gurgaon", "country_id": 1, "latitude": "28.4189464923", "longitude": "77.0886040716"},
          "user_rating": {"aggregate_rating": "4.4", "rating_text": "Very Good", "votes": "1538"},
          "zomato_events": [
            {"event": {
              "event_id": 332812,
              "title": "Gin Fest",
              "start_date": "2019-03-15",
              "end_date": "2019-04-05",
              "photos": [{"photo": {"url": "https://cdn.example.com/a.jpg"}}]
            }},
            {"event": {"event_id": 332813, "title": "Quiz Night"}}
          ]
        }
      },
      {
        "restaurant": {
          "id": "308322",
          "name": "Hauz Khas Social",
          "location": {"city": "New Delhi", "country_id": 1}
        }
      }
    ]
  },
  {
    "restaurants": []
  }
]`

func TestFlattenSynthesizesForeignKeys(t *testing.T) {
	pages, err := ParsePages([]byte(sampleFeed))
	require.NoError(t, err)

	restaurants, events, err := Flatten(pages)
	require.NoError(t, err)

	require.Equal(t, 2, restaurants.Len())
	require.Equal(t, 2, events.Len())

	for _, ev := range events.Rows {
		require.Equal(t, "18649486", tab.KeyString(ev["restaurant_res_id"]))
	}
	require.Equal(t, "Gin Fest", events.Rows[0]["title"])
	require.Equal(t, "2019-03-15", events.Rows[0]["start_date"])
}

func TestFlattenFillsAbsentEventFields(t *testing.T) {
	pages, err := ParsePages([]byte(sampleFeed))
	require.NoError(t, err)
	_, events, err := Flatten(pages)
	require.NoError(t, err)

	sparse := events.Rows[1]
	for _, col := range EventColumns {
		require.Contains(t, sparse, col, "every event row carries the full schema")
	}
	require.Equal(t, tab.NA, sparse["start_date"])
	require.Equal(t, tab.NA, sparse["photos"])
	require.Equal(t, "Quiz Night", sparse["title"])
}

func TestFlattenKeepsLastDuplicateID(t *testing.T) {
	pages := []any{
		map[string]any{"restaurants": []any{
			map[string]any{"restaurant": map[string]any{"id": "1", "name": "stale"}},
			map[string]any{"restaurant": map[string]any{"id": "2", "name": "keep"}},
			map[string]any{"restaurant": map[string]any{"id": "1", "name": "fresh"}},
		}},
	}
	restaurants, _, err := Flatten(pages)
	require.NoError(t, err)
	require.Equal(t, 2, restaurants.Len())

	byID := map[string]string{}
	for _, r := range restaurants.Rows {
		byID[tab.KeyString(r["id"])] = r["name"].(string)
	}
	require.Equal(t, "fresh", byID["1"])
	require.Equal(t, "keep", byID["2"])
}

func TestFlattenSchemaErrors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "root not a sequence", raw: `{"restaurants": []}`},
		{name: "restaurants not a sequence", raw: `[{"restaurants": {"bad": true}}]`},
		{name: "restaurant not keyed", raw: `[{"restaurants": [{"restaurant": [1, 2]}]}]`},
		{name: "events not a sequence", raw: `[{"restaurants": [{"restaurant": {"id": "1", "zomato_events": "oops"}}]}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pages, err := ParsePages([]byte(tt.raw))
			if err == nil {
				_, _, err = Flatten(pages)
			}
			var schemaErr *tab.SchemaError
			require.ErrorAs(t, err, &schemaErr)
		})
	}
}

func TestParsePagesRejectsMalformedJSON(t *testing.T) {
	_, err := ParsePages([]byte(`[{"restaurants": `))
	require.Error(t, err)
}
