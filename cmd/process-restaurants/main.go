package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"restoflow/internal/feed"
	"restoflow/internal/fetch"
	"restoflow/internal/logging"
	"restoflow/internal/rating"
	"restoflow/internal/refdata"
	"restoflow/internal/report"
	"restoflow/internal/tab"
)

const defaultFeedURL = "https://raw.githubusercontent.com/Papagoat/brain-assessment/main/restaurant_data.json"

func main() {
	_ = godotenv.Load()

	var (
		inputPath    = flag.String("input", "", "Feed snapshot JSON file (fetched from -url when empty)")
		feedURL      = flag.String("url", envOr("FEED_URL", defaultFeedURL), "Feed URL used when no -input file is given")
		countryPath  = flag.String("country-codes", envOr("COUNTRY_CODES_PATH", "data/Country-Code.xlsx"), "Country-code reference table (.xlsx or .csv)")
		outDir       = flag.String("out-dir", envOr("OUT_DIR", "output"), "Output directory")
		sqlitePath   = flag.String("sqlite", "", "SQLite artifact path (default <out-dir>/restaurant_exports.sqlite)")
		year         = flag.Int("year", 2019, "Year of the event window")
		month        = flag.Int("month", 4, "Month of the event window (1-12)")
		fetchTimeout = flag.Duration("timeout", 30*time.Second, "HTTP timeout for the feed fetch")
		debug        = flag.Bool("debug", false, "Enable debug logging")
	)
	flag.Parse()

	logger, err := logging.Setup("process-restaurants", *debug, "")
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger setup: %v\n", err)
		os.Exit(1)
	}
	logger = logger.With("run_id", uuid.NewString())

	outSQLite := *sqlitePath
	if outSQLite == "" {
		outSQLite = filepath.Join(*outDir, "restaurant_exports.sqlite")
	}

	data, err := loadFeed(*inputPath, *feedURL, *fetchTimeout)
	if err != nil {
		logger.Error("load feed", "error", err)
		os.Exit(1)
	}
	pages, err := feed.ParsePages(data)
	if err != nil {
		logger.Error("parse feed", "error", err)
		os.Exit(1)
	}
	restaurants, events, err := feed.Flatten(pages)
	if err != nil {
		logger.Error("flatten feed", "error", err)
		os.Exit(1)
	}
	polished := feed.Polish(restaurants)
	logger.Info("feed flattened",
		"pages", len(pages),
		"restaurants", polished.Len(),
		"events", events.Len(),
		"restaurant_columns", len(polished.Columns),
	)

	failures := 0
	artifact := make([]tab.ArtifactTable, 0, 3)

	details := buildDetails(logger, polished, events, *countryPath, *outDir, &failures)
	if details != nil {
		artifact = append(artifact, tab.ArtifactTable{
			Name:    "restaurant_details",
			Table:   details,
			Types:   map[string]string{"User Aggregate Rating": "REAL"},
			Indexes: []string{"Restaurant Id"},
		})
	}

	monthly := buildMonthlyEvents(logger, events, polished, *year, *month, *outDir, &failures)
	if monthly != nil {
		artifact = append(artifact, tab.ArtifactTable{
			Name:    "monthly_events",
			Table:   monthly,
			Indexes: []string{"event_id", "restaurant_res_id"},
		})
	}

	thresholds := buildRatingExports(logger, polished, *outDir, &failures)
	if thresholds != nil {
		artifact = append(artifact, tab.ArtifactTable{
			Name:  "rating_thresholds",
			Table: thresholds,
			Types: map[string]string{"min": "REAL", "max": "REAL", "range": "REAL"},
		})
	}

	if len(artifact) > 0 {
		if err := tab.WriteSQLite(outSQLite, artifact); err != nil {
			logger.Error("write sqlite artifact", "error", err)
			failures++
		} else {
			logger.Info("sqlite artifact written", "path", outSQLite, "tables", len(artifact))
		}
	}

	if failures > 0 {
		logger.Error("run finished with failed exports", "failed", failures)
		os.Exit(1)
	}
	logger.Info("run finished")
}

func loadFeed(path, url string, timeout time.Duration) ([]byte, error) {
	if path != "" {
		return os.ReadFile(path)
	}
	client := fetch.New(timeout)
	return client.GetBytes(context.Background(), url)
}

func buildDetails(logger *slog.Logger, polished, events *tab.Table, countryPath, outDir string, failures *int) *tab.Table {
	countries, err := refdata.LoadCountries(countryPath)
	if err != nil {
		logger.Error("load country codes", "error", err)
		*failures++
		return nil
	}
	details, err := report.BuildRestaurantDetails(polished, events, countries)
	if err != nil {
		logger.Error("restaurant details", "error", err)
		*failures++
		return nil
	}
	out := filepath.Join(outDir, "processed_restaurant_data.csv")
	if err := tab.WriteCSV(out, details, "User Aggregate Rating"); err != nil {
		logger.Error("write restaurant details csv", "error", err)
		*failures++
		return nil
	}
	logger.Info("restaurant details written", "path", out, "rows", details.Len())
	return details
}

func buildMonthlyEvents(logger *slog.Logger, events, polished *tab.Table, year, month int, outDir string, failures *int) *tab.Table {
	monthly, err := report.FilterEventsByMonth(events, polished, year, month)
	if err != nil {
		logger.Error("event window filter", "year", year, "month", month, "error", err)
		*failures++
		return nil
	}
	out := filepath.Join(outDir, "restaurant_events.csv")
	if err := tab.WriteCSV(out, monthly); err != nil {
		logger.Error("write events csv", "error", err)
		*failures++
		return nil
	}
	logger.Info("monthly events written", "path", out, "rows", monthly.Len())
	return monthly
}

func buildRatingExports(logger *slog.Logger, polished *tab.Table, outDir string, failures *int) *tab.Table {
	res, err := rating.Analyze(polished)
	if err != nil {
		logger.Error("rating analysis", "error", err)
		*failures++
		return nil
	}
	for _, s := range res.Skipped {
		logger.Warn("rating record skipped", "rating_text", s.Row["rating_text"], "error", s.Err)
	}

	thresholds := res.ThresholdTable()
	exports := []struct {
		name      string
		table     *tab.Table
		floatCols []string
	}{
		{"rating_thresholds.csv", thresholds, []string{"min", "max", "range"}},
		{"restaurant_ratings_mapped.csv", res.Mapped, []string{"aggregate_rating"}},
		{"restaurant_ratings_unmapped.csv", res.Unmapped, []string{"aggregate_rating"}},
	}
	for _, e := range exports {
		out := filepath.Join(outDir, e.name)
		if err := tab.WriteCSV(out, e.table, e.floatCols...); err != nil {
			logger.Error("write rating csv", "path", out, "error", err)
			*failures++
			return nil
		}
	}
	logger.Info("rating exports written",
		"categories", len(res.Ranges),
		"mapped", res.Mapped.Len(),
		"unmapped", res.Unmapped.Len(),
		"skipped", len(res.Skipped),
	)
	return thresholds
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
