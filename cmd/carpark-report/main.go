package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"restoflow/internal/carpark"
	"restoflow/internal/fetch"
	"restoflow/internal/logging"
	"restoflow/internal/tab"
)

const defaultAPIURL = "https://api.data.gov.sg/v1/transport/carpark-availability"

func main() {
	_ = godotenv.Load()

	var (
		apiURL    = flag.String("url", envOr("CARPARK_API_URL", defaultAPIURL), "Carpark availability API URL")
		inputPath = flag.String("input", "", "Availability snapshot JSON file (fetched from -url when empty)")
		hdbPath   = flag.String("hdb-info", envOr("HDB_INFO_PATH", "data/hdb-carpark-information.csv"), "HDB carpark metadata CSV")
		outPath   = flag.String("out", "output/carpark_availability.csv", "Report output path")
		search    = flag.String("search", "", "Optional carpark number to look up in the cleaned report")
		timeout   = flag.Duration("timeout", 10*time.Second, "HTTP timeout")
		debug     = flag.Bool("debug", false, "Enable debug logging")
	)
	flag.Parse()

	logger, err := logging.Setup("carpark-report", *debug, "")
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger setup: %v\n", err)
		os.Exit(1)
	}
	logger = logger.With("run_id", uuid.NewString())

	av, err := loadAvailability(*inputPath, *apiURL, *timeout)
	if err != nil {
		logger.Error("load availability", "error", err)
		os.Exit(1)
	}
	flat := carpark.Flatten(av)

	hdb, err := tab.ReadCSV(*hdbPath)
	if err != nil {
		logger.Error("load hdb metadata", "path", *hdbPath, "error", err)
		os.Exit(1)
	}

	cleaned, err := carpark.Clean(flat, hdb, time.Now())
	if err != nil {
		logger.Error("clean carpark data", "error", err)
		os.Exit(1)
	}
	logger.Info("carpark data cleaned", "raw_rows", flat.Len(), "fresh_rows", cleaned.Len())

	if err := tab.WriteCSV(*outPath, cleaned); err != nil {
		logger.Error("write report", "path", *outPath, "error", err)
		os.Exit(1)
	}
	logger.Info("report written", "path", *outPath, "rows", cleaned.Len())

	if *search != "" {
		printSearch(cleaned, *search)
	}
}

func loadAvailability(path, url string, timeout time.Duration) (*carpark.Availability, error) {
	var av carpark.Availability
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(b, &av); err != nil {
			return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
		}
		return &av, nil
	}
	client := fetch.New(timeout)
	if err := client.GetJSON(context.Background(), url, &av); err != nil {
		return nil, err
	}
	return &av, nil
}

func printSearch(cleaned *tab.Table, number string) {
	hits := carpark.Search(cleaned, number)
	if hits.Len() == 0 {
		fmt.Printf("No current availability for carpark %s\n", number)
		return
	}
	for _, r := range hits.Rows {
		fmt.Printf("%s [%s]: %s of %s lots available (updated %s)\n",
			tab.CellString(r["carpark_number"]),
			tab.CellString(r["lot_type"]),
			tab.CellString(r["lots_available"]),
			tab.CellString(r["total_lots"]),
			tab.CellString(r["update_datetime"]),
		)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
