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

	"restoflow/internal/fetch"
	"restoflow/internal/logging"
)

const defaultFeedURL = "https://raw.githubusercontent.com/Papagoat/brain-assessment/main/restaurant_data.json"

func main() {
	_ = godotenv.Load()

	var (
		feedURL = flag.String("url", envOr("FEED_URL", defaultFeedURL), "Feed URL")
		outPath = flag.String("out", "output/restaurant_data.json", "Snapshot output path")
		timeout = flag.Duration("timeout", 30*time.Second, "HTTP timeout")
		debug   = flag.Bool("debug", false, "Enable debug logging")
	)
	flag.Parse()

	logger, err := logging.Setup("fetch-feed", *debug, "")
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger setup: %v\n", err)
		os.Exit(1)
	}
	logger = logger.With("run_id", uuid.NewString())

	client := fetch.New(*timeout)
	body, err := client.GetBytes(context.Background(), *feedURL)
	if err != nil {
		logger.Error("fetch feed", "url", *feedURL, "error", err)
		os.Exit(1)
	}
	if !json.Valid(body) {
		logger.Error("fetch feed", "url", *feedURL, "error", "response body is not valid JSON")
		os.Exit(1)
	}

	if err := os.MkdirAll(filepath.Dir(*outPath), 0o755); err != nil {
		logger.Error("create output directory", "error", err)
		os.Exit(1)
	}
	if err := os.WriteFile(*outPath, body, 0o644); err != nil {
		logger.Error("write snapshot", "path", *outPath, "error", err)
		os.Exit(1)
	}
	logger.Info("snapshot written", "path", *outPath, "bytes", len(body))
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
