// main.go — entry point for the market-data ingestion pipeline.
//
// Reads configuration and the upstream API key, builds the historical
// RecordSource, and hands off to the orchestrator. Exit code 0 on normal
// or timeout-triggered completion, 1 on fatal startup error, matching
// original_source/src/main.cpp's top-level try/catch around main().

package main

import (
	"fmt"
	"os"

	"github.com/quantflow/mdfeed/config"
	"github.com/quantflow/mdfeed/feed"
	"github.com/quantflow/mdfeed/orchestrator"
	"github.com/quantflow/mdfeed/xlog"
)

const (
	historicalBaseURL = "https://hist.databento.com/v0"
	resumeCachePath   = "mdfeed_resume.db"
)

func main() {
	fmt.Println("=== Market Data MPMC Queue Demo ===")
	fmt.Println("Fetches historical BBO data and processes it through a")
	fmt.Println("multi-producer multi-consumer lock-free queue.")
	fmt.Println()

	apiKey, err := config.APIKey()
	if err != nil {
		xlog.Drop("fatal", err)
		os.Exit(1)
	}

	source, err := feed.CreateHistoricalSourceFromEnv(historicalBaseURL, resumeCachePath, apiKey)
	if err != nil {
		xlog.Drop("fatal", err)
		os.Exit(1)
	}
	defer source.Close()

	fmt.Printf("Dataset: %s\n", config.Dataset)
	fmt.Printf("Symbols: %v\n", config.Symbols)
	fmt.Printf("Time range: %s to %s\n", config.StartTime, config.EndTime)
	fmt.Printf("Schema: %s\n\n", config.Schema)

	if err := orchestrator.Run(source); err != nil {
		xlog.Drop("fatal", err)
		os.Exit(1)
	}

	fmt.Println("Run completed successfully!")
}
