package main

import (
	"Go2FlowTag/internal/config"
	"Go2FlowTag/internal/query"
	"Go2FlowTag/internal/report"
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

func main() {
	mode := flag.String("mode", "api", "Query mode: 'api' to query via HTTP API, 'direct' to query ClickHouse directly.")
	runID := flag.String("run", "", "Run ID to fetch; lists recent runs when empty.")
	limit := flag.Int("limit", 20, "Number of runs to list.")
	apiAddr := flag.String("api", "http://localhost:8080", "Base URL of the ft-api server.")
	configPath := flag.String("config", "configs/config.yaml", "Config file used in 'direct' mode.")
	flag.Parse()

	log.Printf("Running in '%s' mode.", *mode)

	switch *mode {
	case "api":
		queryViaAPI(*apiAddr, *runID, *limit)
	case "direct":
		directQueryClickHouse(*configPath, *runID, *limit)
	default:
		log.Fatalf("Invalid mode: %s. Use 'api' or 'direct'.", *mode)
	}
}

func queryViaAPI(apiAddr, runID string, limit int) {
	apiURL := fmt.Sprintf("%s/api/v1/runs?limit=%d", apiAddr, limit)
	if runID != "" {
		apiURL = fmt.Sprintf("%s/api/v1/runs/%s", apiAddr, runID)
	}

	log.Printf("Sending request to %s", apiURL)
	resp, err := http.Get(apiURL)
	if err != nil {
		log.Fatalf("Error sending request: %v", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Fatalf("Error reading response body: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		log.Fatalf("API returned non-200 status code: %d\nResponse: %s", resp.StatusCode, string(respBody))
	}

	var s structpb.Struct
	if err := protojson.Unmarshal(respBody, &s); err != nil {
		log.Printf("Could not decode response, printing raw body:")
		fmt.Println(string(respBody))
		return
	}

	log.Println("---")
	fmt.Println(protojson.MarshalOptions{Multiline: true, Indent: "  "}.Format(&s))
}

func directQueryClickHouse(configPath, runID string, limit int) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	chCfg, ok := cfg.ClickHouse()
	if !ok {
		log.Fatalf("No enabled ClickHouse writer found in %s.", configPath)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	querier, err := query.NewClickHouseQuerier(ctx, *chCfg)
	if err != nil {
		log.Fatalf("Error connecting to ClickHouse: %v", err)
	}
	log.Println("Successfully connected to ClickHouse.")

	if runID != "" {
		r, err := querier.Report(ctx, runID)
		if err != nil {
			log.Fatalf("Error fetching run: %v", err)
		}
		log.Printf("--- Run %s (%s, %s) ---", r.RunID, r.Format, r.GeneratedAt.Format(time.RFC3339))
		if err := report.Render(os.Stdout, r); err != nil {
			log.Fatalf("Error rendering report: %v", err)
		}
		return
	}

	runs, err := querier.ListRuns(ctx, limit)
	if err != nil {
		log.Fatalf("Error listing runs: %v", err)
	}
	if len(runs) == 0 {
		log.Println("No runs stored yet.")
		return
	}

	log.Println("--- Recent Runs (Direct) ---")
	for _, run := range runs {
		fmt.Printf("RunID: %s\n", run.RunID)
		fmt.Printf("  Format: %s\n", run.Format)
		fmt.Printf("  GeneratedAt: %s\n", run.GeneratedAt.Format(time.RFC3339))
		fmt.Printf("  Tags: %d\n", run.Tags)
		fmt.Printf("  TotalCount: %d\n", run.TotalCount)
		fmt.Println("---------------------")
	}
}
