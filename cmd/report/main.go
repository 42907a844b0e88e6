package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/qrafiq/truck-etl/internal/config"
	"github.com/qrafiq/truck-etl/internal/logger"
	"github.com/qrafiq/truck-etl/internal/report"
	"github.com/qrafiq/truck-etl/internal/warehouse"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg.LogLevel)

	date := flag.String("date", "", "report date as YYYY-MM-DD (default: yesterday)")
	outDir := flag.String("out", ".", "directory for the JSON and HTML report files")
	flag.Parse()

	var start, end time.Time
	if *date == "" {
		start, end = report.PreviousDay(time.Now())
	} else {
		day, err := time.Parse("2006-01-02", *date)
		if err != nil {
			log.Fatal().Err(err).Msg("Invalid --date, want YYYY-MM-DD")
		}
		start, end = report.DayWindow(day)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	wh, err := warehouse.Open(cfg.WarehouseDriver, cfg.WarehouseDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to warehouse")
	}
	defer wh.Close()

	summary, err := report.Summarize(ctx, wh, start, end)
	if err != nil {
		log.Error().Err(err).Msg("Report run failed")
		fmt.Fprintln(os.Stderr, "No data retrieved")
		os.Exit(1)
	}

	jsonData, htmlData, err := report.Render(summary)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to render report")
	}

	jsonPath := fmt.Sprintf("%s/report_data_%s.json", *outDir, summary.Date)
	if err := os.WriteFile(jsonPath, jsonData, 0o644); err != nil {
		log.Fatal().Err(err).Msg("Failed to write JSON report")
	}

	htmlPath := fmt.Sprintf("%s/report_%s.html", *outDir, summary.Date)
	if err := os.WriteFile(htmlPath, []byte(htmlData), 0o644); err != nil {
		log.Fatal().Err(err).Msg("Failed to write HTML report")
	}

	fmt.Printf("Report for %s written to %s and %s\n", summary.Date, jsonPath, htmlPath)
}
