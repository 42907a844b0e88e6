package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/qrafiq/truck-etl/internal/config"
	"github.com/qrafiq/truck-etl/internal/logger"
	"github.com/qrafiq/truck-etl/internal/pipeline"
	"github.com/qrafiq/truck-etl/internal/storage"
	"github.com/qrafiq/truck-etl/internal/warehouse"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg.LogLevel)

	var (
		bucket      = flag.String("bucket", cfg.Bucket, "object store bucket holding the raw exports")
		prefix      = flag.String("prefix", cfg.SourcePrefix, "object key prefix for the source files")
		trucks      = flag.Int("trucks", cfg.TruckCount, "number of per-truck source files (1..N); 0 discovers them by listing the bucket")
		sample      = flag.Int("sample", cfg.SampleSize, "rows to load into the warehouse; 0 loads everything")
		batch       = flag.Int("batch", cfg.BatchSize, "rows per commit during load")
		skipMissing = flag.Bool("skip-missing", false, "log and skip unavailable source files instead of aborting")
	)
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	store, err := storage.NewGCSStore(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create object store client")
	}
	defer store.Close()

	wh, err := warehouse.Open(cfg.WarehouseDriver, cfg.WarehouseDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to warehouse")
	}
	defer wh.Close()

	keyTemplate := *prefix + "TRUCK_DATA_HIST_%d.csv"

	var sourceIDs []int
	if *trucks > 0 {
		for i := 1; i <= *trucks; i++ {
			sourceIDs = append(sourceIDs, i)
		}
	} else {
		sourceIDs, err = pipeline.DiscoverSourceIDs(ctx, store, *bucket, keyTemplate)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to discover source files")
		}
		if len(sourceIDs) == 0 {
			log.Fatal().Str("bucket", *bucket).Str("prefix", *prefix).
				Msg("No source files found under prefix")
		}
	}

	runner := &pipeline.Runner{
		Merger: &pipeline.Merger{
			Store:       store,
			Bucket:      *bucket,
			KeyTemplate: keyTemplate,
			SkipMissing: *skipMissing,
		},
		Cleaner:      pipeline.NewCleaner(),
		Loader:       warehouse.NewLoader(wh),
		SourceIDs:    sourceIDs,
		CombinedPath: cfg.CombinedPath,
		LoadOptions: warehouse.LoadOptions{
			SampleSize: *sample,
			BatchSize:  *batch,
		},
	}

	log.Info().Str("bucket", *bucket).Str("prefix", *prefix).Int("sources", len(sourceIDs)).
		Msg("Starting ETL run")

	result, err := runner.Run(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("ETL run failed")
	}

	fmt.Printf("ETL run complete: %d rows merged, %d clean, %d inserted\n",
		result.RowsMerged, result.RowsClean, result.Load.Inserted)
}
