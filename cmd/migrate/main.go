package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/qrafiq/truck-etl/internal/config"
	"github.com/qrafiq/truck-etl/internal/domain"
	"github.com/qrafiq/truck-etl/internal/logger"
	"github.com/qrafiq/truck-etl/internal/metadata"
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
		metadataFile = flag.String("metadata-file", "", "local truck metadata workbook (xlsx); overrides -metadata-key")
		metadataKey  = flag.String("metadata-key", cfg.MetadataKey, "object key of the truck metadata workbook; empty skips truck seeding")
		bucket       = flag.String("bucket", cfg.Bucket, "object store bucket holding the metadata workbook")
	)
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	wh, err := warehouse.Open(cfg.WarehouseDriver, cfg.WarehouseDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to warehouse")
	}
	defer wh.Close()

	if err := wh.Migrate(ctx); err != nil {
		log.Fatal().Err(err).Msg("Schema migration failed")
	}
	log.Info().Msg("Warehouse schema is up to date")

	methods := []domain.PaymentMethod{domain.PaymentCash, domain.PaymentCard}
	if err := wh.SeedPaymentMethods(ctx, methods); err != nil {
		log.Fatal().Err(err).Msg("Failed to seed payment methods")
	}
	log.Info().Msg("Seeded payment method dimension")

	trucks, err := loadTruckMetadata(ctx, *metadataFile, *bucket, *metadataKey)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read truck metadata")
	}
	if len(trucks) == 0 {
		log.Warn().Msg("No truck metadata configured, skipping truck seeding")
		return
	}

	if err := wh.UpsertTrucks(ctx, trucks); err != nil {
		log.Fatal().Err(err).Msg("Failed to seed trucks")
	}

	fmt.Printf("Migration complete: %d trucks seeded\n", len(trucks))
}

func loadTruckMetadata(ctx context.Context, localPath, bucket, key string) ([]domain.Truck, error) {
	switch {
	case localPath != "":
		f, err := os.Open(localPath)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", localPath, err)
		}
		defer f.Close()
		return metadata.ParseTruckWorkbook(f)

	case key != "":
		store, err := storage.NewGCSStore(ctx)
		if err != nil {
			return nil, err
		}
		defer store.Close()

		data, err := store.Download(ctx, bucket, key)
		if err != nil {
			return nil, err
		}
		return metadata.ParseTruckWorkbook(bytes.NewReader(data))

	default:
		return nil, nil
	}
}
