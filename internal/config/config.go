package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds everything the CLIs and the API server need to wire the
// pipeline together. Components themselves never read the environment; they
// receive an open connection or a client, per the dependency-injection rule.
type Config struct {
	// Object store holding the raw per-truck exports.
	Bucket       string // e.g. "sigma-resources-truck"
	SourcePrefix string // e.g. "historical/"
	MetadataKey  string // xlsx workbook with truck names

	// Warehouse connection. The DSN is built by the bootstrap layer; the
	// core only ever sees an already-open *sql.DB.
	WarehouseDriver string
	WarehouseDSN    string

	TruckCount   int // number of per-truck source files (1..TruckCount)
	SampleSize   int // rows loaded per run; <=0 loads everything
	BatchSize    int // rows per commit during load
	CombinedPath string

	LogLevel string
	Port     string
}

// Load reads configuration from the environment, after loading a .env file
// if one is present. Missing variables fall back to defaults; only a
// malformed numeric value is an error.
func Load() (*Config, error) {
	// A missing .env is fine; the environment may be set by the runtime.
	_ = godotenv.Load()

	cfg := &Config{
		Bucket:          getEnv("STORAGE_BUCKET", "sigma-resources-truck"),
		SourcePrefix:    getEnv("STORAGE_PREFIX", "historical/"),
		MetadataKey:     getEnv("METADATA_KEY", "metadata/truck_details.xlsx"),
		WarehouseDriver: getEnv("WAREHOUSE_DRIVER", "sqlite"),
		WarehouseDSN:    getEnv("WAREHOUSE_DSN", "file:truck_warehouse.db"),
		CombinedPath:    getEnv("COMBINED_DATA_PATH", "data/combined_truck_data_hist.csv"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		Port:            getEnv("PORT", "8080"),
	}

	var err error
	if cfg.TruckCount, err = getEnvInt("TRUCK_COUNT", 6); err != nil {
		return nil, err
	}
	if cfg.SampleSize, err = getEnvInt("LOAD_SAMPLE_SIZE", 50); err != nil {
		return nil, err
	}
	if cfg.BatchSize, err = getEnvInt("LOAD_BATCH_SIZE", 1); err != nil {
		return nil, err
	}
	if cfg.TruckCount < 1 {
		return nil, fmt.Errorf("config: TRUCK_COUNT must be at least 1, got %d", cfg.TruckCount)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s=%q is not an integer: %w", key, v, err)
	}
	return n, nil
}
