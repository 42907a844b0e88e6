package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/qrafiq/truck-etl/internal/domain"
	"github.com/qrafiq/truck-etl/internal/logger"
	"github.com/qrafiq/truck-etl/internal/warehouse"
)

// RunReport is what one pipeline run produced.
type RunReport struct {
	RowsMerged int
	RowsClean  int
	CleanStats CleanStats
	Load       warehouse.LoadResult
}

// Runner wires the pipeline stages together: merge the per-truck source
// files, clean them, persist the combined dataset, then load a sample into
// the warehouse.
type Runner struct {
	Merger  *Merger
	Cleaner *Cleaner
	Loader  *warehouse.Loader

	// SourceIDs are the truck identifiers to merge, in order.
	SourceIDs []int

	// CombinedPath is where the clean dataset artifact is written.
	// Empty skips persisting it.
	CombinedPath string

	LoadOptions warehouse.LoadOptions
}

// Run executes one full ETL pass.
func (r *Runner) Run(ctx context.Context) (RunReport, error) {
	log := logger.FromContext(ctx)
	var report RunReport

	// 1. Merge the raw per-truck files.
	raw, err := r.Merger.Merge(ctx, r.SourceIDs)
	if err != nil {
		return report, err
	}
	report.RowsMerged = len(raw)

	// 2. Clean: enforce the data-quality invariants.
	clean, stats := r.Cleaner.Clean(ctx, raw)
	report.RowsClean = len(clean)
	report.CleanStats = stats
	log.Info().
		Int("rows_merged", stats.Input).
		Int("rows_clean", stats.Kept).
		Int("rows_dropped", stats.Dropped()).
		Msg("Cleaned combined dataset")

	// 3. Persist the combined dataset.
	if r.CombinedPath != "" {
		if err := writeCombinedFile(r.CombinedPath, clean); err != nil {
			return report, err
		}
		log.Info().Str("path", r.CombinedPath).Msg("Wrote combined dataset")
	}

	// 4. Load a bounded sample into the fact table.
	result, err := r.Loader.Load(ctx, clean, r.LoadOptions)
	if err != nil {
		return report, err
	}
	report.Load = result
	log.Info().
		Int("selected", result.Selected).
		Int("inserted", result.Inserted).
		Msg("Loaded transactions into warehouse")

	return report, nil
}

func writeCombinedFile(path string, records []domain.CleanRecord) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create combined data dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create combined file: %w", err)
	}

	if err := WriteCombined(f, records); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
