package warehouse

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/qrafiq/truck-etl/internal/domain"
	"github.com/qrafiq/truck-etl/internal/logger"
)

// LoadOptions control how much of the clean dataset reaches the warehouse
// and how commits are grouped.
type LoadOptions struct {
	// SampleSize bounds the load to a uniform random sample of the clean
	// dataset. Values <= 0 load everything. Downsampling is a deliberate
	// cost bound on ingestion, not a correctness feature.
	SampleSize int

	// BatchSize is the number of rows committed per transaction.
	// 1 commits every row independently; <= 0 wraps the whole load in a
	// single transaction.
	BatchSize int

	// Rand, when set, makes sampling deterministic. Tests use this.
	Rand *rand.Rand
}

// RowOutcome records the fate of one selected record.
type RowOutcome struct {
	TruckID int
	Total   float64
	Err     error // nil when the row was inserted
}

// LoadResult summarizes one load run.
type LoadResult struct {
	Selected int
	Inserted int
	Outcomes []RowOutcome
}

// Loader persists clean records into the fact table.
type Loader struct {
	store *Store
}

func NewLoader(store *Store) *Loader {
	return &Loader{store: store}
}

// Load inserts a bounded sample of records into FACT_Transaction. Individual
// insert failures are recorded in the result and do not abort the remaining
// rows; only a failure to resolve a dimension or to obtain a transaction
// aborts the load.
func (l *Loader) Load(ctx context.Context, records []domain.CleanRecord, opts LoadOptions) (LoadResult, error) {
	log := logger.FromContext(ctx)

	selected := sample(records, opts.SampleSize, opts.Rand)
	result := LoadResult{Selected: len(selected)}
	if len(selected) == 0 {
		return result, nil
	}

	// Resolve every distinct label before touching the fact table, so an
	// unknown label fails the run without a partial write.
	cache := newDimensionCache(l.store)
	keys := make([]int64, len(selected))
	for i, record := range selected {
		key, err := cache.key(ctx, record.Type)
		if err != nil {
			return result, err
		}
		keys[i] = key
	}

	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = len(selected)
	}

	for start := 0; start < len(selected); start += batchSize {
		end := start + batchSize
		if end > len(selected) {
			end = len(selected)
		}

		tx, err := l.store.db.BeginTx(ctx, nil)
		if err != nil {
			return result, fmt.Errorf("warehouse: begin load transaction: %w: %v", domain.ErrDataUnavailable, err)
		}

		for i := start; i < end; i++ {
			record := selected[i]
			_, err := tx.ExecContext(ctx, `
				INSERT INTO FACT_Transaction (truck_id, payment_method_id, total, at)
				VALUES (?, ?, ?, ?)
			`, record.TruckID, keys[i], record.Total, record.Timestamp.Format(TimeLayout))

			outcome := RowOutcome{TruckID: record.TruckID, Total: record.Total, Err: err}
			result.Outcomes = append(result.Outcomes, outcome)
			if err != nil {
				log.Warn().
					Err(err).
					Int("truck_id", record.TruckID).
					Float64("total", record.Total).
					Msg("Fact insert failed, continuing")
				continue
			}
			result.Inserted++
		}

		if err := tx.Commit(); err != nil {
			return result, fmt.Errorf("warehouse: commit load batch: %w", err)
		}
	}

	return result, nil
}

// sample returns up to n records chosen uniformly without replacement.
// Order of the sample follows the permutation, not the input.
func sample(records []domain.CleanRecord, n int, rng *rand.Rand) []domain.CleanRecord {
	if n <= 0 || n >= len(records) {
		return records
	}

	var perm []int
	if rng != nil {
		perm = rng.Perm(len(records))
	} else {
		perm = rand.Perm(len(records))
	}

	out := make([]domain.CleanRecord, 0, n)
	for _, idx := range perm[:n] {
		out = append(out, records[idx])
	}
	return out
}
