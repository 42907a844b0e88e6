package pipeline

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/qrafiq/truck-etl/internal/domain"
	"github.com/qrafiq/truck-etl/internal/logger"
	"github.com/qrafiq/truck-etl/internal/storage"
)

// Merger reads per-truck source files from the object store and concatenates
// them into one raw dataset, stamping each row with its truck id.
type Merger struct {
	Store  storage.ObjectStore
	Bucket string

	// KeyTemplate produces the object key for one source identifier,
	// e.g. "historical/TRUCK_DATA_HIST_%d.csv".
	KeyTemplate string

	// SkipMissing makes a missing or unreadable source file a logged skip
	// instead of a failed run. Off by default: losing a source silently
	// would understate a truck's revenue.
	SkipMissing bool
}

// DiscoverSourceIDs lists the bucket under the template's prefix and returns
// the truck ids of the source files actually present, ascending. Objects that
// do not match the template are ignored.
func DiscoverSourceIDs(ctx context.Context, store storage.ObjectStore, bucket, keyTemplate string) ([]int, error) {
	prefix := keyTemplate
	if i := strings.Index(keyTemplate, "%"); i >= 0 {
		prefix = keyTemplate[:i]
	}

	keys, err := store.List(ctx, bucket, prefix)
	if err != nil {
		return nil, fmt.Errorf("discover sources under %q: %w: %v", prefix, domain.ErrDataUnavailable, err)
	}

	var ids []int
	for _, key := range keys {
		var id int
		if _, err := fmt.Sscanf(key, keyTemplate, &id); err != nil {
			continue
		}
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids, nil
}

// Merge loads each source in identifier order. Row order within a source is
// preserved, and sources are appended in the order given.
func (m *Merger) Merge(ctx context.Context, sourceIDs []int) ([]domain.RawRecord, error) {
	log := logger.FromContext(ctx)

	var merged []domain.RawRecord
	for _, id := range sourceIDs {
		key := fmt.Sprintf(m.KeyTemplate, id)

		data, err := m.Store.Download(ctx, m.Bucket, key)
		if err != nil {
			if m.SkipMissing {
				log.Warn().Err(err).Str("object", key).Int("truck_id", id).
					Msg("Source file unavailable, skipping")
				continue
			}
			return nil, fmt.Errorf("merge source %q: %w: %v", key, domain.ErrDataUnavailable, err)
		}

		records, err := parseSourceFile(bytes.NewReader(data), id)
		if err != nil {
			if m.SkipMissing {
				log.Warn().Err(err).Str("object", key).Int("truck_id", id).
					Msg("Source file unreadable, skipping")
				continue
			}
			return nil, fmt.Errorf("merge source %q: %w: %v", key, domain.ErrDataUnavailable, err)
		}

		log.Debug().Str("object", key).Int("truck_id", id).Int("rows", len(records)).
			Msg("Merged source file")
		merged = append(merged, records...)
	}

	return merged, nil
}

// parseSourceFile decodes one truck export. The file must carry a header with
// at least the timestamp, total and type columns; data rows with missing or
// extra fields are passed through raw and left to the cleaner.
func parseSourceFile(r io.Reader, truckID int) ([]domain.RawRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"timestamp", "total", "type"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("missing required column %q", required)
		}
	}

	var records []domain.RawRecord
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}

		records = append(records, domain.RawRecord{
			TruckID:   truckID,
			Timestamp: field(row, cols["timestamp"]),
			Total:     field(row, cols["total"]),
			Type:      field(row, cols["type"]),
		})
	}
	return records, nil
}

func field(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}
