package pipeline

import (
	"context"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/qrafiq/truck-etl/internal/domain"
	"github.com/qrafiq/truck-etl/internal/logger"
)

// DefaultInvalidTotals is the set of sentinel markers upstream systems write
// into the total column for known-bad records. These are data-quality
// defects, not legitimate zero-value transactions, so rows carrying them are
// dropped outright.
var DefaultInvalidTotals = map[string]bool{
	"blank": true,
	"None":  true,
	"ERR":   true,
	"VOID":  true,
	"NULL":  true,
	"0":     true,
	"0.00":  true,
	"":      true,
}

// timestampLayouts are the source formats the trucks' exports have been seen
// to use. Anything else drops the row.
var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// CleanStats counts what happened to the rows of one cleaning pass.
type CleanStats struct {
	Input         int
	Kept          int
	MissingField  int
	SentinelTotal int
	BadTimestamp  int
	BadTotal      int
	NegativeTotal int
	UnknownLabel  int
}

// Dropped is the number of input rows that did not survive cleaning.
func (s CleanStats) Dropped() int {
	return s.Input - s.Kept
}

// Cleaner enforces the data-quality invariants of the clean dataset.
type Cleaner struct {
	// InvalidTotals is the sentinel set; nil uses DefaultInvalidTotals.
	InvalidTotals map[string]bool
}

func NewCleaner() *Cleaner {
	return &Cleaner{InvalidTotals: DefaultInvalidTotals}
}

// Clean validates and normalizes raw rows. Rows that fail a check are
// dropped and counted; the run itself never fails here. Output rows carry a
// finite non-negative total, a parsed timestamp, a label from the known
// vocabulary, and the truck id of their source file.
//
// Cleaning is idempotent: rendering clean records back to raw form and
// cleaning again drops nothing further.
func (c *Cleaner) Clean(ctx context.Context, rows []domain.RawRecord) ([]domain.CleanRecord, CleanStats) {
	log := logger.FromContext(ctx)

	invalid := c.InvalidTotals
	if invalid == nil {
		invalid = DefaultInvalidTotals
	}

	stats := CleanStats{Input: len(rows)}
	clean := make([]domain.CleanRecord, 0, len(rows))

	for _, row := range rows {
		timestamp := strings.TrimSpace(row.Timestamp)
		total := strings.TrimSpace(row.Total)
		label := strings.TrimSpace(row.Type)

		if row.TruckID < 1 || timestamp == "" || total == "" || label == "" {
			stats.MissingField++
			continue
		}
		if invalid[total] {
			stats.SentinelTotal++
			continue
		}

		parsedTime, ok := parseTimestamp(timestamp)
		if !ok {
			stats.BadTimestamp++
			log.Debug().Int("truck_id", row.TruckID).Str("timestamp", row.Timestamp).
				Msg("Dropping row with unparseable timestamp")
			continue
		}

		amount, err := strconv.ParseFloat(total, 64)
		if err != nil || math.IsNaN(amount) || math.IsInf(amount, 0) {
			stats.BadTotal++
			log.Debug().Int("truck_id", row.TruckID).Str("total", row.Total).
				Msg("Dropping row with non-numeric total")
			continue
		}
		if amount < 0 {
			stats.NegativeTotal++
			continue
		}

		method := domain.PaymentMethod(strings.ToLower(label))
		if !domain.KnownPaymentMethods[method] {
			stats.UnknownLabel++
			log.Debug().Int("truck_id", row.TruckID).Str("type", row.Type).
				Msg("Dropping row with unknown payment label")
			continue
		}

		clean = append(clean, domain.CleanRecord{
			TruckID:   row.TruckID,
			Timestamp: parsedTime,
			Total:     amount,
			Type:      method,
		})
	}

	stats.Kept = len(clean)
	return clean, stats
}

func parseTimestamp(value string) (time.Time, bool) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
