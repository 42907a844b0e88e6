package pipeline

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/qrafiq/truck-etl/internal/domain"
	"github.com/qrafiq/truck-etl/internal/warehouse"
)

var combinedHeader = []string{"truck_id", "timestamp", "total", "type"}

// WriteCombined persists the clean dataset as the combined CSV artifact,
// one row per transaction: truck_id, timestamp, total, type.
func WriteCombined(w io.Writer, records []domain.CleanRecord) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(combinedHeader); err != nil {
		return fmt.Errorf("write combined header: %w", err)
	}
	for _, record := range records {
		row := []string{
			strconv.Itoa(record.TruckID),
			record.Timestamp.Format(warehouse.TimeLayout),
			strconv.FormatFloat(record.Total, 'f', 2, 64),
			string(record.Type),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write combined row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// ReadCombined loads a combined dataset back. The artifact is produced by
// WriteCombined, so any malformed row here means the file was corrupted
// after the fact.
func ReadCombined(r io.Reader) ([]domain.CleanRecord, error) {
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read combined header: %w: %v", domain.ErrDataUnavailable, err)
	}
	if strings.Join(header, ",") != strings.Join(combinedHeader, ",") {
		return nil, fmt.Errorf("unexpected combined header %v: %w", header, domain.ErrDataCorruption)
	}

	var records []domain.CleanRecord
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("combined row %d: %w: %v", line, domain.ErrDataCorruption, err)
		}

		truckID, err := strconv.Atoi(row[0])
		if err != nil {
			return nil, fmt.Errorf("combined row %d: truck_id %q: %w", line, row[0], domain.ErrDataCorruption)
		}
		timestamp, err := time.Parse(warehouse.TimeLayout, row[1])
		if err != nil {
			return nil, fmt.Errorf("combined row %d: timestamp %q: %w", line, row[1], domain.ErrDataCorruption)
		}
		total, err := strconv.ParseFloat(row[2], 64)
		if err != nil {
			return nil, fmt.Errorf("combined row %d: total %q: %w", line, row[2], domain.ErrDataCorruption)
		}

		records = append(records, domain.CleanRecord{
			TruckID:   truckID,
			Timestamp: timestamp,
			Total:     total,
			Type:      domain.PaymentMethod(row[3]),
		})
	}
	return records, nil
}
