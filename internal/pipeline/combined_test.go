package pipeline

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/qrafiq/truck-etl/internal/domain"
)

func TestCombinedRoundTrip(t *testing.T) {
	records := []domain.CleanRecord{
		{TruckID: 1, Timestamp: time.Date(2024, 10, 20, 9, 0, 0, 0, time.UTC), Total: 10.00, Type: domain.PaymentCash},
		{TruckID: 3, Timestamp: time.Date(2024, 10, 20, 12, 30, 45, 0, time.UTC), Total: 5.50, Type: domain.PaymentCard},
	}

	var buf bytes.Buffer
	if err := WriteCombined(&buf, records); err != nil {
		t.Fatalf("WriteCombined failed: %v", err)
	}

	got, err := ReadCombined(&buf)
	if err != nil {
		t.Fatalf("ReadCombined failed: %v", err)
	}
	if len(got) != len(records) {
		t.Fatalf("got %d records, want %d", len(got), len(records))
	}
	for i := range records {
		if got[i] != records[i] {
			t.Errorf("record %d = %+v, want %+v", i, got[i], records[i])
		}
	}
}

func TestReadCombinedRejectsCorruption(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"wrong header", "id,when,amount,kind\n1,2024-10-20 09:00:00,10.00,cash\n"},
		{"bad truck id", "truck_id,timestamp,total,type\nvan,2024-10-20 09:00:00,10.00,cash\n"},
		{"bad timestamp", "truck_id,timestamp,total,type\n1,yesterday,10.00,cash\n"},
		{"bad total", "truck_id,timestamp,total,type\n1,2024-10-20 09:00:00,lots,cash\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadCombined(strings.NewReader(tt.data))
			if !errors.Is(err, domain.ErrDataCorruption) {
				t.Errorf("expected ErrDataCorruption, got %v", err)
			}
		})
	}
}
