package pipeline

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/qrafiq/truck-etl/internal/domain"
)

// mockObjectStore is a mock implementation of storage.ObjectStore for testing.
type mockObjectStore struct {
	ListFunc     func(ctx context.Context, bucket, prefix string) ([]string, error)
	DownloadFunc func(ctx context.Context, bucket, object string) ([]byte, error)
}

func (m *mockObjectStore) List(ctx context.Context, bucket, prefix string) ([]string, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, bucket, prefix)
	}
	return nil, nil
}

func (m *mockObjectStore) Download(ctx context.Context, bucket, object string) ([]byte, error) {
	if m.DownloadFunc != nil {
		return m.DownloadFunc(ctx, bucket, object)
	}
	return nil, errors.New("not found")
}

func sourceFiles(files map[string]string) *mockObjectStore {
	return &mockObjectStore{
		DownloadFunc: func(ctx context.Context, bucket, object string) ([]byte, error) {
			data, ok := files[object]
			if !ok {
				return nil, fmt.Errorf("object %q does not exist", object)
			}
			return []byte(data), nil
		},
	}
}

func TestDiscoverSourceIDs(t *testing.T) {
	var gotBucket, gotPrefix string
	store := &mockObjectStore{
		ListFunc: func(ctx context.Context, bucket, prefix string) ([]string, error) {
			gotBucket, gotPrefix = bucket, prefix
			return []string{
				"historical/TRUCK_DATA_HIST_3.csv",
				"historical/TRUCK_DATA_HIST_1.csv",
				"historical/metadata.xlsx",
				"historical/TRUCK_DATA_HIST_2.csv",
			}, nil
		},
	}

	ids, err := DiscoverSourceIDs(context.Background(), store, "trucks", "historical/TRUCK_DATA_HIST_%d.csv")
	if err != nil {
		t.Fatalf("DiscoverSourceIDs failed: %v", err)
	}

	if gotBucket != "trucks" || gotPrefix != "historical/TRUCK_DATA_HIST_" {
		t.Errorf("listed %s/%s, want trucks/historical/TRUCK_DATA_HIST_", gotBucket, gotPrefix)
	}
	want := []int{1, 2, 3}
	if len(ids) != len(want) {
		t.Fatalf("ids = %v, want %v", ids, want)
	}
	for i, id := range ids {
		if id != want[i] {
			t.Errorf("ids = %v, want %v", ids, want)
			break
		}
	}
}

func TestDiscoverSourceIDsListFailure(t *testing.T) {
	store := &mockObjectStore{
		ListFunc: func(ctx context.Context, bucket, prefix string) ([]string, error) {
			return nil, errors.New("bucket gone")
		},
	}

	_, err := DiscoverSourceIDs(context.Background(), store, "trucks", "historical/TRUCK_DATA_HIST_%d.csv")
	if !errors.Is(err, domain.ErrDataUnavailable) {
		t.Fatalf("expected ErrDataUnavailable, got %v", err)
	}
}

func TestMergeStampsAndOrders(t *testing.T) {
	store := sourceFiles(map[string]string{
		"historical/TRUCK_DATA_HIST_1.csv": "timestamp,total,type\n" +
			"2024-10-20 09:00:00,10.00,cash\n" +
			"2024-10-20 09:05:00,5.50,card\n",
		"historical/TRUCK_DATA_HIST_2.csv": "timestamp,total,type\n" +
			"2024-10-20 09:01:00,3.25,cash\n",
	})

	merger := &Merger{
		Store:       store,
		Bucket:      "trucks",
		KeyTemplate: "historical/TRUCK_DATA_HIST_%d.csv",
	}

	rows, err := merger.Merge(context.Background(), []int{1, 2})
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}

	want := []domain.RawRecord{
		{TruckID: 1, Timestamp: "2024-10-20 09:00:00", Total: "10.00", Type: "cash"},
		{TruckID: 1, Timestamp: "2024-10-20 09:05:00", Total: "5.50", Type: "card"},
		{TruckID: 2, Timestamp: "2024-10-20 09:01:00", Total: "3.25", Type: "cash"},
	}
	if len(rows) != len(want) {
		t.Fatalf("got %d rows, want %d", len(rows), len(want))
	}
	for i, row := range rows {
		if row != want[i] {
			t.Errorf("row %d = %+v, want %+v", i, row, want[i])
		}
	}
}

func TestMergeMissingSource(t *testing.T) {
	store := sourceFiles(map[string]string{
		"historical/TRUCK_DATA_HIST_1.csv": "timestamp,total,type\n2024-10-20 09:00:00,10.00,cash\n",
	})

	merger := &Merger{
		Store:       store,
		Bucket:      "trucks",
		KeyTemplate: "historical/TRUCK_DATA_HIST_%d.csv",
	}

	_, err := merger.Merge(context.Background(), []int{1, 2})
	if !errors.Is(err, domain.ErrDataUnavailable) {
		t.Fatalf("expected ErrDataUnavailable, got %v", err)
	}
}

func TestMergeSkipMissing(t *testing.T) {
	store := sourceFiles(map[string]string{
		"historical/TRUCK_DATA_HIST_1.csv": "timestamp,total,type\n2024-10-20 09:00:00,10.00,cash\n",
		"historical/TRUCK_DATA_HIST_3.csv": "timestamp,total,type\n2024-10-20 09:02:00,7.00,card\n",
	})

	merger := &Merger{
		Store:       store,
		Bucket:      "trucks",
		KeyTemplate: "historical/TRUCK_DATA_HIST_%d.csv",
		SkipMissing: true,
	}

	rows, err := merger.Merge(context.Background(), []int{1, 2, 3})
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[0].TruckID != 1 || rows[1].TruckID != 3 {
		t.Errorf("unexpected source order: %+v", rows)
	}
}

func TestMergeShortRowsPassThrough(t *testing.T) {
	// Ragged rows are a cleaning concern, not a merge failure.
	store := sourceFiles(map[string]string{
		"historical/TRUCK_DATA_HIST_1.csv": "timestamp,total,type\n" +
			"2024-10-20 09:00:00,10.00\n",
	})

	merger := &Merger{
		Store:       store,
		Bucket:      "trucks",
		KeyTemplate: "historical/TRUCK_DATA_HIST_%d.csv",
	}

	rows, err := merger.Merge(context.Background(), []int{1})
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	if rows[0].Type != "" {
		t.Errorf("expected empty type for short row, got %q", rows[0].Type)
	}
}

func TestMergeMissingColumn(t *testing.T) {
	store := sourceFiles(map[string]string{
		"historical/TRUCK_DATA_HIST_1.csv": "timestamp,amount\n2024-10-20 09:00:00,10.00\n",
	})

	merger := &Merger{
		Store:       store,
		Bucket:      "trucks",
		KeyTemplate: "historical/TRUCK_DATA_HIST_%d.csv",
	}

	_, err := merger.Merge(context.Background(), []int{1})
	if !errors.Is(err, domain.ErrDataUnavailable) {
		t.Fatalf("expected ErrDataUnavailable for missing column, got %v", err)
	}
}
