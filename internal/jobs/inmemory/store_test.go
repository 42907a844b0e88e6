package inmemory

import (
	"context"
	"testing"

	"github.com/qrafiq/truck-etl/internal/jobs"
)

func TestStoreSaveAndGet(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	job := &jobs.EtlRunJob{JobID: "job-1", Status: jobs.JobStatusPending, SampleSize: 50}
	if err := store.SaveJob(ctx, job); err != nil {
		t.Fatalf("SaveJob failed: %v", err)
	}

	got, err := store.GetJob(ctx, "job-1")
	if err != nil {
		t.Fatalf("GetJob failed: %v", err)
	}
	if got.JobID != "job-1" || got.Status != jobs.JobStatusPending || got.SampleSize != 50 {
		t.Errorf("got %+v", got)
	}
}

func TestStoreSaveRequiresID(t *testing.T) {
	store := NewStore()
	if err := store.SaveJob(context.Background(), &jobs.EtlRunJob{}); err == nil {
		t.Fatal("expected error for missing job ID")
	}
}

func TestStoreGetMissingJob(t *testing.T) {
	store := NewStore()
	if _, err := store.GetJob(context.Background(), "nope"); err == nil {
		t.Fatal("expected error for unknown job")
	}
}

func TestStoreReturnsCopies(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	job := &jobs.EtlRunJob{JobID: "job-1", Status: jobs.JobStatusPending}
	if err := store.SaveJob(ctx, job); err != nil {
		t.Fatalf("SaveJob failed: %v", err)
	}

	// Mutating what the caller holds must not change stored state.
	job.Status = jobs.JobStatusFailed
	got, err := store.GetJob(ctx, "job-1")
	if err != nil {
		t.Fatalf("GetJob failed: %v", err)
	}
	if got.Status != jobs.JobStatusPending {
		t.Errorf("stored job mutated through caller pointer: %+v", got)
	}

	got.Status = jobs.JobStatusCompleted
	again, _ := store.GetJob(ctx, "job-1")
	if again.Status != jobs.JobStatusPending {
		t.Errorf("stored job mutated through returned pointer: %+v", again)
	}
}

func TestStoreListJobsFilter(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	seed := []*jobs.EtlRunJob{
		{JobID: "a", Status: jobs.JobStatusPending},
		{JobID: "b", Status: jobs.JobStatusCompleted},
		{JobID: "c", Status: jobs.JobStatusCompleted},
		{JobID: "d", Status: jobs.JobStatusFailed},
	}
	for _, job := range seed {
		if err := store.SaveJob(ctx, job); err != nil {
			t.Fatalf("SaveJob(%s) failed: %v", job.JobID, err)
		}
	}

	all, err := store.ListJobs(ctx, jobs.JobFilter{})
	if err != nil {
		t.Fatalf("ListJobs failed: %v", err)
	}
	if len(all) != 4 {
		t.Errorf("unfiltered list = %d jobs, want 4", len(all))
	}

	completed, err := store.ListJobs(ctx, jobs.JobFilter{Status: jobs.JobStatusCompleted})
	if err != nil {
		t.Fatalf("ListJobs failed: %v", err)
	}
	if len(completed) != 2 {
		t.Errorf("completed list = %d jobs, want 2", len(completed))
	}
	for _, job := range completed {
		if job.Status != jobs.JobStatusCompleted {
			t.Errorf("job %s has status %s", job.JobID, job.Status)
		}
	}

	limited, err := store.ListJobs(ctx, jobs.JobFilter{Limit: 2})
	if err != nil {
		t.Fatalf("ListJobs failed: %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("limited list = %d jobs, want 2", len(limited))
	}

	offset, err := store.ListJobs(ctx, jobs.JobFilter{Offset: 10})
	if err != nil {
		t.Fatalf("ListJobs failed: %v", err)
	}
	if len(offset) != 0 {
		t.Errorf("out-of-range offset list = %d jobs, want 0", len(offset))
	}
}

func TestStoreSaveOverwritesStatus(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	if err := store.SaveJob(ctx, &jobs.EtlRunJob{JobID: "job-1", Status: jobs.JobStatusRunning}); err != nil {
		t.Fatalf("SaveJob failed: %v", err)
	}
	if err := store.SaveJob(ctx, &jobs.EtlRunJob{JobID: "job-1", Status: jobs.JobStatusFailed, Error: "merge failed"}); err != nil {
		t.Fatalf("second SaveJob failed: %v", err)
	}

	got, err := store.GetJob(ctx, "job-1")
	if err != nil {
		t.Fatalf("GetJob failed: %v", err)
	}
	if got.Status != jobs.JobStatusFailed || got.Error != "merge failed" {
		t.Errorf("got %+v", got)
	}
}
