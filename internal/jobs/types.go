package jobs

import (
	"context"
	"time"
)

// JobStatus represents the current status of a job.
type JobStatus string

const (
	// JobStatusPending indicates the job is waiting to be processed.
	JobStatusPending JobStatus = "pending"
	// JobStatusRunning indicates the job is currently being processed.
	JobStatusRunning JobStatus = "running"
	// JobStatusCompleted indicates the job completed successfully.
	JobStatusCompleted JobStatus = "completed"
	// JobStatusFailed indicates the job failed.
	JobStatusFailed JobStatus = "failed"
)

// EtlRunJob represents one queued pipeline run: merge the truck source
// files, clean them, and load the warehouse.
type EtlRunJob struct {
	// JobID is the unique identifier for this job.
	JobID string `json:"job_id"`

	// Bucket and Prefix select the source files for the run. Empty values
	// fall back to the service configuration.
	Bucket string `json:"bucket,omitempty"`
	Prefix string `json:"prefix,omitempty"`

	// SampleSize bounds the load; 0 uses the configured default.
	SampleSize int `json:"sample_size,omitempty"`

	// Status is the current status of the job.
	Status JobStatus `json:"status"`

	// CreatedAt is when the job was created.
	CreatedAt time.Time `json:"created_at"`

	// StartedAt is when the job started processing.
	StartedAt *time.Time `json:"started_at,omitempty"`

	// CompletedAt is when the job completed (success or failure).
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// Error contains error details if the job failed.
	Error string `json:"error,omitempty"`

	// RowsInserted is the number of fact rows the run loaded.
	RowsInserted int `json:"rows_inserted"`
}

// JobFilter narrows ListJobs results.
type JobFilter struct {
	Status JobStatus
	Limit  int
	Offset int
}

// JobStore persists job state so callers can poll run progress. Status
// transitions go through SaveJob: the queue owns the job value and writes it
// back whole.
type JobStore interface {
	SaveJob(ctx context.Context, job *EtlRunJob) error
	GetJob(ctx context.Context, jobID string) (*EtlRunJob, error)
	ListJobs(ctx context.Context, filter JobFilter) ([]*EtlRunJob, error)
}

// Publisher enqueues ETL runs.
type Publisher interface {
	PublishEtlRun(ctx context.Context, job *EtlRunJob) error
}

// JobHandler processes one job.
type JobHandler func(ctx context.Context, job *EtlRunJob) error

// Consumer drains queued jobs through a handler.
type Consumer interface {
	Start(ctx context.Context, handler JobHandler) error
	Stop() error
}
