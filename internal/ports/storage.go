// Package ports defines the interfaces (contracts) that adapters must implement.
// These are the boundaries of the hexagonal architecture. Domain logic depends
// only on these interfaces, never on concrete implementations.
package ports

import (
	"time"

	"github.com/corey/curricula/internal/domain/curriculum"
	"github.com/corey/curricula/internal/domain/planner"
)

// Storage persists export history, saved plans and parsed-dataset snapshots.
// The backing store (bbolt) is subject-scoped for jobs and plans: each subject
// code gets its own namespace. Concurrent reads are safe; writes are
// serialized by the adapter.
//
// Crash safety: every Save must be transactional. A crash mid-write must not
// corrupt previously committed data.
type Storage interface {
	// SaveJob persists an export job. Overwrites any prior job with the same ID.
	SaveJob(job *ExportJob) error

	// ListJobs returns the jobs of a subject, newest first. limit <= 0 means all.
	ListJobs(subject string, limit int) ([]*ExportJob, error)

	// SavePlan persists a plan under its subject and name, replacing any
	// plan of the same name.
	SavePlan(rec *PlanRecord) error

	// LoadPlan retrieves one plan. Returns nil, nil if none exists.
	LoadPlan(subject, name string) (*PlanRecord, error)

	// ListPlans returns the plans of a subject ordered by name.
	ListPlans(subject string) ([]*PlanRecord, error)

	// DeletePlan removes one plan.
	// Idempotent: deleting a nonexistent plan is not an error.
	DeletePlan(subject, name string) error

	// SaveSnapshot caches parsed tables under the digest of their source.
	SaveSnapshot(digest string, tables *curriculum.Tables) error

	// LoadSnapshot retrieves cached tables. Returns nil, nil on a miss.
	LoadSnapshot(digest string) (*curriculum.Tables, error)

	// DeleteSubject removes all jobs and plans of a subject.
	// Idempotent: deleting a nonexistent subject is not an error.
	DeleteSubject(subject string) error

	Close() error
}

// Job statuses.
const (
	JobSuccess = "SUCCESS"
	JobFailed  = "FAILED"
)

// MaxJobError bounds the stored error message of a failed job.
const MaxJobError = 8000

// ExportJob records one workbook export attempt.
type ExportJob struct {
	ID           string    `json:"id"`
	Subject      string    `json:"subject"`
	CodesRaw     string    `json:"codes_raw"`
	Status       string    `json:"status"`
	ErrorMessage string    `json:"error_message,omitempty"`
	OutputPath   string    `json:"output_path,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// PlanRecord is a stored plan with its last update time.
type PlanRecord struct {
	Plan      planner.Plan `json:"plan"`
	UpdatedAt time.Time    `json:"updated_at"`
}
