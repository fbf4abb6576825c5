package models

import "time"

// Export job statuses
const (
	ExportJobPending   = "pending"
	ExportJobRunning   = "running"
	ExportJobCompleted = "completed"
	ExportJobFailed    = "failed"
)

// ExportJob tracks a background report-export run. The client gets the job id
// back immediately and polls the status endpoint; the archive is served once
// the job completes.
type ExportJob struct {
	ID          string     `json:"id"` // uuid
	Kind        string     `json:"kind"`
	Status      string     `json:"status"`
	FilePath    string     `json:"-"`
	Error       string     `json:"error,omitempty"`
	RequestedBy int        `json:"requested_by"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}
