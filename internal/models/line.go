package models

import (
	"time"

	"fieldops-backend/internal/cable"
)

// Line statuses
const (
	LineStatusPending    = "pending"
	LineStatusInProgress = "in_progress"
	LineStatusCompleted  = "completed"
)

// LineDetails is one telephone/fiber line installation job: the raw cable
// meter readings plus the per-line material consumption counters the crews
// record on paper cards.
type LineDetails struct {
	ID     int    `json:"id"`
	TaskID string `json:"task_id"`

	PhoneNumber  string `json:"phone_number"`
	CustomerName string `json:"customer_name"`
	Address      string `json:"address"`

	AssignedWorkerID   *int   `json:"assigned_worker_id,omitempty"`
	AssignedWorkerName string `json:"assigned_worker_name,omitempty"`

	// Raw meter-counter readings; total is derived as start + end with the
	// middle reading kept as a checkpoint.
	cable.Measurement
	TotalCable float64 `json:"total_cable"`

	// Material consumption counters.
	Poles         int `json:"poles"`
	Clips         int `json:"clips"`
	Connectors    int `json:"connectors"`
	LHooks        int `json:"l_hooks"`
	Nails         int `json:"nails"`
	Screws        int `json:"screws"`
	UClips        int `json:"u_clips"`
	TagBlocks     int `json:"tag_blocks"`
	CasingLength  int `json:"casing_length"`
	InternalWire  int `json:"internal_wire"`
	ConduitLength int `json:"conduit_length"`
	RetainerRings int `json:"retainer_rings"`

	Status        string     `json:"status"`
	CompletedDate *time.Time `json:"completed_date,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

type CreateLineRequest struct {
	TaskID       string `json:"task_id"`
	PhoneNumber  string `json:"phone_number"`
	CustomerName string `json:"customer_name"`
	Address      string `json:"address"`

	AssignedWorkerID *int `json:"assigned_worker_id"`

	cable.Measurement

	// When set, the computed cable total is recorded as usage against this
	// drum in the same transaction as the line insert.
	DrumID *int `json:"drum_id"`

	Poles         int `json:"poles"`
	Clips         int `json:"clips"`
	Connectors    int `json:"connectors"`
	LHooks        int `json:"l_hooks"`
	Nails         int `json:"nails"`
	Screws        int `json:"screws"`
	UClips        int `json:"u_clips"`
	TagBlocks     int `json:"tag_blocks"`
	CasingLength  int `json:"casing_length"`
	InternalWire  int `json:"internal_wire"`
	ConduitLength int `json:"conduit_length"`
	RetainerRings int `json:"retainer_rings"`

	Status string `json:"status"`
}

type UpdateLineStatusRequest struct {
	Status string `json:"status"`
}

// ValidLineStatus reports whether s is one of the three line statuses.
func ValidLineStatus(s string) bool {
	return s == LineStatusPending || s == LineStatusInProgress || s == LineStatusCompleted
}
