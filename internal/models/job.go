package models

import "time"

// JobStatus captures solver job lifecycle states.
type JobStatus string

const (
	JobStatusQueued    JobStatus = "queued"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
	JobStatusCancelled JobStatus = "cancelled"
)

// IsTerminal reports whether the status accepts no further transitions.
func (s JobStatus) IsTerminal() bool {
	switch s {
	case JobStatusCompleted, JobStatusFailed, JobStatusCancelled:
		return true
	}
	return false
}

// SolverJob tracks one invocation of the external scheduling solver. Created
// by submission, mutated only by polling responses, terminal once completed,
// failed or cancelled.
type SolverJob struct {
	ID                 string    `json:"id"`
	SessionID          string    `json:"sessionId"`
	Status             JobStatus `json:"status"`
	ProgressPercentage int       `json:"progressPercentage"`
	SolverPhase        *string   `json:"solverPhase,omitempty"`
	ErrorMessage       *string   `json:"errorMessage,omitempty"`
	SubmittedAt        time.Time `json:"submittedAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// JobStatusUpdate is one polling observation applied to the tracked job.
type JobStatusUpdate struct {
	Status             JobStatus
	ProgressPercentage int
	SolverPhase        *string
	ErrorMessage       *string
}
