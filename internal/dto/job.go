package dto

import "github.com/Oluwafemifere/adaptive-exam-timetabling-sub003/internal/models"

// SubmitJobRequest asks the coordinator to start tracking a new solver run.
type SubmitJobRequest struct {
	ConfigurationID string `json:"configurationId" validate:"required"`
	SessionID       string `json:"sessionId" validate:"required"`
}

// JobSnapshot is the externally visible state of the tracked job.
type JobSnapshot struct {
	ID                 string           `json:"id"`
	SessionID          string           `json:"sessionId"`
	Status             models.JobStatus `json:"status"`
	ProgressPercentage int              `json:"progressPercentage"`
	SolverPhase        *string          `json:"solverPhase,omitempty"`
	ErrorMessage       *string          `json:"errorMessage,omitempty"`
}

// SnapshotFromJob converts the tracked job into its transport shape.
func SnapshotFromJob(job *models.SolverJob) *JobSnapshot {
	if job == nil {
		return nil
	}
	return &JobSnapshot{
		ID:                 job.ID,
		SessionID:          job.SessionID,
		Status:             job.Status,
		ProgressPercentage: job.ProgressPercentage,
		SolverPhase:        job.SolverPhase,
		ErrorMessage:       job.ErrorMessage,
	}
}
