package dto

import "github.com/Oluwafemifere/adaptive-exam-timetabling-sub003/internal/models"

// PlacedAssignment joins an assignment with its grid coordinates for the
// rendering surface.
type PlacedAssignment struct {
	Assignment      models.Assignment      `json:"assignment"`
	StartColumn     int                    `json:"startColumn"`
	SpanColumns     int                    `json:"spanColumns"`
	StackLevel      int                    `json:"stackLevel"`
	UtilizationTier models.UtilizationTier `json:"utilizationTier"`
}

// GridResponse is the full render payload for the primary grid view.
type GridResponse struct {
	Columns       []models.GridColumn        `json:"columns"`
	Placements    []PlacedAssignment         `json:"placements"`
	Conflicts     []models.Conflict          `json:"conflicts"`
	Invalid       []models.InvalidAssignment `json:"invalid,omitempty"`
	SkippedChecks []string                   `json:"skippedChecks,omitempty"`
	Filter        models.GridFilter          `json:"filter"`
}

// ConflictsResponse carries detection output for the whole schedule.
type ConflictsResponse struct {
	Conflicts     []models.Conflict          `json:"conflicts"`
	Invalid       []models.InvalidAssignment `json:"invalid,omitempty"`
	SkippedChecks []string                   `json:"skippedChecks,omitempty"`
}

// HeatmapResponse is the slot-bucketed density matrix.
type HeatmapResponse struct {
	Cells []models.HeatmapCell `json:"cells"`
}
