package service

import (
	"time"

	"go.uber.org/zap"

	"github.com/Oluwafemifere/adaptive-exam-timetabling-sub003/internal/dto"
	"github.com/Oluwafemifere/adaptive-exam-timetabling-sub003/internal/models"
	appErrors "github.com/Oluwafemifere/adaptive-exam-timetabling-sub003/pkg/errors"
)

// TimetableService is the read surface over the active schedule: the grid
// layout, the conflict list, the grouped secondary views and the heatmap.
// Everything is recomputed per call from the session snapshot.
type TimetableService struct {
	sessions *SessionService
	layout   *LayoutService
	views    *ViewService
	metrics  *MetricsService
	logger   *zap.Logger
}

// NewTimetableService wires the projection dependencies.
func NewTimetableService(
	sessions *SessionService,
	layout *LayoutService,
	views *ViewService,
	metrics *MetricsService,
	logger *zap.Logger,
) *TimetableService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TimetableService{
		sessions: sessions,
		layout:   layout,
		views:    views,
		metrics:  metrics,
		logger:   logger,
	}
}

// Grid lays out the filtered view and joins placements back onto their
// assignments. Conflicts always cover the full schedule regardless of the
// filter; stack levels cover only the visible subset.
func (s *TimetableService) Grid(filter models.GridFilter) (*dto.GridResponse, error) {
	snapshot := s.sessions.Snapshot()
	if snapshot == nil {
		return nil, appErrors.Clone(appErrors.ErrNoScheduleLoaded, "")
	}
	s.sessions.SetFilter(filter)
	visible := s.sessions.Visible(filter)

	start := time.Now()
	grid := s.layout.BuildGrid(visible, nil)
	s.metrics.ObserveLayout(time.Since(start))

	byID := make(map[string]models.Assignment, len(visible))
	for _, a := range visible {
		byID[a.ID] = a
	}

	placements := make([]dto.PlacedAssignment, 0, len(grid.Placements))
	for _, p := range grid.Placements {
		placements = append(placements, dto.PlacedAssignment{
			Assignment:      byID[p.AssignmentID],
			StartColumn:     p.StartColumn,
			SpanColumns:     p.SpanColumns,
			StackLevel:      p.StackLevel,
			UtilizationTier: p.UtilizationTier,
		})
	}

	invalid := make([]models.InvalidAssignment, 0, len(snapshot.Invalid)+len(grid.Unplaced))
	invalid = append(invalid, snapshot.Invalid...)
	invalid = append(invalid, grid.Unplaced...)

	return &dto.GridResponse{
		Columns:       grid.Columns,
		Placements:    placements,
		Conflicts:     snapshot.Detection.Conflicts,
		Invalid:       invalid,
		SkippedChecks: snapshot.Detection.SkippedChecks,
		Filter:        filter,
	}, nil
}

// Conflicts returns detection output for the whole schedule.
func (s *TimetableService) Conflicts() (*dto.ConflictsResponse, error) {
	snapshot := s.sessions.Snapshot()
	if snapshot == nil {
		return nil, appErrors.Clone(appErrors.ErrNoScheduleLoaded, "")
	}
	return &dto.ConflictsResponse{
		Conflicts:     snapshot.Detection.Conflicts,
		Invalid:       snapshot.Invalid,
		SkippedChecks: snapshot.Detection.SkippedChecks,
	}, nil
}

// Rooms returns the building→room projection of the full assignment set.
func (s *TimetableService) Rooms() ([]models.BuildingGroup, error) {
	snapshot := s.sessions.Snapshot()
	if snapshot == nil {
		return nil, appErrors.Clone(appErrors.ErrNoScheduleLoaded, "")
	}
	return s.views.ByRoom(snapshot.Assignments), nil
}

// Faculty returns the faculty→department→invigilator projection.
func (s *TimetableService) Faculty() ([]models.FacultyGroup, error) {
	snapshot := s.sessions.Snapshot()
	if snapshot == nil {
		return nil, appErrors.Clone(appErrors.ErrNoScheduleLoaded, "")
	}
	return s.views.ByFaculty(snapshot.Assignments), nil
}

// Heatmap returns the slot-bucketed density matrix for the full set.
func (s *TimetableService) Heatmap() (*dto.HeatmapResponse, error) {
	snapshot := s.sessions.Snapshot()
	if snapshot == nil {
		return nil, appErrors.Clone(appErrors.ErrNoScheduleLoaded, "")
	}
	return &dto.HeatmapResponse{Cells: s.layout.Heatmap(snapshot.Assignments)}, nil
}
