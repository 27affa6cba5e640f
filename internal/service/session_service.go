package service

import (
	"sync"
	"time"

	"github.com/Oluwafemifere/adaptive-exam-timetabling-sub003/internal/models"
)

// ScheduleSnapshot is the immutable result of one completed solver job:
// normalized assignments, the records rejected during normalization, and the
// detection output for the full set. Replaced wholesale, never patched.
type ScheduleSnapshot struct {
	JobID       string
	Assignments []models.Assignment
	Invalid     []models.InvalidAssignment
	Detection   models.DetectionResult
	LoadedAt    time.Time
}

// SessionService owns the active schedule result and the current view
// filters. One instance per session replaces the process-wide mutable store
// the UI used to keep: the snapshot swap is atomic, so layout recomputation
// never observes a partially updated result.
type SessionService struct {
	mu       sync.RWMutex
	snapshot *ScheduleSnapshot
	filter   models.GridFilter
}

// NewSessionService constructs an empty session.
func NewSessionService() *SessionService {
	return &SessionService{}
}

// Replace installs a new schedule snapshot, discarding the previous job's
// result wholesale. Filters reset: they referred to the old assignment set.
func (s *SessionService) Replace(snapshot ScheduleSnapshot) {
	snapshot.LoadedAt = time.Now().UTC()
	s.mu.Lock()
	s.snapshot = &snapshot
	s.filter = models.GridFilter{}
	s.mu.Unlock()
}

// Clear drops the active snapshot, e.g. when a new job supersedes the old
// one before completing.
func (s *SessionService) Clear() {
	s.mu.Lock()
	s.snapshot = nil
	s.filter = models.GridFilter{}
	s.mu.Unlock()
}

// Snapshot returns the active schedule result, or nil when none is loaded.
func (s *SessionService) Snapshot() *ScheduleSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snapshot == nil {
		return nil
	}
	copied := *s.snapshot
	return &copied
}

// SetFilter replaces the view filter.
func (s *SessionService) SetFilter(filter models.GridFilter) {
	s.mu.Lock()
	s.filter = filter
	s.mu.Unlock()
}

// Filter returns the current view filter.
func (s *SessionService) Filter() models.GridFilter {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filter
}

// Visible returns the subset of the active assignments that survive the
// given filter. Conflicts are a property of the whole schedule and are not
// filtered here.
func (s *SessionService) Visible(filter models.GridFilter) []models.Assignment {
	snapshot := s.Snapshot()
	if snapshot == nil {
		return nil
	}
	if filter.IsZero() {
		return snapshot.Assignments
	}
	visible := make([]models.Assignment, 0, len(snapshot.Assignments))
	for _, a := range snapshot.Assignments {
		if filter.Matches(a) {
			visible = append(visible, a)
		}
	}
	return visible
}
