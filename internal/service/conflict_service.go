package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/Oluwafemifere/adaptive-exam-timetabling-sub003/internal/models"
)

type rosterLookup interface {
	StudentsForCourse(ctx context.Context, courseCode string) ([]string, error)
}

// ConflictService classifies resource violations across the full assignment
// set. Detection always runs over the whole schedule, never the filtered
// view: a conflict must not disappear because a filter hides one side of the
// pair.
type ConflictService struct {
	roster rosterLookup
	logger *zap.Logger
}

// NewConflictService wires the detector. The roster collaborator is
// optional; without it the student-clash category is skipped, not failed.
func NewConflictService(roster rosterLookup, logger *zap.Logger) *ConflictService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConflictService{roster: roster, logger: logger}
}

// Detect buckets assignments by date and performs pairwise overlap checks
// within each bucket, plus per-assignment capacity checks. Output is
// duplicate-free and deterministically ordered. Assignments with invalid
// intervals are excluded here; the normalization step already reported them.
func (s *ConflictService) Detect(ctx context.Context, assignments []models.Assignment) models.DetectionResult {
	result := models.DetectionResult{Conflicts: []models.Conflict{}}
	seen := make(map[string]struct{})

	rosters := newRosterCache(s.roster)
	if s.roster == nil {
		result.SkippedChecks = append(result.SkippedChecks, models.CategoryStudentClash)
	}

	byDate := make(map[string][]models.Assignment)
	for _, a := range assignments {
		if !a.HasValidInterval() {
			continue
		}
		byDate[a.DateKey()] = append(byDate[a.DateKey()], a)

		if conflict, ok := capacityOverrun(a); ok {
			appendUnique(&result.Conflicts, seen, conflict)
		}
	}

	// Day buckets stay small, so the quadratic pass per day is fine.
	for _, bucket := range byDate {
		for i := 0; i < len(bucket); i++ {
			for j := i + 1; j < len(bucket); j++ {
				a, b := bucket[i], bucket[j]
				if !a.Overlaps(b) {
					continue
				}
				if conflict, ok := roomClash(a, b); ok {
					appendUnique(&result.Conflicts, seen, conflict)
				}
				if conflict, ok := invigilatorClash(a, b); ok {
					appendUnique(&result.Conflicts, seen, conflict)
				}
				if s.roster != nil && !rosters.degraded {
					if conflict, ok := s.studentClash(ctx, rosters, a, b); ok {
						appendUnique(&result.Conflicts, seen, conflict)
					}
				}
			}
		}
	}

	if rosters.degraded {
		s.logger.Warn("roster lookup unavailable, student clash detection skipped",
			zap.Error(rosters.err))
		result.SkippedChecks = append(result.SkippedChecks, models.CategoryStudentClash)
	}

	sort.Slice(result.Conflicts, func(i, j int) bool {
		left := strings.Join(result.Conflicts[i].ExamIDs, ",")
		right := strings.Join(result.Conflicts[j].ExamIDs, ",")
		if left != right {
			return left < right
		}
		return result.Conflicts[i].Type < result.Conflicts[j].Type
	})

	return result
}

func roomClash(a, b models.Assignment) (models.Conflict, bool) {
	if a.Room == "" || b.Room == "" || a.Room != b.Room {
		return models.Conflict{}, false
	}
	ids := canonicalIDs(a.ID, b.ID)
	return models.Conflict{
		ID:       conflictID(models.CategoryRoomClash, ids),
		Type:     models.ConflictTypeHard,
		Category: models.CategoryRoomClash,
		Severity: models.SeverityHigh,
		Message: fmt.Sprintf("room %s double-booked: %s (%s-%s) overlaps %s (%s-%s) on %s",
			a.Room, a.CourseCode, a.StartTime(), a.EndTime(),
			b.CourseCode, b.StartTime(), b.EndTime(), a.DateKey()),
		ExamIDs: ids,
	}, true
}

func invigilatorClash(a, b models.Assignment) (models.Conflict, bool) {
	shared := intersect(a.Invigilators, b.Invigilators)
	if len(shared) == 0 {
		return models.Conflict{}, false
	}
	ids := canonicalIDs(a.ID, b.ID)
	return models.Conflict{
		ID:       conflictID(models.CategoryInvigilatorClash, ids),
		Type:     models.ConflictTypeHard,
		Category: models.CategoryInvigilatorClash,
		Severity: models.SeverityHigh,
		Message: fmt.Sprintf("invigilator %s assigned to both %s and %s at overlapping times on %s",
			strings.Join(shared, ", "), a.CourseCode, b.CourseCode, a.DateKey()),
		ExamIDs:        ids,
		AutoResolvable: true,
	}, true
}

func (s *ConflictService) studentClash(ctx context.Context, rosters *rosterCache, a, b models.Assignment) (models.Conflict, bool) {
	studentsA, ok := rosters.get(ctx, a.CourseCode)
	if !ok {
		return models.Conflict{}, false
	}
	studentsB, ok := rosters.get(ctx, b.CourseCode)
	if !ok {
		return models.Conflict{}, false
	}
	shared := 0
	for id := range studentsA {
		if _, overlap := studentsB[id]; overlap {
			shared++
		}
	}
	if shared == 0 {
		return models.Conflict{}, false
	}
	ids := canonicalIDs(a.ID, b.ID)
	return models.Conflict{
		ID:       conflictID(models.CategoryStudentClash, ids),
		Type:     models.ConflictTypeHard,
		Category: models.CategoryStudentClash,
		Severity: models.SeverityHigh,
		Message: fmt.Sprintf("%d student(s) enrolled in both %s and %s scheduled at overlapping times on %s",
			shared, a.CourseCode, b.CourseCode, a.DateKey()),
		ExamIDs: ids,
	}, true
}

// capacityOverrun is a single-assignment soft conflict, emitted only when
// expected attendance actually exceeds capacity. Exactly-full rooms produce
// no record; the utilization tier on the placement handles the color bands.
func capacityOverrun(a models.Assignment) (models.Conflict, bool) {
	if a.RoomCapacity <= 0 || a.ExpectedStudents <= a.RoomCapacity {
		return models.Conflict{}, false
	}
	severity := models.SeverityMedium
	if float64(a.ExpectedStudents) >= 1.1*float64(a.RoomCapacity) {
		severity = models.SeverityHigh
	}
	ids := []string{a.ID}
	return models.Conflict{
		ID:       conflictID(models.CategoryCapacityOverrun, ids),
		Type:     models.ConflictTypeSoft,
		Category: models.CategoryCapacityOverrun,
		Severity: severity,
		Message: fmt.Sprintf("%s expects %d students but room %s seats %d",
			a.CourseCode, a.ExpectedStudents, a.Room, a.RoomCapacity),
		ExamIDs:        ids,
		AutoResolvable: true,
	}, true
}

func canonicalIDs(a, b string) []string {
	if a <= b {
		return []string{a, b}
	}
	return []string{b, a}
}

// conflictID is deterministic so the detector is idempotent: identical input
// yields byte-identical output.
func conflictID(category string, examIDs []string) string {
	return category + ":" + strings.Join(examIDs, "+")
}

func appendUnique(conflicts *[]models.Conflict, seen map[string]struct{}, c models.Conflict) {
	if _, ok := seen[c.ID]; ok {
		return
	}
	seen[c.ID] = struct{}{}
	*conflicts = append(*conflicts, c)
}

func intersect(a, b []string) []string {
	set := make(map[string]struct{}, len(a))
	for _, v := range a {
		set[v] = struct{}{}
	}
	var shared []string
	for _, v := range b {
		if _, ok := set[v]; ok {
			shared = append(shared, v)
		}
	}
	sort.Strings(shared)
	return shared
}

// rosterCache memoizes per-course lookups for one detection pass. The first
// transport error degrades the whole category instead of failing detection.
type rosterCache struct {
	lookup   rosterLookup
	cached   map[string]map[string]struct{}
	degraded bool
	err      error
}

func newRosterCache(lookup rosterLookup) *rosterCache {
	return &rosterCache{lookup: lookup, cached: make(map[string]map[string]struct{})}
}

func (r *rosterCache) get(ctx context.Context, courseCode string) (map[string]struct{}, bool) {
	if r.lookup == nil || r.degraded {
		return nil, false
	}
	if cached, ok := r.cached[courseCode]; ok {
		return cached, true
	}
	students, err := r.lookup.StudentsForCourse(ctx, courseCode)
	if err != nil {
		r.degraded = true
		r.err = err
		return nil, false
	}
	set := make(map[string]struct{}, len(students))
	for _, id := range students {
		set[id] = struct{}{}
	}
	r.cached[courseCode] = set
	return set, true
}
