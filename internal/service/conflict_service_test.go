package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Oluwafemifere/adaptive-exam-timetabling-sub003/internal/models"
	"github.com/Oluwafemifere/adaptive-exam-timetabling-sub003/pkg/errors"
)

type stubRoster struct {
	students map[string][]string
	err      error
	calls    int
}

func (s *stubRoster) StudentsForCourse(_ context.Context, courseCode string) ([]string, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.students[courseCode], nil
}

func conflictsOfCategory(result models.DetectionResult, category string) []models.Conflict {
	var out []models.Conflict
	for _, c := range result.Conflicts {
		if c.Category == category {
			out = append(out, c)
		}
	}
	return out
}

func TestDetectRoomClash(t *testing.T) {
	detector := NewConflictService(nil, zap.NewNop())
	a := testAssignment("a", "2025-03-10", 540, 660)
	a.Room = "LT-1"
	b := testAssignment("b", "2025-03-10", 600, 720)
	b.Room = "LT-1"
	c := testAssignment("c", "2025-03-10", 600, 720)
	c.Room = "LT-2"

	result := detector.Detect(context.Background(), []models.Assignment{a, b, c})

	clashes := conflictsOfCategory(result, models.CategoryRoomClash)
	require.Len(t, clashes, 1)
	assert.Equal(t, models.ConflictTypeHard, clashes[0].Type)
	assert.Equal(t, models.SeverityHigh, clashes[0].Severity)
	assert.Equal(t, []string{"a", "b"}, clashes[0].ExamIDs)
}

func TestDetectNoRoomClashWhenBackToBack(t *testing.T) {
	detector := NewConflictService(nil, zap.NewNop())
	a := testAssignment("a", "2025-03-10", 540, 660)
	a.Room = "LT-1"
	b := testAssignment("b", "2025-03-10", 660, 780)
	b.Room = "LT-1"

	result := detector.Detect(context.Background(), []models.Assignment{a, b})
	assert.Empty(t, conflictsOfCategory(result, models.CategoryRoomClash))
}

func TestDetectInvigilatorClash(t *testing.T) {
	detector := NewConflictService(nil, zap.NewNop())
	a := testAssignment("a", "2025-03-10", 540, 660)
	a.Invigilators = []string{"Dr. Okafor", "Ms. Adeyemi"}
	b := testAssignment("b", "2025-03-10", 600, 720)
	b.Invigilators = []string{"Prof. Bello", "Dr. Okafor"}

	result := detector.Detect(context.Background(), []models.Assignment{a, b})

	clashes := conflictsOfCategory(result, models.CategoryInvigilatorClash)
	require.Len(t, clashes, 1)
	assert.Contains(t, clashes[0].Message, "Dr. Okafor")
	assert.Equal(t, []string{"a", "b"}, clashes[0].ExamIDs)
	assert.True(t, clashes[0].AutoResolvable)
}

func TestDetectCapacityOverrunBoundaries(t *testing.T) {
	detector := NewConflictService(nil, zap.NewNop())
	mk := func(id string, expected, capacity int) models.Assignment {
		a := testAssignment(id, "2025-03-10", 540+60*len(id), 570+60*len(id))
		a.ExpectedStudents = expected
		a.RoomCapacity = capacity
		return a
	}

	// 95/100 is a utilization concern, not a conflict.
	result := detector.Detect(context.Background(), []models.Assignment{mk("a", 95, 100)})
	assert.Empty(t, result.Conflicts)

	// Exactly full is still fine.
	result = detector.Detect(context.Background(), []models.Assignment{mk("a", 100, 100)})
	assert.Empty(t, result.Conflicts)

	// One over is a soft conflict at medium severity.
	result = detector.Detect(context.Background(), []models.Assignment{mk("a", 101, 100)})
	overruns := conflictsOfCategory(result, models.CategoryCapacityOverrun)
	require.Len(t, overruns, 1)
	assert.Equal(t, models.ConflictTypeSoft, overruns[0].Type)
	assert.Equal(t, models.SeverityMedium, overruns[0].Severity)

	// Ten percent over escalates.
	result = detector.Detect(context.Background(), []models.Assignment{mk("a", 110, 100)})
	overruns = conflictsOfCategory(result, models.CategoryCapacityOverrun)
	require.Len(t, overruns, 1)
	assert.Equal(t, models.SeverityHigh, overruns[0].Severity)

	// Unknown capacity yields no record.
	result = detector.Detect(context.Background(), []models.Assignment{mk("a", 500, 0)})
	assert.Empty(t, result.Conflicts)
}

func TestDetectStudentClash(t *testing.T) {
	roster := &stubRoster{students: map[string][]string{
		"CSCa": {"s1", "s2", "s3"},
		"CSCb": {"s3", "s4"},
		"CSCc": {"s9"},
	}}
	detector := NewConflictService(roster, zap.NewNop())

	a := testAssignment("a", "2025-03-10", 540, 660)
	b := testAssignment("b", "2025-03-10", 600, 720)
	c := testAssignment("c", "2025-03-10", 600, 720)

	result := detector.Detect(context.Background(), []models.Assignment{a, b, c})

	clashes := conflictsOfCategory(result, models.CategoryStudentClash)
	require.Len(t, clashes, 1)
	assert.Equal(t, []string{"a", "b"}, clashes[0].ExamIDs)
	assert.Contains(t, clashes[0].Message, "1 student(s)")
	assert.Empty(t, result.SkippedChecks)

	// One lookup per distinct course, memoized across the pass.
	assert.Equal(t, 3, roster.calls)
}

func TestDetectWithoutRosterSkipsStudentClash(t *testing.T) {
	detector := NewConflictService(nil, zap.NewNop())
	result := detector.Detect(context.Background(), nil)
	assert.Equal(t, []string{models.CategoryStudentClash}, result.SkippedChecks)
}

func TestDetectRosterErrorDegradesCategory(t *testing.T) {
	roster := &stubRoster{err: errors.ErrInternal}
	detector := NewConflictService(roster, zap.NewNop())

	a := testAssignment("a", "2025-03-10", 540, 660)
	a.Room = "LT-1"
	b := testAssignment("b", "2025-03-10", 600, 720)
	b.Room = "LT-1"

	result := detector.Detect(context.Background(), []models.Assignment{a, b})

	// Room detection still works; only the student category is skipped.
	require.Len(t, conflictsOfCategory(result, models.CategoryRoomClash), 1)
	assert.Equal(t, []string{models.CategoryStudentClash}, result.SkippedChecks)
	assert.Equal(t, 1, roster.calls)
}

func TestDetectIgnoresInvalidIntervals(t *testing.T) {
	detector := NewConflictService(nil, zap.NewNop())
	a := testAssignment("a", "2025-03-10", 540, 540)
	a.Room = "LT-1"
	b := testAssignment("b", "2025-03-10", 500, 700)
	b.Room = "LT-1"

	result := detector.Detect(context.Background(), []models.Assignment{a, b})
	assert.Empty(t, result.Conflicts)
}

func TestDetectIdempotent(t *testing.T) {
	roster := &stubRoster{students: map[string][]string{
		"CSCa": {"s1"},
		"CSCb": {"s1"},
	}}
	detector := NewConflictService(roster, zap.NewNop())

	a := testAssignment("a", "2025-03-10", 540, 660)
	a.Room = "LT-1"
	a.Invigilators = []string{"Dr. Okafor"}
	b := testAssignment("b", "2025-03-10", 600, 720)
	b.Room = "LT-1"
	b.Invigilators = []string{"Dr. Okafor"}
	fixtures := []models.Assignment{b, a}

	first, err := json.Marshal(detector.Detect(context.Background(), fixtures))
	require.NoError(t, err)
	second, err := json.Marshal(detector.Detect(context.Background(), fixtures))
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestDetectOrderingIsInputOrderIndependent(t *testing.T) {
	detector := NewConflictService(nil, zap.NewNop())
	a := testAssignment("a", "2025-03-10", 540, 660)
	a.Room = "LT-1"
	b := testAssignment("b", "2025-03-10", 600, 720)
	b.Room = "LT-1"
	b.Invigilators = []string{"Dr. Okafor"}
	a.Invigilators = []string{"Dr. Okafor"}

	forward := detector.Detect(context.Background(), []models.Assignment{a, b})
	reversed := detector.Detect(context.Background(), []models.Assignment{b, a})
	assert.Equal(t, forward, reversed)
}
