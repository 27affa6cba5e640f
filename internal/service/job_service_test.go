package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Oluwafemifere/adaptive-exam-timetabling-sub003/internal/dto"
	"github.com/Oluwafemifere/adaptive-exam-timetabling-sub003/internal/models"
	"github.com/Oluwafemifere/adaptive-exam-timetabling-sub003/internal/solver"
	appErrors "github.com/Oluwafemifere/adaptive-exam-timetabling-sub003/pkg/errors"
)

type fakeGateway struct {
	mu        sync.Mutex
	nextJobID string
	submitErr error
	statuses  []solver.StatusResponse
	statusIdx int
	statusErr error
	result    []solver.RawAssignment
	resultErr error
	cancelled []string
}

func (f *fakeGateway) SubmitJob(_ context.Context, _, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.submitErr != nil {
		return "", f.submitErr
	}
	return f.nextJobID, nil
}

func (f *fakeGateway) JobStatus(_ context.Context, _ string) (solver.StatusResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.statusErr != nil {
		return solver.StatusResponse{}, f.statusErr
	}
	if len(f.statuses) == 0 {
		return solver.StatusResponse{Status: string(models.JobStatusRunning)}, nil
	}
	resp := f.statuses[f.statusIdx]
	if f.statusIdx < len(f.statuses)-1 {
		f.statusIdx++
	}
	return resp, nil
}

func (f *fakeGateway) JobResult(_ context.Context, _ string) ([]solver.RawAssignment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.resultErr != nil {
		return nil, f.resultErr
	}
	return f.result, nil
}

func (f *fakeGateway) CancelJob(_ context.Context, jobID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancelled = append(f.cancelled, jobID)
	return nil
}

func newTestJobService(gateway *fakeGateway) (*JobService, *SessionService) {
	sessions := NewSessionService()
	detector := NewConflictService(nil, zap.NewNop())
	svc := NewJobService(gateway, sessions, detector, nil, nil, zap.NewNop(), JobServiceConfig{
		PollInterval:    5 * time.Millisecond,
		MaxPollFailures: 3,
	})
	return svc, sessions
}

func TestSubmitStartsTracking(t *testing.T) {
	gateway := &fakeGateway{nextJobID: "job-1"}
	svc, _ := newTestJobService(gateway)
	defer svc.Stop()

	snapshot, err := svc.Submit(context.Background(), dto.SubmitJobRequest{
		ConfigurationID: "cfg-1",
		SessionID:       "sess-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "job-1", snapshot.ID)
	assert.Equal(t, models.JobStatusQueued, snapshot.Status)

	active, err := svc.Active()
	require.NoError(t, err)
	assert.Equal(t, "job-1", active.ID)
}

func TestSubmitGeneratesSessionID(t *testing.T) {
	gateway := &fakeGateway{nextJobID: "job-1"}
	svc, _ := newTestJobService(gateway)
	defer svc.Stop()

	snapshot, err := svc.Submit(context.Background(), dto.SubmitJobRequest{ConfigurationID: "cfg-1"})
	require.NoError(t, err)
	assert.NotEmpty(t, snapshot.SessionID)
}

func TestSubmitRejectsMissingConfiguration(t *testing.T) {
	gateway := &fakeGateway{nextJobID: "job-1"}
	svc, _ := newTestJobService(gateway)
	defer svc.Stop()

	_, err := svc.Submit(context.Background(), dto.SubmitJobRequest{SessionID: "sess-1"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestSubmitSolverUnavailable(t *testing.T) {
	gateway := &fakeGateway{submitErr: errors.New("connection refused")}
	svc, _ := newTestJobService(gateway)
	defer svc.Stop()

	_, err := svc.Submit(context.Background(), dto.SubmitJobRequest{
		ConfigurationID: "cfg-1",
		SessionID:       "sess-1",
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrSolverUnavailable.Code, appErr.Code)
}

func TestSubmitSupersedesPreviousJob(t *testing.T) {
	gateway := &fakeGateway{nextJobID: "job-1"}
	svc, sessions := newTestJobService(gateway)
	defer svc.Stop()

	_, err := svc.Submit(context.Background(), dto.SubmitJobRequest{
		ConfigurationID: "cfg-1", SessionID: "sess-1",
	})
	require.NoError(t, err)

	sessions.Replace(ScheduleSnapshot{JobID: "job-1"})

	gateway.mu.Lock()
	gateway.nextJobID = "job-2"
	gateway.mu.Unlock()

	_, err = svc.Submit(context.Background(), dto.SubmitJobRequest{
		ConfigurationID: "cfg-2", SessionID: "sess-1",
	})
	require.NoError(t, err)

	active, err := svc.Active()
	require.NoError(t, err)
	assert.Equal(t, "job-2", active.ID)

	// The superseded job's schedule is gone and its late updates are ignored.
	assert.Nil(t, sessions.Snapshot())
	assert.False(t, svc.applyStatus("job-1", models.JobStatusUpdate{Status: models.JobStatusCompleted}))
}

func TestActiveWithoutJob(t *testing.T) {
	svc, _ := newTestJobService(&fakeGateway{})
	_, err := svc.Active()
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNoActiveJob.Code, appErr.Code)
}

func TestApplyStatusDiscardsStaleAfterTerminal(t *testing.T) {
	svc, _ := newTestJobService(&fakeGateway{nextJobID: "job-1"})
	defer svc.Stop()
	svc.active = &models.SolverJob{ID: "job-1", Status: models.JobStatusRunning}

	require.True(t, svc.applyStatus("job-1", models.JobStatusUpdate{
		Status:             models.JobStatusCompleted,
		ProgressPercentage: 100,
	}))

	// A delayed running(50%) response must not regress the terminal state.
	assert.False(t, svc.applyStatus("job-1", models.JobStatusUpdate{
		Status:             models.JobStatusRunning,
		ProgressPercentage: 50,
	}))

	active, err := svc.Active()
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusCompleted, active.Status)
	assert.Equal(t, 100, active.ProgressPercentage)
}

func TestApplyStatusProgressMonotonic(t *testing.T) {
	svc, _ := newTestJobService(&fakeGateway{})
	defer svc.Stop()
	svc.active = &models.SolverJob{ID: "job-1", Status: models.JobStatusQueued}

	svc.applyStatus("job-1", models.JobStatusUpdate{Status: models.JobStatusRunning, ProgressPercentage: 60})
	svc.applyStatus("job-1", models.JobStatusUpdate{Status: models.JobStatusRunning, ProgressPercentage: 40})

	active, err := svc.Active()
	require.NoError(t, err)
	assert.Equal(t, 60, active.ProgressPercentage)
}

func TestCancelWithoutJob(t *testing.T) {
	svc, _ := newTestJobService(&fakeGateway{})
	err := svc.Cancel(context.Background())
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNoActiveJob.Code, appErr.Code)
}

func TestCancelTerminalJob(t *testing.T) {
	svc, _ := newTestJobService(&fakeGateway{})
	svc.active = &models.SolverJob{ID: "job-1", Status: models.JobStatusCompleted}

	err := svc.Cancel(context.Background())
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrJobTerminal.Code, appErr.Code)
}

func TestCancelOptimisticThenConfirmed(t *testing.T) {
	gateway := &fakeGateway{}
	svc, _ := newTestJobService(gateway)
	svc.active = &models.SolverJob{ID: "job-1", Status: models.JobStatusRunning}

	require.NoError(t, svc.Cancel(context.Background()))

	active, err := svc.Active()
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusCancelled, active.Status)

	// Solver confirms: the pending flag clears and state stays cancelled.
	svc.applyStatus("job-1", models.JobStatusUpdate{Status: models.JobStatusCancelled})
	svc.mu.Lock()
	assert.False(t, svc.cancelPending)
	svc.mu.Unlock()
}

func TestCancelLosesRaceToCompletion(t *testing.T) {
	gateway := &fakeGateway{}
	svc, _ := newTestJobService(gateway)
	svc.active = &models.SolverJob{ID: "job-1", Status: models.JobStatusRunning}

	require.NoError(t, svc.Cancel(context.Background()))

	// The solver finished before honoring the cancellation; completed wins
	// over the unconfirmed local cancelled state.
	completed := svc.applyStatus("job-1", models.JobStatusUpdate{Status: models.JobStatusCompleted})
	assert.True(t, completed)

	active, err := svc.Active()
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusCompleted, active.Status)

	// Once settled, nothing overrides the terminal state again.
	assert.False(t, svc.applyStatus("job-1", models.JobStatusUpdate{Status: models.JobStatusCancelled}))
	active, _ = svc.Active()
	assert.Equal(t, models.JobStatusCompleted, active.Status)
}

func TestCancelLosesRaceToFailure(t *testing.T) {
	svc, _ := newTestJobService(&fakeGateway{})
	svc.active = &models.SolverJob{ID: "job-1", Status: models.JobStatusRunning}

	require.NoError(t, svc.Cancel(context.Background()))

	message := "out of memory"
	svc.applyStatus("job-1", models.JobStatusUpdate{
		Status:       models.JobStatusFailed,
		ErrorMessage: &message,
	})

	active, err := svc.Active()
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusFailed, active.Status)
	require.NotNil(t, active.ErrorMessage)
	assert.Equal(t, "out of memory", *active.ErrorMessage)
}

func TestPollLoopLoadsCompletedResult(t *testing.T) {
	phase := "optimizing"
	gateway := &fakeGateway{
		nextJobID: "job-1",
		statuses: []solver.StatusResponse{
			{Status: string(models.JobStatusQueued)},
			{Status: string(models.JobStatusRunning), ProgressPercentage: 50, SolverPhase: &phase},
			{Status: string(models.JobStatusCompleted), ProgressPercentage: 100},
		},
		result: []solver.RawAssignment{
			{
				ID:         "a1",
				CourseCode: "CSC101",
				Date:       "2025-03-10",
				StartTime:  "09:00",
				EndTime:    "11:00",
			},
		},
	}
	svc, sessions := newTestJobService(gateway)
	defer svc.Stop()

	_, err := svc.Submit(context.Background(), dto.SubmitJobRequest{
		ConfigurationID: "cfg-1", SessionID: "sess-1",
	})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		snapshot := sessions.Snapshot()
		return snapshot != nil && snapshot.JobID == "job-1"
	}, 2*time.Second, 5*time.Millisecond)

	snapshot := sessions.Snapshot()
	require.Len(t, snapshot.Assignments, 1)
	assert.Equal(t, "CSC101", snapshot.Assignments[0].CourseCode)

	active, err := svc.Active()
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusCompleted, active.Status)
	assert.Equal(t, 100, active.ProgressPercentage)
}

func TestPollLoopFailsAfterRepeatedErrors(t *testing.T) {
	gateway := &fakeGateway{
		nextJobID: "job-1",
		statusErr: errors.New("connection reset"),
	}
	svc, _ := newTestJobService(gateway)
	defer svc.Stop()

	_, err := svc.Submit(context.Background(), dto.SubmitJobRequest{
		ConfigurationID: "cfg-1", SessionID: "sess-1",
	})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		active, err := svc.Active()
		return err == nil && active.Status == models.JobStatusFailed
	}, 2*time.Second, 5*time.Millisecond)

	active, _ := svc.Active()
	require.NotNil(t, active.ErrorMessage)
	assert.Contains(t, *active.ErrorMessage, "lost contact with solver")
}

func TestHandleCompletionDiscardsSupersededResult(t *testing.T) {
	gateway := &fakeGateway{result: []solver.RawAssignment{{
		ID: "a1", CourseCode: "CSC101", Date: "2025-03-10", StartTime: "09:00", EndTime: "11:00",
	}}}
	svc, sessions := newTestJobService(gateway)

	// job-A's result fetch is still in flight when job-B supersedes it and
	// clears the session. The late result must not be installed.
	svc.active = &models.SolverJob{ID: "job-B", Status: models.JobStatusRunning}
	sessions.Clear()

	svc.handleCompletion(context.Background(), "job-A")

	assert.Nil(t, sessions.Snapshot())
}

func TestHandleCompletionDiscardsWhenNoLongerCompleted(t *testing.T) {
	gateway := &fakeGateway{result: []solver.RawAssignment{{
		ID: "a1", CourseCode: "CSC101", Date: "2025-03-10", StartTime: "09:00", EndTime: "11:00",
	}}}
	svc, sessions := newTestJobService(gateway)
	svc.active = &models.SolverJob{ID: "job-A", Status: models.JobStatusCancelled}

	svc.handleCompletion(context.Background(), "job-A")

	assert.Nil(t, sessions.Snapshot())
}

func TestHandleCompletionInstallsTrackedResult(t *testing.T) {
	gateway := &fakeGateway{result: []solver.RawAssignment{{
		ID: "a1", CourseCode: "CSC101", Date: "2025-03-10", StartTime: "09:00", EndTime: "11:00",
	}}}
	svc, sessions := newTestJobService(gateway)
	svc.active = &models.SolverJob{ID: "job-A", Status: models.JobStatusCompleted}

	svc.handleCompletion(context.Background(), "job-A")

	snapshot := sessions.Snapshot()
	require.NotNil(t, snapshot)
	assert.Equal(t, "job-A", snapshot.JobID)
	require.Len(t, snapshot.Assignments, 1)
}

func TestNormalizeAssignments(t *testing.T) {
	raw := []solver.RawAssignment{
		{
			ID:               "a1",
			ExamID:           "e1",
			CourseCode:       "CSC101",
			Date:             "2025-03-10",
			StartTime:        "09:00",
			EndTime:          "11:00",
			ExpectedStudents: 80,
			RoomCapacity:     100,
			Room:             "LT-1",
			Invigilator:      "Dr. Okafor, Ms. Adeyemi, Dr. Okafor",
		},
		{Kind: "note", ID: "a2", CourseCode: "CSC102"},
		{ID: "a3", CourseCode: "CSC103", Date: "not-a-date", StartTime: "09:00", EndTime: "10:00"},
		{ID: "a4", CourseCode: "CSC104", Date: "2025-03-10", StartTime: "09:00", EndTime: "09:00"},
		{ID: "", CourseCode: "CSC105", Date: "2025-03-10", StartTime: "09:00", EndTime: "10:00"},
	}

	assignments, invalid := NormalizeAssignments(raw)

	require.Len(t, assignments, 1)
	a := assignments[0]
	assert.Equal(t, "a1", a.ID)
	assert.Equal(t, 540, a.StartMinute)
	assert.Equal(t, 660, a.EndMinute)
	assert.Equal(t, 120, a.DurationMinutes)
	assert.Equal(t, []string{"Dr. Okafor", "Ms. Adeyemi"}, a.Invigilators)

	require.Len(t, invalid, 4)
	reasons := make(map[string]string, len(invalid))
	for _, inv := range invalid {
		reasons[inv.CourseCode] = inv.Reason
	}
	assert.Contains(t, reasons["CSC102"], "unsupported record kind")
	assert.Contains(t, reasons["CSC103"], "unparseable date")
	assert.Contains(t, reasons["CSC104"], "end time is not after start time")
	assert.Contains(t, reasons["CSC105"], "missing required")
}

func TestNormalizeAssignmentsClampsNegativeCounts(t *testing.T) {
	assignments, invalid := NormalizeAssignments([]solver.RawAssignment{
		{
			ID:               "a1",
			CourseCode:       "CSC101",
			Date:             "2025-03-10",
			StartTime:        "09:00",
			EndTime:          "10:00",
			ExpectedStudents: -5,
			RoomCapacity:     -1,
			DurationMinutes:  -30,
		},
	})
	require.Empty(t, invalid)
	require.Len(t, assignments, 1)
	assert.Equal(t, 0, assignments[0].ExpectedStudents)
	assert.Equal(t, 0, assignments[0].RoomCapacity)
	assert.Equal(t, 60, assignments[0].DurationMinutes)
}
