package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Oluwafemifere/adaptive-exam-timetabling-sub003/internal/dto"
	"github.com/Oluwafemifere/adaptive-exam-timetabling-sub003/internal/models"
	"github.com/Oluwafemifere/adaptive-exam-timetabling-sub003/internal/solver"
	appErrors "github.com/Oluwafemifere/adaptive-exam-timetabling-sub003/pkg/errors"
)

type solverGateway interface {
	SubmitJob(ctx context.Context, configurationID, sessionID string) (string, error)
	JobStatus(ctx context.Context, jobID string) (solver.StatusResponse, error)
	JobResult(ctx context.Context, jobID string) ([]solver.RawAssignment, error)
	CancelJob(ctx context.Context, jobID string) error
}

// JobServiceConfig governs polling behaviour.
type JobServiceConfig struct {
	PollInterval    time.Duration
	MaxPollFailures int
}

// JobService tracks one solver job at a time through
// queued → running → {completed, failed, cancelled}. Submitting a new job
// supersedes the old one: its poll loop is stopped and late responses for it
// are discarded by job id. On completion the raw result is fetched once,
// normalized, run through the detector and installed on the session.
type JobService struct {
	solver    solverGateway
	sessions  *SessionService
	detector  *ConflictService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger

	pollInterval time.Duration
	maxFailures  int

	mu            sync.Mutex
	active        *models.SolverJob
	cancelPoll    context.CancelFunc
	cancelPending bool
}

// NewJobService wires the coordinator dependencies.
func NewJobService(
	gateway solverGateway,
	sessions *SessionService,
	detector *ConflictService,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg JobServiceConfig,
) *JobService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 2 * time.Second
	}
	if cfg.MaxPollFailures <= 0 {
		cfg.MaxPollFailures = 5
	}
	return &JobService{
		solver:       gateway,
		sessions:     sessions,
		detector:     detector,
		metrics:      metrics,
		validator:    validate,
		logger:       logger,
		pollInterval: cfg.PollInterval,
		maxFailures:  cfg.MaxPollFailures,
	}
}

// Submit sends a configuration to the solver and starts tracking the
// returned job, superseding any previously active one.
func (s *JobService) Submit(ctx context.Context, req dto.SubmitJobRequest) (*dto.JobSnapshot, error) {
	if req.SessionID == "" {
		req.SessionID = uuid.NewString()
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid job submission payload")
	}

	jobID, err := s.solver.SubmitJob(ctx, req.ConfigurationID, req.SessionID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrSolverUnavailable.Code, appErrors.ErrSolverUnavailable.Status, "job submission failed")
	}

	pollCtx, cancel := context.WithCancel(context.Background())

	s.mu.Lock()
	if s.cancelPoll != nil {
		s.cancelPoll()
	}
	s.cancelPoll = cancel
	s.cancelPending = false
	s.active = &models.SolverJob{
		ID:          jobID,
		SessionID:   req.SessionID,
		Status:      models.JobStatusQueued,
		SubmittedAt: time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}
	snapshot := *s.active
	s.sessions.Clear()
	s.mu.Unlock()

	s.logger.Info("solver job submitted",
		zap.String("job_id", jobID),
		zap.String("session_id", req.SessionID),
		zap.String("configuration_id", req.ConfigurationID))

	go s.pollLoop(pollCtx, jobID)

	return dto.SnapshotFromJob(&snapshot), nil
}

// Active returns the tracked job, or ErrNoActiveJob.
func (s *JobService) Active() (*dto.JobSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == nil {
		return nil, appErrors.Clone(appErrors.ErrNoActiveJob, "")
	}
	snapshot := *s.active
	return dto.SnapshotFromJob(&snapshot), nil
}

// Cancel requests cancellation of the tracked job. The local state flips to
// cancelled optimistically; a poll reporting completed or failed before the
// solver confirms the cancellation still wins.
func (s *JobService) Cancel(ctx context.Context) error {
	s.mu.Lock()
	if s.active == nil {
		s.mu.Unlock()
		return appErrors.Clone(appErrors.ErrNoActiveJob, "")
	}
	if s.active.Status.IsTerminal() {
		s.mu.Unlock()
		return appErrors.Clone(appErrors.ErrJobTerminal, "")
	}
	jobID := s.active.ID
	s.active.Status = models.JobStatusCancelled
	s.active.UpdatedAt = time.Now().UTC()
	s.cancelPending = true
	s.mu.Unlock()

	go func() {
		callCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.solver.CancelJob(callCtx, jobID); err != nil {
			s.logger.Warn("cancel request failed", zap.String("job_id", jobID), zap.Error(err))
		}
	}()

	return nil
}

// Stop halts the active poll loop. Used on shutdown.
func (s *JobService) Stop() {
	s.mu.Lock()
	if s.cancelPoll != nil {
		s.cancelPoll()
		s.cancelPoll = nil
	}
	s.mu.Unlock()
}

func (s *JobService) pollLoop(ctx context.Context, jobID string) {
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	failures := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		status, err := s.solver.JobStatus(ctx, jobID)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			failures++
			s.metrics.RecordSolverPoll(false)
			s.logger.Warn("job status poll failed",
				zap.String("job_id", jobID), zap.Int("failures", failures), zap.Error(err))
			if failures >= s.maxFailures {
				message := fmt.Sprintf("lost contact with solver: %v", err)
				s.applyStatus(jobID, models.JobStatusUpdate{
					Status:       models.JobStatusFailed,
					ErrorMessage: &message,
				})
				return
			}
			continue
		}
		failures = 0
		s.metrics.RecordSolverPoll(true)

		completed := s.applyStatus(jobID, translateStatus(status))
		if completed {
			s.handleCompletion(ctx, jobID)
			return
		}
		if s.terminal(jobID) {
			return
		}
	}
}

// applyStatus is the coordinator's state machine. Updates for a job that is
// not the tracked one, or for a job already terminal, are discarded; the one
// exception is an unconfirmed optimistic cancellation, which completed and
// failed both outrank. Returns true when the job transitions to completed.
func (s *JobService) applyStatus(jobID string, update models.JobStatusUpdate) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active == nil || s.active.ID != jobID {
		return false
	}
	if s.active.Status.IsTerminal() {
		overrides := s.cancelPending && s.active.Status == models.JobStatusCancelled &&
			(update.Status == models.JobStatusCompleted || update.Status == models.JobStatusFailed)
		if !overrides {
			if update.Status == models.JobStatusCancelled {
				s.cancelPending = false
			}
			return false
		}
	}

	wasCompleted := s.active.Status == models.JobStatusCompleted
	s.active.Status = update.Status
	if update.ProgressPercentage > s.active.ProgressPercentage {
		// progress is monotonically non-decreasing while running
		s.active.ProgressPercentage = update.ProgressPercentage
	}
	if update.SolverPhase != nil {
		s.active.SolverPhase = update.SolverPhase
	}
	if update.Status == models.JobStatusFailed {
		s.active.ErrorMessage = update.ErrorMessage
	}
	if update.Status == models.JobStatusCancelled || update.Status.IsTerminal() {
		s.cancelPending = false
	}
	s.active.UpdatedAt = time.Now().UTC()

	return update.Status == models.JobStatusCompleted && !wasCompleted
}

func (s *JobService) terminal(jobID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == nil || s.active.ID != jobID {
		return true
	}
	return s.active.Status.IsTerminal() && !s.cancelPending
}

// handleCompletion fetches the result payload once, normalizes it and hands
// the snapshot to the session. Runs off the poll loop's final iteration.
func (s *JobService) handleCompletion(ctx context.Context, jobID string) {
	raw, err := s.solver.JobResult(ctx, jobID)
	if err != nil {
		message := fmt.Sprintf("failed to fetch job result: %v", err)
		s.applyStatus(jobID, models.JobStatusUpdate{
			Status:       models.JobStatusFailed,
			ErrorMessage: &message,
		})
		return
	}

	assignments, invalid := NormalizeAssignments(raw)
	detection := s.detector.Detect(ctx, assignments)

	// A new submission may have superseded this job while the result was in
	// flight. The check and install run under the same lock that Submit holds
	// while swapping the tracked job and clearing the session, so a result
	// for anything but the tracked, still-completed job is discarded.
	s.mu.Lock()
	if s.active == nil || s.active.ID != jobID || s.active.Status != models.JobStatusCompleted {
		s.mu.Unlock()
		s.logger.Info("discarding result of superseded job", zap.String("job_id", jobID))
		return
	}
	s.sessions.Replace(ScheduleSnapshot{
		JobID:       jobID,
		Assignments: assignments,
		Invalid:     invalid,
		Detection:   detection,
	})
	s.mu.Unlock()

	s.metrics.SetConflictCounts(detection.Conflicts)

	s.logger.Info("schedule result loaded",
		zap.String("job_id", jobID),
		zap.Int("assignments", len(assignments)),
		zap.Int("invalid", len(invalid)),
		zap.Int("conflicts", len(detection.Conflicts)))
}

func translateStatus(resp solver.StatusResponse) models.JobStatusUpdate {
	update := models.JobStatusUpdate{
		ProgressPercentage: resp.ProgressPercentage,
		SolverPhase:        resp.SolverPhase,
		ErrorMessage:       resp.ErrorMessage,
	}
	switch models.JobStatus(resp.Status) {
	case models.JobStatusQueued, models.JobStatusRunning,
		models.JobStatusCompleted, models.JobStatusFailed, models.JobStatusCancelled:
		update.Status = models.JobStatus(resp.Status)
	default:
		update.Status = models.JobStatusRunning
	}
	return update
}

// NormalizeAssignments converts the solver's raw payload into Assignment
// entities. Records that cannot be trusted (wrong kind, missing identity,
// unparseable date or times, non-positive duration) land in the invalid
// side channel instead of being dropped or passed through.
func NormalizeAssignments(raw []solver.RawAssignment) ([]models.Assignment, []models.InvalidAssignment) {
	assignments := make([]models.Assignment, 0, len(raw))
	var invalid []models.InvalidAssignment

	reject := func(r solver.RawAssignment, reason string) {
		invalid = append(invalid, models.InvalidAssignment{
			ID:         r.ID,
			CourseCode: r.CourseCode,
			Reason:     reason,
		})
	}

	for _, r := range raw {
		if r.Kind != "" && r.Kind != "assignment" {
			reject(r, fmt.Sprintf("unsupported record kind %q", r.Kind))
			continue
		}
		if r.ID == "" || r.CourseCode == "" || r.Date == "" {
			reject(r, "missing required identifying fields")
			continue
		}
		date, err := time.Parse("2006-01-02", r.Date)
		if err != nil {
			reject(r, fmt.Sprintf("unparseable date %q", r.Date))
			continue
		}
		start, err := models.ParseClock(r.StartTime)
		if err != nil {
			reject(r, fmt.Sprintf("unparseable start time %q", r.StartTime))
			continue
		}
		end, err := models.ParseClock(r.EndTime)
		if err != nil {
			reject(r, fmt.Sprintf("unparseable end time %q", r.EndTime))
			continue
		}
		if end <= start {
			reject(r, "end time is not after start time")
			continue
		}

		duration := r.DurationMinutes
		if duration <= 0 {
			duration = end - start
		}

		assignments = append(assignments, models.Assignment{
			ID:               r.ID,
			ExamID:           r.ExamID,
			CourseCode:       r.CourseCode,
			CourseName:       r.CourseName,
			Date:             date.UTC(),
			StartMinute:      start,
			EndMinute:        end,
			DurationMinutes:  duration,
			ExpectedStudents: clampNonNegative(r.ExpectedStudents),
			RoomCapacity:     clampNonNegative(r.RoomCapacity),
			Room:             r.Room,
			Building:         r.Building,
			Invigilators:     models.ParseInvigilators(r.Invigilator),
			Departments:      r.Departments,
			FacultyName:      r.FacultyName,
			Instructor:       r.Instructor,
		})
	}
	return assignments, invalid
}

func clampNonNegative(v int) int {
	if v < 0 {
		return 0
	}
	return v
}
