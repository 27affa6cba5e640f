package solver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/Oluwafemifere/adaptive-exam-timetabling-sub003/pkg/config"
)

// RawAssignment is the wire shape of one scheduled exam as the solver backend
// returns it. Field translation into the core Assignment entity happens in
// the coordinator's normalization step, never downstream.
type RawAssignment struct {
	Kind             string   `json:"kind"`
	ID               string   `json:"id"`
	ExamID           string   `json:"exam_id"`
	CourseCode       string   `json:"course_code"`
	CourseName       string   `json:"course_name"`
	Date             string   `json:"date"`
	StartTime        string   `json:"start_time"`
	EndTime          string   `json:"end_time"`
	DurationMinutes  int      `json:"duration_minutes"`
	ExpectedStudents int      `json:"expected_students"`
	RoomCapacity     int      `json:"room_capacity"`
	Room             string   `json:"room"`
	Building         string   `json:"building"`
	Invigilator      string   `json:"invigilator"`
	Departments      []string `json:"departments"`
	FacultyName      string   `json:"faculty_name"`
	Instructor       string   `json:"instructor"`
}

// StatusResponse is the solver's answer to a job status poll.
type StatusResponse struct {
	JobID              string  `json:"job_id"`
	Status             string  `json:"status"`
	ProgressPercentage int     `json:"progress_percentage"`
	SolverPhase        *string `json:"solver_phase,omitempty"`
	ErrorMessage       *string `json:"error_message,omitempty"`
}

type submitRequest struct {
	ConfigurationID string `json:"configuration_id"`
	SessionID       string `json:"session_id"`
}

type submitResponse struct {
	JobID string `json:"job_id"`
}

type resultResponse struct {
	Assignments []RawAssignment `json:"assignments"`
}

// Client talks to the external scheduling solver over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

// NewClient configures a solver client from config.
func NewClient(cfg config.SolverConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: cfg.BaseURL,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// SubmitJob submits a configuration for solving and returns the job id.
func (c *Client) SubmitJob(ctx context.Context, configurationID, sessionID string) (string, error) {
	payload, err := json.Marshal(submitRequest{ConfigurationID: configurationID, SessionID: sessionID})
	if err != nil {
		return "", fmt.Errorf("encode submit payload: %w", err)
	}
	var resp submitResponse
	if err := c.do(ctx, http.MethodPost, "/jobs", bytes.NewReader(payload), &resp); err != nil {
		return "", err
	}
	if resp.JobID == "" {
		return "", fmt.Errorf("solver returned empty job id")
	}
	return resp.JobID, nil
}

// JobStatus polls the current state of a job.
func (c *Client) JobStatus(ctx context.Context, jobID string) (StatusResponse, error) {
	var resp StatusResponse
	path := "/jobs/" + url.PathEscape(jobID)
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return StatusResponse{}, err
	}
	return resp, nil
}

// JobResult fetches the raw assignment payload of a completed job.
func (c *Client) JobResult(ctx context.Context, jobID string) ([]RawAssignment, error) {
	var resp resultResponse
	path := "/jobs/" + url.PathEscape(jobID) + "/result"
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Assignments, nil
}

// CancelJob requests cancellation. Fire-and-forget: the solver may still
// complete the job before honoring the request.
func (c *Client) CancelJob(ctx context.Context, jobID string) error {
	path := "/jobs/" + url.PathEscape(jobID) + "/cancel"
	return c.do(ctx, http.MethodPost, path, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build solver request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("solver request %s %s: %w", method, path, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("solver %s %s returned %d: %s", method, path, resp.StatusCode, string(snippet))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode solver response: %w", err)
	}
	return nil
}
