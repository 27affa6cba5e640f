package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Oluwafemifere/adaptive-exam-timetabling-sub003/internal/dto"
	"github.com/Oluwafemifere/adaptive-exam-timetabling-sub003/internal/service"
	appErrors "github.com/Oluwafemifere/adaptive-exam-timetabling-sub003/pkg/errors"
	"github.com/Oluwafemifere/adaptive-exam-timetabling-sub003/pkg/response"
)

type jobCoordinator interface {
	Submit(ctx context.Context, req dto.SubmitJobRequest) (*dto.JobSnapshot, error)
	Active() (*dto.JobSnapshot, error)
	Cancel(ctx context.Context) error
}

// JobHandler exposes solver job tracking endpoints.
type JobHandler struct {
	service jobCoordinator
}

// NewJobHandler constructs the handler.
func NewJobHandler(svc *service.JobService) *JobHandler {
	return &JobHandler{service: svc}
}

// Submit godoc
// @Summary Submit a scheduling job and start tracking it
// @Tags Jobs
// @Accept json
// @Produce json
// @Param payload body dto.SubmitJobRequest true "Job submission payload"
// @Success 201 {object} response.Envelope
// @Router /jobs [post]
func (h *JobHandler) Submit(c *gin.Context) {
	var req dto.SubmitJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid job payload"))
		return
	}
	snapshot, err := h.service.Submit(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, snapshot)
}

// Active godoc
// @Summary Get the tracked job's current state
// @Tags Jobs
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /jobs/active [get]
func (h *JobHandler) Active(c *gin.Context) {
	snapshot, err := h.service.Active()
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, snapshot)
}

// Cancel godoc
// @Summary Request cancellation of the tracked job
// @Tags Jobs
// @Success 202 {object} response.Envelope
// @Router /jobs/active/cancel [post]
func (h *JobHandler) Cancel(c *gin.Context) {
	if err := h.service.Cancel(c.Request.Context()); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, gin.H{"status": "cancellation requested"})
}
