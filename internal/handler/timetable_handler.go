package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Oluwafemifere/adaptive-exam-timetabling-sub003/internal/dto"
	"github.com/Oluwafemifere/adaptive-exam-timetabling-sub003/internal/models"
	"github.com/Oluwafemifere/adaptive-exam-timetabling-sub003/internal/service"
	"github.com/Oluwafemifere/adaptive-exam-timetabling-sub003/pkg/response"
)

type timetableProvider interface {
	Grid(filter models.GridFilter) (*dto.GridResponse, error)
	Conflicts() (*dto.ConflictsResponse, error)
	Rooms() ([]models.BuildingGroup, error)
	Faculty() ([]models.FacultyGroup, error)
	Heatmap() (*dto.HeatmapResponse, error)
}

// TimetableHandler exposes the grid, conflict and grouped view endpoints.
type TimetableHandler struct {
	service timetableProvider
}

// NewTimetableHandler constructs the handler.
func NewTimetableHandler(svc *service.TimetableService) *TimetableHandler {
	return &TimetableHandler{service: svc}
}

// Grid godoc
// @Summary Render the primary timetable grid for the filtered view
// @Tags Timetable
// @Produce json
// @Param departments query string false "Comma-separated department filter"
// @Param rooms query string false "Comma-separated room filter"
// @Param faculty query string false "Faculty filter"
// @Success 200 {object} response.Envelope
// @Router /timetable/grid [get]
func (h *TimetableHandler) Grid(c *gin.Context) {
	filter := models.GridFilter{
		Departments: splitParam(c.Query("departments")),
		Rooms:       splitParam(c.Query("rooms")),
		Faculty:     strings.TrimSpace(c.Query("faculty")),
	}
	grid, err := h.service.Grid(filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grid)
}

// Conflicts godoc
// @Summary List conflicts for the whole schedule
// @Tags Timetable
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /timetable/conflicts [get]
func (h *TimetableHandler) Conflicts(c *gin.Context) {
	conflicts, err := h.service.Conflicts()
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, conflicts)
}

// Rooms godoc
// @Summary Group assignments by building and room
// @Tags Timetable
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /timetable/views/rooms [get]
func (h *TimetableHandler) Rooms(c *gin.Context) {
	groups, err := h.service.Rooms()
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, groups)
}

// Faculty godoc
// @Summary Group assignments by faculty, department and invigilator
// @Tags Timetable
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /timetable/views/faculty [get]
func (h *TimetableHandler) Faculty(c *gin.Context) {
	groups, err := h.service.Faculty()
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, groups)
}

// Heatmap godoc
// @Summary Aggregate assignment density by day of week and time bucket
// @Tags Timetable
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /timetable/heatmap [get]
func (h *TimetableHandler) Heatmap(c *gin.Context) {
	heatmap, err := h.service.Heatmap()
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, heatmap)
}

func splitParam(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
