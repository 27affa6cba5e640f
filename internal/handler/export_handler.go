package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/Oluwafemifere/adaptive-exam-timetabling-sub003/internal/service"
	"github.com/Oluwafemifere/adaptive-exam-timetabling-sub003/pkg/response"
)

type exportRenderer interface {
	Render(format service.ExportFormat) (*service.ExportResult, error)
}

// ExportHandler exposes timetable download endpoints.
type ExportHandler struct {
	service exportRenderer
}

// NewExportHandler constructs the handler.
func NewExportHandler(svc *service.ExportService) *ExportHandler {
	return &ExportHandler{service: svc}
}

// Export godoc
// @Summary Download the current timetable grid
// @Tags Timetable
// @Produce octet-stream
// @Param format query string false "csv or pdf" default(csv)
// @Success 200
// @Router /timetable/export [get]
func (h *ExportHandler) Export(c *gin.Context) {
	format := service.ExportFormat(c.DefaultQuery("format", string(service.ExportFormatCSV)))
	result, err := h.service.Render(format)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+result.Filename+`"`)
	c.Data(200, result.ContentType, result.Content)
}
