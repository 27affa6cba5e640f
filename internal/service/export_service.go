package service

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Oluwafemifere/adaptive-exam-timetabling-sub003/internal/dto"
	"github.com/Oluwafemifere/adaptive-exam-timetabling-sub003/internal/models"
	appErrors "github.com/Oluwafemifere/adaptive-exam-timetabling-sub003/pkg/errors"
	"github.com/Oluwafemifere/adaptive-exam-timetabling-sub003/pkg/export"
)

// ExportFormat enumerates supported timetable export formats.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

// ExportResult is a rendered document ready for download.
type ExportResult struct {
	Content     []byte
	ContentType string
	Filename    string
}

// ExportService renders the laid-out grid as a downloadable document.
type ExportService struct {
	timetable *TimetableService
	csv       *export.CSVExporter
	pdf       *export.PDFExporter
}

// NewExportService wires the exporters.
func NewExportService(timetable *TimetableService) *ExportService {
	return &ExportService{
		timetable: timetable,
		csv:       export.NewCSVExporter(),
		pdf:       export.NewPDFExporter(true),
	}
}

// Render produces the current grid in the requested format.
func (s *ExportService) Render(format ExportFormat) (*ExportResult, error) {
	grid, err := s.timetable.Grid(s.timetable.sessions.Filter())
	if err != nil {
		return nil, err
	}

	data := gridDataset(grid.Placements, grid.Conflicts)

	switch format {
	case ExportFormatCSV:
		content, err := s.csv.Render(data)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "csv export failed")
		}
		return &ExportResult{Content: content, ContentType: "text/csv", Filename: "timetable.csv"}, nil
	case ExportFormatPDF:
		content, err := s.pdf.Render(data, "Exam Timetable")
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "pdf export failed")
		}
		return &ExportResult{Content: content, ContentType: "application/pdf", Filename: "timetable.pdf"}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
}

func gridDataset(placements []dto.PlacedAssignment, conflicts []models.Conflict) export.Dataset {
	conflicted := make(map[string]bool)
	for _, c := range conflicts {
		for _, id := range c.ExamIDs {
			conflicted[id] = true
		}
	}

	headers := []string{"Date", "Start", "End", "Course", "Room", "Invigilators", "Level", "Conflicted"}
	rows := make([]map[string]string, 0, len(placements))
	for _, p := range placements {
		a := p.Assignment
		rows = append(rows, map[string]string{
			"Date":         a.DateKey(),
			"Start":        a.StartTime(),
			"End":          a.EndTime(),
			"Course":       a.CourseCode,
			"Room":         a.Room,
			"Invigilators": strings.Join(a.Invigilators, "; "),
			"Level":        strconv.Itoa(p.StackLevel),
			"Conflicted":   yesNo(conflicted[a.ID]),
		})
	}
	return export.Dataset{Headers: headers, Rows: rows}
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
