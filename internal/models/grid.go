package models

import "time"

// UtilizationTier is a presentation hint for room fill level. It is distinct
// from the capacity-overrun conflict: the tier colors cells, the conflict
// flags expected attendance actually exceeding capacity.
type UtilizationTier string

const (
	UtilizationInfo   UtilizationTier = "info"
	UtilizationMedium UtilizationTier = "medium"
	UtilizationHigh   UtilizationTier = "high"
)

// GridPlacement locates one assignment on the rendered grid. Placement is
// view-dependent and recomputed per render pass over the visible subset, so
// it is never stored on the Assignment itself.
type GridPlacement struct {
	AssignmentID    string          `json:"assignmentId"`
	StartColumn     int             `json:"startColumn"`
	SpanColumns     int             `json:"spanColumns"`
	StackLevel      int             `json:"stackLevel"`
	UtilizationTier UtilizationTier `json:"utilizationTier"`
}

// GridColumn describes one date-bucketed column of the primary grid.
type GridColumn struct {
	Index      int       `json:"index"`
	Key        string    `json:"key"`
	Date       time.Time `json:"date"`
	StackDepth int       `json:"stackDepth"`
}

// TimetableGrid is the layout output handed to the rendering surface.
type TimetableGrid struct {
	Columns    []GridColumn        `json:"columns"`
	Placements []GridPlacement     `json:"placements"`
	Unplaced   []InvalidAssignment `json:"unplaced,omitempty"`
}

// SpanFunc lets a caller decide how many columns an assignment covers.
// The primary day-grid uses a constant span of 1; multi-day block views may
// span more.
type SpanFunc func(Assignment) int

// HeatmapCell aggregates assignment density for one (day-of-week, bucket)
// coordinate of the slot-bucketed index.
type HeatmapCell struct {
	DayOfWeek   string `json:"dayOfWeek"`
	Bucket      string `json:"bucket"`
	Assignments int    `json:"assignments"`
	Students    int    `json:"students"`
}

// GridFilter narrows the visible assignment subset for layout. Conflicts are
// always detected over the full set; filters affect placement only.
type GridFilter struct {
	Departments []string `json:"departments,omitempty"`
	Rooms       []string `json:"rooms,omitempty"`
	Faculty     string   `json:"faculty,omitempty"`
}

// Matches reports whether an assignment survives the filter.
func (f GridFilter) Matches(a Assignment) bool {
	if f.Faculty != "" && a.FacultyName != f.Faculty {
		return false
	}
	if len(f.Rooms) > 0 && !containsString(f.Rooms, a.Room) {
		return false
	}
	if len(f.Departments) > 0 {
		found := false
		for _, dept := range a.Departments {
			if containsString(f.Departments, dept) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// IsZero reports whether the filter hides nothing.
func (f GridFilter) IsZero() bool {
	return f.Faculty == "" && len(f.Rooms) == 0 && len(f.Departments) == 0
}

func containsString(haystack []string, needle string) bool {
	for _, v := range haystack {
		if v == needle {
			return true
		}
	}
	return false
}
