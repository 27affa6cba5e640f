package models

// ConflictType separates double-bookings that invalidate a schedule from
// quality violations that merely degrade it.
type ConflictType string

const (
	ConflictTypeHard ConflictType = "hard"
	ConflictTypeSoft ConflictType = "soft"
)

// ConflictSeverity grades how urgently a conflict needs attention.
type ConflictSeverity string

const (
	SeverityHigh   ConflictSeverity = "high"
	SeverityMedium ConflictSeverity = "medium"
	SeverityLow    ConflictSeverity = "low"
)

// Conflict categories emitted by the detector.
const (
	CategoryRoomClash        = "room_clash"
	CategoryInvigilatorClash = "invigilator_clash"
	CategoryStudentClash     = "student_clash"
	CategoryCapacityOverrun  = "capacity_overrun"
)

// Conflict is a derived record implicating two or more assignments (or one,
// for capacity overruns). Recomputed in full whenever the assignment set
// changes; every id in ExamIDs references an assignment in the current set.
type Conflict struct {
	ID             string           `json:"id"`
	Type           ConflictType     `json:"type"`
	Category       string           `json:"category"`
	Severity       ConflictSeverity `json:"severity"`
	Message        string           `json:"message"`
	ExamIDs        []string         `json:"examIds"`
	AutoResolvable bool             `json:"autoResolvable"`
}

// DetectionResult bundles the conflict list with the categories that could
// not run, such as student clashes when no roster collaborator is wired.
type DetectionResult struct {
	Conflicts     []Conflict `json:"conflicts"`
	SkippedChecks []string   `json:"skippedChecks,omitempty"`
}
