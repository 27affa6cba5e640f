package models

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Assignment is one exam's scheduled occurrence: course, room, staff and a
// same-day wall-clock interval. Instances are built once per normalized job
// result and never mutated; a changed schedule produces a new list.
type Assignment struct {
	ID               string    `json:"id"`
	ExamID           string    `json:"examId"`
	CourseCode       string    `json:"courseCode"`
	CourseName       string    `json:"courseName"`
	Date             time.Time `json:"date"`
	StartMinute      int       `json:"startMinute"`
	EndMinute        int       `json:"endMinute"`
	DurationMinutes  int       `json:"durationMinutes"`
	ExpectedStudents int       `json:"expectedStudents"`
	RoomCapacity     int       `json:"roomCapacity"`
	Room             string    `json:"room"`
	Building         string    `json:"building"`
	Invigilators     []string  `json:"invigilators"`
	Departments      []string  `json:"departments"`
	FacultyName      string    `json:"facultyName"`
	Instructor       string    `json:"instructor"`
}

// DateKey returns the calendar-date column key, ignoring time-of-day.
func (a Assignment) DateKey() string {
	return a.Date.Format("2006-01-02")
}

// StartTime renders the start minute as a wall-clock label.
func (a Assignment) StartTime() string {
	return MinuteClock(a.StartMinute)
}

// EndTime renders the end minute as a wall-clock label.
func (a Assignment) EndTime() string {
	return MinuteClock(a.EndMinute)
}

// Overlaps reports half-open interval intersection on the same date.
// Back-to-back assignments (end == start) do not overlap.
func (a Assignment) Overlaps(b Assignment) bool {
	if a.DateKey() != b.DateKey() {
		return false
	}
	return a.StartMinute < b.EndMinute && b.StartMinute < a.EndMinute
}

// HasValidInterval reports whether the assignment spans a positive duration.
func (a Assignment) HasValidInterval() bool {
	return a.EndMinute > a.StartMinute
}

// InvalidAssignment records an assignment excluded from layout and detection,
// with the reason it was rejected. Nothing is dropped without trace.
type InvalidAssignment struct {
	ID         string `json:"id"`
	CourseCode string `json:"courseCode"`
	Reason     string `json:"reason"`
}

// ParseClock converts an "HH:MM" label into minutes since midnight.
func ParseClock(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	t, err := time.Parse("15:04", raw)
	if err != nil {
		return 0, fmt.Errorf("parse clock %q: %w", raw, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// MinuteClock renders minutes since midnight as "HH:MM".
func MinuteClock(minute int) string {
	return fmt.Sprintf("%02d:%02d", minute/60, minute%60)
}

// ParseInvigilators splits a comma-joined staff string into a sorted unique
// slice. Parsing happens once during normalization; downstream consumers
// treat the result as a set.
func ParseInvigilators(raw string) []string {
	parts := strings.Split(raw, ",")
	seen := make(map[string]struct{}, len(parts))
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		name := strings.TrimSpace(part)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		result = append(result, name)
	}
	sort.Strings(result)
	return result
}
