package service

import (
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/Oluwafemifere/adaptive-exam-timetabling-sub003/internal/models"
	"github.com/Oluwafemifere/adaptive-exam-timetabling-sub003/pkg/config"
)

// SlotBuckets maps wall-clock minutes onto coarse, configurable time buckets
// for the heatmap index. Boundaries are lower bounds in ascending order.
type SlotBuckets struct {
	boundaries []int
	labels     []string
}

var defaultBuckets = SlotBuckets{
	boundaries: []int{8 * 60, 12 * 60, 17 * 60},
	labels:     []string{"morning", "afternoon", "evening"},
}

// NewSlotBuckets builds the bucket index from config, falling back to the
// morning/afternoon/evening defaults when the configuration is unusable.
func NewSlotBuckets(cfg config.TimetableConfig) SlotBuckets {
	if len(cfg.SlotBoundaries) == 0 || len(cfg.SlotBoundaries) != len(cfg.SlotLabels) {
		return defaultBuckets
	}
	boundaries := make([]int, 0, len(cfg.SlotBoundaries))
	for _, raw := range cfg.SlotBoundaries {
		minute, err := models.ParseClock(raw)
		if err != nil {
			return defaultBuckets
		}
		boundaries = append(boundaries, minute)
	}
	if !sort.IntsAreSorted(boundaries) {
		return defaultBuckets
	}
	return SlotBuckets{boundaries: boundaries, labels: cfg.SlotLabels}
}

// BucketFor returns the label of the bucket containing the given minute.
// Minutes before the first boundary fall into the first bucket.
func (b SlotBuckets) BucketFor(minute int) string {
	idx := 0
	for i, boundary := range b.boundaries {
		if minute >= boundary {
			idx = i
		}
	}
	return b.labels[idx]
}

// Labels returns bucket labels in boundary order.
func (b SlotBuckets) Labels() []string {
	return b.labels
}

// LayoutService computes grid placements: the date-bucketed time index plus
// the per-column stack packer. It is a pure function over its input snapshot
// and safe to re-run any number of times.
type LayoutService struct {
	buckets SlotBuckets
	logger  *zap.Logger
}

// NewLayoutService wires the layout dependencies.
func NewLayoutService(buckets SlotBuckets, logger *zap.Logger) *LayoutService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(buckets.labels) == 0 {
		buckets = defaultBuckets
	}
	return &LayoutService{buckets: buckets, logger: logger}
}

// BuildGrid lays the visible assignments out on a non-overlapping 2-D grid.
// Assignments with an invalid interval are returned in the unplaced side
// channel instead of being silently dropped. Stack levels are computed over
// exactly the subset passed in: hiding assignments can legitimately shrink
// stack depth.
func (s *LayoutService) BuildGrid(visible []models.Assignment, span models.SpanFunc) *models.TimetableGrid {
	grid := &models.TimetableGrid{}

	valid := make([]models.Assignment, 0, len(visible))
	for _, a := range visible {
		if !a.HasValidInterval() {
			grid.Unplaced = append(grid.Unplaced, models.InvalidAssignment{
				ID:         a.ID,
				CourseCode: a.CourseCode,
				Reason:     "end time is not after start time",
			})
			continue
		}
		valid = append(valid, a)
	}

	byDate := make(map[string][]models.Assignment)
	for _, a := range valid {
		key := a.DateKey()
		byDate[key] = append(byDate[key], a)
	}

	keys := make([]string, 0, len(byDate))
	for key := range byDate {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	columnIndex := make(map[string]int, len(keys))
	for i, key := range keys {
		columnIndex[key] = i + 1
	}

	for _, key := range keys {
		column := byDate[key]
		levels := assignStackLevels(column)

		date, _ := time.Parse("2006-01-02", key)
		depth := 0
		for _, a := range column {
			level := levels[a.ID]
			if level+1 > depth {
				depth = level + 1
			}
			grid.Placements = append(grid.Placements, models.GridPlacement{
				AssignmentID:    a.ID,
				StartColumn:     columnIndex[key],
				SpanColumns:     spanFor(a, span),
				StackLevel:      level,
				UtilizationTier: utilizationTier(a),
			})
		}
		grid.Columns = append(grid.Columns, models.GridColumn{
			Index:      columnIndex[key],
			Key:        key,
			Date:       date,
			StackDepth: depth,
		})
	}

	sort.Slice(grid.Placements, func(i, j int) bool {
		if grid.Placements[i].StartColumn != grid.Placements[j].StartColumn {
			return grid.Placements[i].StartColumn < grid.Placements[j].StartColumn
		}
		if grid.Placements[i].StackLevel != grid.Placements[j].StackLevel {
			return grid.Placements[i].StackLevel < grid.Placements[j].StackLevel
		}
		return grid.Placements[i].AssignmentID < grid.Placements[j].AssignmentID
	})

	return grid
}

// Heatmap aggregates assignment density per (day-of-week, time bucket) using
// the slot-bucketed column key.
func (s *LayoutService) Heatmap(assignments []models.Assignment) []models.HeatmapCell {
	type cellKey struct {
		day    string
		bucket string
	}
	counts := make(map[cellKey]*models.HeatmapCell)
	for _, a := range assignments {
		if !a.HasValidInterval() {
			continue
		}
		key := cellKey{day: a.Date.Weekday().String(), bucket: s.buckets.BucketFor(a.StartMinute)}
		cell, ok := counts[key]
		if !ok {
			cell = &models.HeatmapCell{DayOfWeek: key.day, Bucket: key.bucket}
			counts[key] = cell
		}
		cell.Assignments++
		cell.Students += a.ExpectedStudents
	}

	dayOrder := map[string]int{
		time.Monday.String():    1,
		time.Tuesday.String():   2,
		time.Wednesday.String(): 3,
		time.Thursday.String():  4,
		time.Friday.String():    5,
		time.Saturday.String():  6,
		time.Sunday.String():    7,
	}
	bucketOrder := make(map[string]int, len(s.buckets.labels))
	for i, label := range s.buckets.labels {
		bucketOrder[label] = i
	}

	cells := make([]models.HeatmapCell, 0, len(counts))
	for _, cell := range counts {
		cells = append(cells, *cell)
	}
	sort.Slice(cells, func(i, j int) bool {
		if dayOrder[cells[i].DayOfWeek] != dayOrder[cells[j].DayOfWeek] {
			return dayOrder[cells[i].DayOfWeek] < dayOrder[cells[j].DayOfWeek]
		}
		return bucketOrder[cells[i].Bucket] < bucketOrder[cells[j].Bucket]
	})
	return cells
}

// assignStackLevels colors the column's interval graph greedily. Assignments
// are swept in (start, end, id) order; each takes the lowest level whose
// occupant ended at or before its start, or opens a new level. Interval
// graphs are perfect, so this uses exactly as many levels as the peak number
// of simultaneous overlaps.
func assignStackLevels(column []models.Assignment) map[string]int {
	ordered := make([]models.Assignment, len(column))
	copy(ordered, column)
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].StartMinute != ordered[j].StartMinute {
			return ordered[i].StartMinute < ordered[j].StartMinute
		}
		if ordered[i].EndMinute != ordered[j].EndMinute {
			return ordered[i].EndMinute < ordered[j].EndMinute
		}
		return ordered[i].ID < ordered[j].ID
	})

	levels := make(map[string]int, len(ordered))
	var levelEnds []int
	for _, a := range ordered {
		placed := false
		for level, end := range levelEnds {
			if end <= a.StartMinute {
				levelEnds[level] = a.EndMinute
				levels[a.ID] = level
				placed = true
				break
			}
		}
		if !placed {
			levelEnds = append(levelEnds, a.EndMinute)
			levels[a.ID] = len(levelEnds) - 1
		}
	}
	return levels
}

func spanFor(a models.Assignment, span models.SpanFunc) int {
	if span == nil {
		return 1
	}
	if v := span(a); v >= 1 {
		return v
	}
	return 1
}

func utilizationTier(a models.Assignment) models.UtilizationTier {
	if a.RoomCapacity <= 0 {
		return models.UtilizationInfo
	}
	ratio := float64(a.ExpectedStudents) / float64(a.RoomCapacity)
	switch {
	case ratio >= 0.9:
		return models.UtilizationHigh
	case ratio >= 0.75:
		return models.UtilizationMedium
	default:
		return models.UtilizationInfo
	}
}
