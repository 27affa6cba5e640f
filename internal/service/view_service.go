package service

import (
	"sort"

	"github.com/Oluwafemifere/adaptive-exam-timetabling-sub003/internal/models"
)

// ViewService produces the nested grouped projections for the secondary
// list views. Pure multi-key grouping: no layout, no conflict logic.
type ViewService struct{}

// NewViewService constructs the projection service.
func NewViewService() *ViewService {
	return &ViewService{}
}

// ByRoom groups assignments building→room. Every assignment appears exactly
// once, under its own room.
func (s *ViewService) ByRoom(assignments []models.Assignment) []models.BuildingGroup {
	byBuilding := make(map[string]map[string][]models.Assignment)
	for _, a := range assignments {
		if byBuilding[a.Building] == nil {
			byBuilding[a.Building] = make(map[string][]models.Assignment)
		}
		byBuilding[a.Building][a.Room] = append(byBuilding[a.Building][a.Room], a)
	}

	groups := make([]models.BuildingGroup, 0, len(byBuilding))
	for building, rooms := range byBuilding {
		group := models.BuildingGroup{Building: building}
		for room, list := range rooms {
			sortByStart(list)
			group.Rooms = append(group.Rooms, models.RoomGroup{Room: room, Assignments: list})
		}
		sort.Slice(group.Rooms, func(i, j int) bool {
			return group.Rooms[i].Room < group.Rooms[j].Room
		})
		groups = append(groups, group)
	}
	sort.Slice(groups, func(i, j int) bool {
		return groups[i].Building < groups[j].Building
	})
	return groups
}

// UnassignedInvigilator is the leaf label for assignments with no invigilator
// on record, so they stay visible in the faculty view.
const UnassignedInvigilator = "(unassigned)"

// ByFaculty groups assignments faculty→department→invigilator. An assignment
// with several invigilators fans out once per invigilator name; one with
// several departments appears under each department. No invigilators at all
// places the assignment under an explicit unassigned leaf.
func (s *ViewService) ByFaculty(assignments []models.Assignment) []models.FacultyGroup {
	type deptKey struct {
		faculty    string
		department string
	}
	byDept := make(map[deptKey]map[string][]models.Assignment)
	for _, a := range assignments {
		departments := a.Departments
		if len(departments) == 0 {
			departments = []string{""}
		}
		for _, department := range departments {
			key := deptKey{faculty: a.FacultyName, department: department}
			if byDept[key] == nil {
				byDept[key] = make(map[string][]models.Assignment)
			}
			invigilators := a.Invigilators
			if len(invigilators) == 0 {
				invigilators = []string{UnassignedInvigilator}
			}
			for _, invigilator := range invigilators {
				byDept[key][invigilator] = append(byDept[key][invigilator], a)
			}
		}
	}

	byFaculty := make(map[string][]models.DepartmentGroup)
	for key, invigilators := range byDept {
		group := models.DepartmentGroup{Department: key.department}
		for name, list := range invigilators {
			sortByStart(list)
			group.Invigilators = append(group.Invigilators, models.InvigilatorGroup{
				Invigilator: name,
				Assignments: list,
			})
		}
		sort.Slice(group.Invigilators, func(i, j int) bool {
			return group.Invigilators[i].Invigilator < group.Invigilators[j].Invigilator
		})
		byFaculty[key.faculty] = append(byFaculty[key.faculty], group)
	}

	groups := make([]models.FacultyGroup, 0, len(byFaculty))
	for faculty, departments := range byFaculty {
		sort.Slice(departments, func(i, j int) bool {
			return departments[i].Department < departments[j].Department
		})
		groups = append(groups, models.FacultyGroup{Faculty: faculty, Departments: departments})
	}
	sort.Slice(groups, func(i, j int) bool {
		return groups[i].Faculty < groups[j].Faculty
	})
	return groups
}

func sortByStart(list []models.Assignment) {
	sort.Slice(list, func(i, j int) bool {
		if !list[i].Date.Equal(list[j].Date) {
			return list[i].Date.Before(list[j].Date)
		}
		if list[i].StartMinute != list[j].StartMinute {
			return list[i].StartMinute < list[j].StartMinute
		}
		return list[i].ID < list[j].ID
	})
}
