package models

// Nested groupings for the secondary list views. These are simple
// projections of the assignment set: no layout, no conflict logic.

// RoomGroup is a leaf of the building→room view.
type RoomGroup struct {
	Room        string       `json:"room"`
	Assignments []Assignment `json:"assignments"`
}

// BuildingGroup groups rooms under one building.
type BuildingGroup struct {
	Building string      `json:"building"`
	Rooms    []RoomGroup `json:"rooms"`
}

// InvigilatorGroup is a leaf of the faculty view. An assignment with several
// invigilators appears once under each of them.
type InvigilatorGroup struct {
	Invigilator string       `json:"invigilator"`
	Assignments []Assignment `json:"assignments"`
}

// DepartmentGroup groups invigilators under one department.
type DepartmentGroup struct {
	Department   string             `json:"department"`
	Invigilators []InvigilatorGroup `json:"invigilators"`
}

// FacultyGroup groups departments under one faculty.
type FacultyGroup struct {
	Faculty     string            `json:"faculty"`
	Departments []DepartmentGroup `json:"departments"`
}
