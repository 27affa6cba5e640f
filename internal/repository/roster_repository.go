package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// RosterRepository reads student enrollment from the external roster
// database. Read-only: this service never writes roster data.
type RosterRepository struct {
	db *sqlx.DB
}

// NewRosterRepository constructs a RosterRepository.
func NewRosterRepository(db *sqlx.DB) *RosterRepository {
	return &RosterRepository{db: db}
}

// StudentsForCourse returns the ids of students registered for a course.
// An unknown course yields an empty slice, not an error.
func (r *RosterRepository) StudentsForCourse(ctx context.Context, courseCode string) ([]string, error) {
	query := "SELECT student_id FROM enrollments WHERE course_code = $1 ORDER BY student_id"
	var students []string
	if err := r.db.SelectContext(ctx, &students, query, courseCode); err != nil {
		return nil, fmt.Errorf("list enrollments for %s: %w", courseCode, err)
	}
	return students, nil
}
