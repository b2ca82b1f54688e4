package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/davidpesce/moodle-tool-uploadenrolmentmethods/internal/core"
	"github.com/jackc/pgx/v5"
)

const courseByIDNumber = `SELECT id, shortname, idnumber FROM courses WHERE idnumber = $1`

const insertCourse = `INSERT INTO courses (shortname, idnumber) VALUES ($1, $2)
	ON CONFLICT (idnumber) DO UPDATE SET shortname = EXCLUDED.shortname
	RETURNING id`

// CourseByIDNumber resolves a course by its external identifier. Returns
// core.ErrNotFound when no course carries the idnumber.
func (s *Store) CourseByIDNumber(ctx context.Context, idnumber string) (*core.Course, error) {
	var c core.Course
	err := s.pool.QueryRow(ctx, courseByIDNumber, idnumber).Scan(&c.ID, &c.ShortName, &c.IDNumber)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("course by idnumber %q: %w", idnumber, err)
	}
	return &c, nil
}

// UpsertCourse creates or updates a course record and returns its id. The
// importer itself never calls this; it exists for provisioning and tests
// against a live database.
func (s *Store) UpsertCourse(ctx context.Context, shortname, idnumber string) (int64, error) {
	var id int64
	if err := s.pool.QueryRow(ctx, insertCourse, shortname, idnumber).Scan(&id); err != nil {
		return 0, fmt.Errorf("upsert course %q: %w", idnumber, err)
	}
	return id, nil
}
