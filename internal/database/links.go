package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/davidpesce/moodle-tool-uploadenrolmentmethods/internal/core"
	"github.com/jackc/pgx/v5"
)

const findLink = `SELECT id, course_id, linked_course_id, status FROM enrol_links
	WHERE course_id = $1 AND linked_course_id = $2 AND kind = $3`

const insertLink = `INSERT INTO enrol_links (course_id, linked_course_id, kind, status)
	VALUES ($1, $2, $3, true)
	RETURNING id`

const updateLinkStatus = `UPDATE enrol_links SET status = $2 WHERE id = $1`

const deleteLink = `DELETE FROM enrol_links WHERE id = $1`

// FindLink looks up the meta link from courseID to linkedCourseID. The lookup
// is directional; the reverse link is a different row. Returns
// core.ErrNotFound when no such link exists.
func (s *Store) FindLink(ctx context.Context, courseID, linkedCourseID int64) (*core.MetaLink, error) {
	var l core.MetaLink
	err := s.pool.QueryRow(ctx, findLink, courseID, linkedCourseID, core.LinkKindMeta).
		Scan(&l.ID, &l.CourseID, &l.LinkedCourseID, &l.Enabled)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find link %d->%d: %w", courseID, linkedCourseID, err)
	}
	return &l, nil
}

// CreateLink inserts a new enabled meta link. The creation primitive cannot
// set the disabled state; callers that need a disabled link toggle it with
// SetLinkEnabled afterwards.
func (s *Store) CreateLink(ctx context.Context, courseID, linkedCourseID int64) (*core.MetaLink, error) {
	l := core.MetaLink{CourseID: courseID, LinkedCourseID: linkedCourseID, Enabled: true}
	err := s.pool.QueryRow(ctx, insertLink, courseID, linkedCourseID, core.LinkKindMeta).Scan(&l.ID)
	if err != nil {
		return nil, fmt.Errorf("create link %d->%d: %w", courseID, linkedCourseID, err)
	}
	return &l, nil
}

// SetLinkEnabled toggles a link's enabled status.
func (s *Store) SetLinkEnabled(ctx context.Context, linkID int64, enabled bool) error {
	tag, err := s.pool.Exec(ctx, updateLinkStatus, linkID, enabled)
	if err != nil {
		return fmt.Errorf("set link %d status: %w", linkID, err)
	}
	if tag.RowsAffected() == 0 {
		return core.ErrNotFound
	}
	return nil
}

// DeleteLink removes a link by id.
func (s *Store) DeleteLink(ctx context.Context, linkID int64) error {
	tag, err := s.pool.Exec(ctx, deleteLink, linkID)
	if err != nil {
		return fmt.Errorf("delete link %d: %w", linkID, err)
	}
	if tag.RowsAffected() == 0 {
		return core.ErrNotFound
	}
	return nil
}
