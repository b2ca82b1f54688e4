package database

import (
	"context"
	"fmt"
	"strconv"
)

// ResyncChannel is the NOTIFY channel the enrolment sync worker listens on.
const ResyncChannel = "enrol_meta_resync"

const notifyResync = `SELECT pg_notify($1, $2)`

// Resync asks the enrolment sync worker to re-propagate memberships for the
// given parent course. The notification carries only the course id, so
// repeated notifications for the same course are harmless.
func (s *Store) Resync(ctx context.Context, courseID int64) error {
	if _, err := s.pool.Exec(ctx, notifyResync, ResyncChannel, strconv.FormatInt(courseID, 10)); err != nil {
		return fmt.Errorf("notify resync for course %d: %w", courseID, err)
	}
	return nil
}
