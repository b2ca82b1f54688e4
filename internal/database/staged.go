package database

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/davidpesce/moodle-tool-uploadenrolmentmethods/internal/core"
	"github.com/jackc/pgx/v5"
)

const latestStagedFile = `SELECT content FROM staged_files
	WHERE user_id = $1 AND filename = $2
	ORDER BY id DESC
	LIMIT 1`

const insertStagedFile = `INSERT INTO staged_files (user_id, filename, content)
	VALUES ($1, $2, $3)
	RETURNING id`

// OpenLatest returns the content stream of the most recently staged file
// matching (userID, name). Re-uploads of the same name stack; the highest
// record id wins. Returns core.ErrNotFound when nothing matches.
func (s *Store) OpenLatest(ctx context.Context, userID int64, name string) (io.ReadCloser, error) {
	var content []byte
	err := s.pool.QueryRow(ctx, latestStagedFile, userID, name).Scan(&content)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("staged file %q for user %d: %w", name, userID, err)
	}
	return io.NopCloser(bytes.NewReader(content)), nil
}

// SaveStagedFile stores an uploaded file in the user's staging area and
// returns its record id.
func (s *Store) SaveStagedFile(ctx context.Context, userID int64, name string, content []byte) (int64, error) {
	var id int64
	if err := s.pool.QueryRow(ctx, insertStagedFile, userID, name, content).Scan(&id); err != nil {
		return 0, fmt.Errorf("stage file %q for user %d: %w", name, userID, err)
	}
	return id, nil
}
