// Package database implements the import pipeline's store interfaces on
// PostgreSQL via pgx. A single Store satisfies core.CourseStore,
// core.LinkStore, core.Resyncer, and core.StagedFiles.
package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Store is the PostgreSQL-backed record store.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a Store over the given connection pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// schema creates the tables the importer reads and writes. Link uniqueness is
// directional: (course_id, linked_course_id, kind) has a unique index, so the
// reverse direction is a distinct row.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS courses (
		id        BIGSERIAL PRIMARY KEY,
		shortname TEXT NOT NULL,
		idnumber  TEXT NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS enrol_links (
		id               BIGSERIAL PRIMARY KEY,
		course_id        BIGINT NOT NULL REFERENCES courses(id) ON DELETE CASCADE,
		linked_course_id BIGINT NOT NULL REFERENCES courses(id) ON DELETE CASCADE,
		kind             TEXT NOT NULL,
		status           BOOLEAN NOT NULL DEFAULT true
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS enrol_links_direction
		ON enrol_links (course_id, linked_course_id, kind)`,
	`CREATE TABLE IF NOT EXISTS staged_files (
		id          BIGSERIAL PRIMARY KEY,
		user_id     BIGINT NOT NULL,
		filename    TEXT NOT NULL,
		content     BYTEA NOT NULL,
		uploaded_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS staged_files_lookup
		ON staged_files (user_id, filename, id DESC)`,
}

// EnsureSchema creates the store's tables if they do not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// Ping verifies database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}
