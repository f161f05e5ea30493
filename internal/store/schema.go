package store

import (
	"context"
	"fmt"
)

// Both dialects accept these statements. Timestamps are unix milliseconds.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS places (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		image_src TEXT NOT NULL DEFAULT '',
		image_alt TEXT NOT NULL DEFAULT '',
		city TEXT NOT NULL DEFAULT '',
		category TEXT NOT NULL DEFAULT '',
		lat DOUBLE PRECISION,
		lon DOUBLE PRECISION,
		position INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE INDEX IF NOT EXISTS idx_places_category ON places(category)`,
	`CREATE TABLE IF NOT EXISTS collections (
		user_id TEXT NOT NULL,
		id TEXT NOT NULL,
		name TEXT NOT NULL,
		created_at BIGINT NOT NULL,
		PRIMARY KEY (user_id, id)
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_collections_name ON collections(user_id, name)`,
	`CREATE TABLE IF NOT EXISTS user_places (
		user_id TEXT NOT NULL,
		collection_id TEXT NOT NULL,
		place_id TEXT NOT NULL,
		title TEXT NOT NULL,
		image_src TEXT NOT NULL DEFAULT '',
		image_alt TEXT NOT NULL DEFAULT '',
		city TEXT NOT NULL DEFAULT '',
		category TEXT NOT NULL DEFAULT '',
		lat DOUBLE PRECISION,
		lon DOUBLE PRECISION,
		status TEXT NOT NULL DEFAULT 'want',
		is_favorite BOOLEAN NOT NULL DEFAULT FALSE,
		notes TEXT NOT NULL DEFAULT '',
		planned_date TEXT,
		created_at BIGINT NOT NULL,
		PRIMARY KEY (user_id, collection_id, place_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_user_places_created ON user_places(user_id, collection_id, created_at)`,
}

// Migrate creates any missing tables and indexes.
func (s *Store) Migrate(ctx context.Context) error {
	for i, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema statement %d: %w", i, err)
		}
	}
	return nil
}
