package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"placeplanner/shared/go/models"
)

// CreateCollection adds a named collection for userID.
func (s *Store) CreateCollection(ctx context.Context, userID, name string) (models.Collection, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Collection{}, fmt.Errorf("collection name is required")
	}

	c := models.Collection{
		ID:        uuid.NewString(),
		UserID:    userID,
		Name:      name,
		CreatedAt: time.UnixMilli(time.Now().UnixMilli()).UTC(),
	}

	_, err := s.db.ExecContext(ctx, s.q(`
		INSERT INTO collections (user_id, id, name, created_at)
		VALUES (?, ?, ?, ?)
	`), c.UserID, c.ID, c.Name, c.CreatedAt.UnixMilli())
	if err != nil {
		if isUniqueViolation(err) {
			return models.Collection{}, ErrCollectionExists
		}
		return models.Collection{}, fmt.Errorf("insert collection: %w", err)
	}

	return c, nil
}

// ListCollections returns the named collections of userID with their sizes,
// oldest first.
func (s *Store) ListCollections(ctx context.Context, userID string) ([]models.Collection, error) {
	rows, err := s.db.QueryContext(ctx, s.q(`
		SELECT c.id, c.name, c.created_at, COUNT(up.place_id)
		FROM collections c
		LEFT JOIN user_places up
			ON up.user_id = c.user_id AND up.collection_id = c.id
		WHERE c.user_id = ?
		GROUP BY c.id, c.name, c.created_at
		ORDER BY c.created_at ASC, c.name ASC
	`), userID)
	if err != nil {
		return nil, fmt.Errorf("select collections: %w", err)
	}
	defer rows.Close()

	collections := []models.Collection{}
	for rows.Next() {
		var (
			c         models.Collection
			createdAt int64
		)
		if err := rows.Scan(&c.ID, &c.Name, &createdAt, &c.PlaceCount); err != nil {
			return nil, fmt.Errorf("scan collection: %w", err)
		}
		c.UserID = userID
		c.CreatedAt = time.UnixMilli(createdAt).UTC()
		collections = append(collections, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate collections: %w", err)
	}

	return collections, nil
}

// CollectionExists reports whether userID owns the named collection.
func (s *Store) CollectionExists(ctx context.Context, userID, collectionID string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, s.q(`
		SELECT 1
		FROM collections
		WHERE user_id = ? AND id = ?
	`), userID, collectionID).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("select collection: %w", err)
	}
	return true, nil
}

// DeleteCollection removes a collection together with its places.
func (s *Store) DeleteCollection(ctx context.Context, userID, collectionID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if tx != nil {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx, s.q(`
		DELETE FROM collections
		WHERE user_id = ? AND id = ?
	`), userID, collectionID)
	if err != nil {
		return fmt.Errorf("delete collection: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete collection: %w", err)
	}
	if n == 0 {
		return ErrCollectionNotFound
	}

	if _, err := tx.ExecContext(ctx, s.q(`
		DELETE FROM user_places
		WHERE user_id = ? AND collection_id = ?
	`), userID, collectionID); err != nil {
		return fmt.Errorf("delete collection places: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	tx = nil

	return nil
}
