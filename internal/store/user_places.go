package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"placeplanner/shared/go/models"
)

const userPlaceColumns = `place_id, title, image_src, image_alt, city, category, lat, lon,
	status, is_favorite, notes, planned_date, created_at`

// ListUserPlaces returns every place in the scope's collection, newest first.
func (s *Store) ListUserPlaces(ctx context.Context, scope models.Scope) ([]models.UserPlace, error) {
	rows, err := s.db.QueryContext(ctx, s.q(`
		SELECT `+userPlaceColumns+`
		FROM user_places
		WHERE user_id = ? AND collection_id = ?
		ORDER BY created_at DESC, place_id ASC
	`), scope.UserID, scope.CollectionID())
	if err != nil {
		return nil, fmt.Errorf("select user places: %w", err)
	}
	defer rows.Close()

	places := []models.UserPlace{}
	for rows.Next() {
		up, err := scanUserPlace(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user place: %w", err)
		}
		places = append(places, up)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate user places: %w", err)
	}

	return places, nil
}

// GetUserPlace returns one saved place.
func (s *Store) GetUserPlace(ctx context.Context, scope models.Scope, placeID string) (models.UserPlace, error) {
	return s.getUserPlace(ctx, s.db, scope, placeID, "")
}

// CountUserPlaces reports how many places the scope's collection holds.
func (s *Store) CountUserPlaces(ctx context.Context, scope models.Scope) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, s.q(`
		SELECT COUNT(*)
		FROM user_places
		WHERE user_id = ? AND collection_id = ?
	`), scope.UserID, scope.CollectionID()).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count user places: %w", err)
	}
	return n, nil
}

// AddUserPlace stores up unless the collection already holds that place.
// It returns the stored record and whether it was newly created.
func (s *Store) AddUserPlace(ctx context.Context, scope models.Scope, up models.UserPlace) (models.UserPlace, bool, error) {
	if up.CreatedAt.IsZero() {
		up.CreatedAt = time.Now().UTC()
	}
	up.Status = up.Status.OrDefault()

	res, err := s.db.ExecContext(ctx, s.q(`
		INSERT INTO user_places (user_id, collection_id, `+userPlaceColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, collection_id, place_id) DO NOTHING
	`),
		scope.UserID, scope.CollectionID(),
		up.ID, up.Title, up.Image.Src, up.Image.Alt, up.City, up.Category,
		nullFloat(up.Lat), nullFloat(up.Lon),
		string(up.Status), up.IsFavorite, up.Meta.Notes, nullString(up.Meta.PlannedDate),
		up.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return models.UserPlace{}, false, fmt.Errorf("insert user place: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return models.UserPlace{}, false, fmt.Errorf("insert user place: %w", err)
	}
	if n == 0 {
		existing, err := s.GetUserPlace(ctx, scope, up.ID)
		if err != nil {
			return models.UserPlace{}, false, err
		}
		return existing, false, nil
	}

	up.CreatedAt = time.UnixMilli(up.CreatedAt.UnixMilli()).UTC()
	return up.Normalized(), true, nil
}

// UpdateUserPlace applies mutate to the stored record inside a transaction
// and persists the mutable fields.
func (s *Store) UpdateUserPlace(ctx context.Context, scope models.Scope, placeID string, mutate func(*models.UserPlace) error) (models.UserPlace, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.UserPlace{}, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if tx != nil {
			_ = tx.Rollback()
		}
	}()

	up, err := s.getUserPlace(ctx, tx, scope, placeID, s.forUpdate())
	if err != nil {
		return models.UserPlace{}, err
	}

	if err := mutate(&up); err != nil {
		return models.UserPlace{}, err
	}
	up.Status = up.Status.OrDefault()

	if _, err := tx.ExecContext(ctx, s.q(`
		UPDATE user_places
		SET status = ?, is_favorite = ?, notes = ?, planned_date = ?
		WHERE user_id = ? AND collection_id = ? AND place_id = ?
	`),
		string(up.Status), up.IsFavorite, up.Meta.Notes, nullString(up.Meta.PlannedDate),
		scope.UserID, scope.CollectionID(), placeID,
	); err != nil {
		return models.UserPlace{}, fmt.Errorf("update user place: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return models.UserPlace{}, fmt.Errorf("commit tx: %w", err)
	}
	tx = nil

	return up, nil
}

// DeleteUserPlace removes a saved place. Removing an absent place is not an
// error; the result reports whether a row was deleted.
func (s *Store) DeleteUserPlace(ctx context.Context, scope models.Scope, placeID string) (bool, error) {
	res, err := s.db.ExecContext(ctx, s.q(`
		DELETE FROM user_places
		WHERE user_id = ? AND collection_id = ? AND place_id = ?
	`), scope.UserID, scope.CollectionID(), placeID)
	if err != nil {
		return false, fmt.Errorf("delete user place: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete user place: %w", err)
	}
	return n > 0, nil
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *Store) getUserPlace(ctx context.Context, q queryRower, scope models.Scope, placeID, lock string) (models.UserPlace, error) {
	row := q.QueryRowContext(ctx, s.q(`
		SELECT `+userPlaceColumns+`
		FROM user_places
		WHERE user_id = ? AND collection_id = ? AND place_id = ?`+lock),
		scope.UserID, scope.CollectionID(), placeID,
	)
	up, err := scanUserPlace(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.UserPlace{}, ErrUserPlaceNotFound
		}
		return models.UserPlace{}, fmt.Errorf("select user place: %w", err)
	}
	return up, nil
}

func scanUserPlace(row scanner) (models.UserPlace, error) {
	var (
		up          models.UserPlace
		lat, lon    sql.NullFloat64
		status      string
		plannedDate sql.NullString
		createdAt   int64
	)
	if err := row.Scan(
		&up.ID, &up.Title, &up.Image.Src, &up.Image.Alt, &up.City, &up.Category, &lat, &lon,
		&status, &up.IsFavorite, &up.Meta.Notes, &plannedDate, &createdAt,
	); err != nil {
		return models.UserPlace{}, err
	}
	up.Lat = floatPtr(lat)
	up.Lon = floatPtr(lon)
	up.Status = models.PlaceStatus(status).OrDefault()
	up.Meta.PlannedDate = stringPtr(plannedDate)
	up.CreatedAt = time.UnixMilli(createdAt).UTC()
	return up, nil
}
