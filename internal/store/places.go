package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"placeplanner/shared/go/models"
)

const placeColumns = `id, title, image_src, image_alt, city, category, lat, lon`

// ListPlaces returns the whole catalog in seed order.
func (s *Store) ListPlaces(ctx context.Context) ([]models.Place, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+placeColumns+`
		FROM places
		ORDER BY position ASC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("select places: %w", err)
	}
	defer rows.Close()

	places := []models.Place{}
	for rows.Next() {
		place, err := scanPlace(rows)
		if err != nil {
			return nil, fmt.Errorf("scan place: %w", err)
		}
		places = append(places, place)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate places: %w", err)
	}

	return places, nil
}

// GetPlace returns a single catalog entry.
func (s *Store) GetPlace(ctx context.Context, id string) (models.Place, error) {
	row := s.db.QueryRowContext(ctx, s.q(`
		SELECT `+placeColumns+`
		FROM places
		WHERE id = ?
	`), id)
	place, err := scanPlace(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Place{}, ErrPlaceNotFound
		}
		return models.Place{}, fmt.Errorf("select place: %w", err)
	}
	return place, nil
}

// CountPlaces reports the catalog size.
func (s *Store) CountPlaces(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM places`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count places: %w", err)
	}
	return n, nil
}

// Categories lists the distinct non-empty categories, sorted.
func (s *Store) Categories(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT category
		FROM places
		WHERE category <> ''
		ORDER BY category ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("select categories: %w", err)
	}
	defer rows.Close()

	categories := []string{}
	for rows.Next() {
		var category string
		if err := rows.Scan(&category); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, category)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}
	return categories, nil
}

// InsertPlaces seeds the catalog. Places whose id already exists are left
// untouched; the number of new rows is returned.
func (s *Store) InsertPlaces(ctx context.Context, places []models.Place) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if tx != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, s.q(`
		INSERT INTO places (`+placeColumns+`, position)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO NOTHING
	`))
	if err != nil {
		return 0, fmt.Errorf("prepare insert place: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for i, p := range places {
		res, err := stmt.ExecContext(ctx,
			p.ID, p.Title, p.Image.Src, p.Image.Alt, p.City, p.Category,
			nullFloat(p.Lat), nullFloat(p.Lon), i,
		)
		if err != nil {
			return 0, fmt.Errorf("insert place %s: %w", p.ID, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			inserted += int(n)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit tx: %w", err)
	}
	tx = nil

	return inserted, nil
}

func scanPlace(row scanner) (models.Place, error) {
	var (
		p        models.Place
		lat, lon sql.NullFloat64
	)
	if err := row.Scan(&p.ID, &p.Title, &p.Image.Src, &p.Image.Alt, &p.City, &p.Category, &lat, &lon); err != nil {
		return models.Place{}, err
	}
	p.Lat = floatPtr(lat)
	p.Lon = floatPtr(lon)
	return p, nil
}
