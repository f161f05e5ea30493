package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"

	"placeplanner/internal/store"
	"placeplanner/internal/validation"
	"placeplanner/shared/go/models"
)

// seedCatalog loads the catalog from path when the places table is empty.
// A missing seed file leaves an empty catalog.
func seedCatalog(ctx context.Context, dataStore *store.Store, path string) error {
	count, err := dataStore.CountPlaces(ctx)
	if err != nil {
		return fmt.Errorf("count places: %w", err)
	}
	if count > 0 || path == "" {
		return nil
	}

	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		log.Warn().Str("path", path).Msg("seed file not found, catalog is empty")
		return nil
	}
	if err != nil {
		return fmt.Errorf("read seed file: %w", err)
	}

	places, err := parseSeed(raw)
	if err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	inserted, err := dataStore.InsertPlaces(ctx, places)
	if err != nil {
		return err
	}
	log.Info().Int("places", inserted).Str("path", path).Msg("catalog seeded")
	return nil
}

// parseSeed decodes a JSON array of places and validates each entry.
func parseSeed(raw []byte) ([]models.Place, error) {
	var places []models.Place
	if err := json.Unmarshal(raw, &places); err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(places))
	for i, p := range places {
		if err := validation.Struct(p); err != nil {
			return nil, fmt.Errorf("place %d: %w", i, err)
		}
		if seen[p.ID] {
			return nil, fmt.Errorf("place %d: duplicate id %q", i, p.ID)
		}
		seen[p.ID] = true
	}
	return places, nil
}
