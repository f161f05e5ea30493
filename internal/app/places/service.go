package places

import (
	"cmp"
	"context"
	"slices"
	"strings"

	"placeplanner/internal/geo"
	"placeplanner/shared/go/models"
)

// AllCategories disables the category filter, like an empty category.
const AllCategories = "all"

// Store defines read access to the place catalog.
type Store interface {
	ListPlaces(ctx context.Context) ([]models.Place, error)
	GetPlace(ctx context.Context, id string) (models.Place, error)
	Categories(ctx context.Context) ([]string, error)
}

// Service exposes catalog browsing.
type Service interface {
	List(ctx context.Context, q models.CatalogQuery) ([]models.CatalogEntry, error)
	Get(ctx context.Context, id string) (models.Place, error)
	Categories(ctx context.Context) ([]string, error)
}

type service struct {
	store Store
}

// New constructs a catalog Service backed by the provided Store
func New(store Store) Service {
	return &service{store: store}
}

// List filters the catalog by category and title. With q.Near set the
// result is ordered by distance, places without coordinates last, and the
// closest place is flagged.
func (s *service) List(ctx context.Context, q models.CatalogQuery) ([]models.CatalogEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	all, err := s.store.ListPlaces(ctx)
	if err != nil {
		return nil, err
	}

	category := strings.TrimSpace(q.Category)
	if strings.EqualFold(category, AllCategories) {
		category = ""
	}
	search := strings.ToLower(strings.TrimSpace(q.Search))

	entries := make([]models.CatalogEntry, 0, len(all))
	for _, p := range all {
		if category != "" && !strings.EqualFold(p.Category, category) {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(p.Title), search) {
			continue
		}
		entries = append(entries, models.CatalogEntry{Place: p})
	}

	if q.Near != nil {
		rankByDistance(entries, *q.Near)
	}
	return entries, nil
}

func rankByDistance(entries []models.CatalogEntry, from models.Coordinates) {
	for i := range entries {
		if at, ok := geo.Of(entries[i].Place); ok {
			d := geo.Distance(from, at)
			entries[i].DistanceKm = &d
		}
	}

	slices.SortStableFunc(entries, func(a, b models.CatalogEntry) int {
		switch {
		case a.DistanceKm != nil && b.DistanceKm != nil:
			return cmp.Compare(*a.DistanceKm, *b.DistanceKm)
		case a.DistanceKm != nil:
			return -1
		case b.DistanceKm != nil:
			return 1
		default:
			return 0
		}
	})

	if len(entries) > 0 && entries[0].DistanceKm != nil {
		entries[0].IsNearest = true
	}
}

func (s *service) Get(ctx context.Context, id string) (models.Place, error) {
	if err := ctx.Err(); err != nil {
		return models.Place{}, err
	}
	return s.store.GetPlace(ctx, id)
}

func (s *service) Categories(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.Categories(ctx)
}
