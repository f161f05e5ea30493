package collections

import (
	"context"
	"errors"

	"placeplanner/shared/go/models"
)

// ErrDefaultCollection is returned when deleting the implicit collection.
var ErrDefaultCollection = errors.New("the default collection cannot be deleted")

// Store defines persistence operations for named collections.
type Store interface {
	CreateCollection(ctx context.Context, userID, name string) (models.Collection, error)
	ListCollections(ctx context.Context, userID string) ([]models.Collection, error)
	DeleteCollection(ctx context.Context, userID, collectionID string) error
	CountUserPlaces(ctx context.Context, scope models.Scope) (int, error)
}

// Service coordinates a user's collections.
type Service interface {
	Create(ctx context.Context, userID, name string) (models.Collection, error)
	// List returns the default collection first, then the named ones.
	List(ctx context.Context, userID string) ([]models.Collection, error)
	Delete(ctx context.Context, userID, collectionID string) error
}

type service struct {
	store Store
}

// New constructs a collections Service
func New(store Store) Service {
	return &service{store: store}
}

func (s *service) Create(ctx context.Context, userID, name string) (models.Collection, error) {
	if err := ctx.Err(); err != nil {
		return models.Collection{}, err
	}
	return s.store.CreateCollection(ctx, userID, name)
}

func (s *service) List(ctx context.Context, userID string) ([]models.Collection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	count, err := s.store.CountUserPlaces(ctx, models.Scope{UserID: userID})
	if err != nil {
		return nil, err
	}
	named, err := s.store.ListCollections(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make([]models.Collection, 0, len(named)+1)
	out = append(out, models.Collection{
		ID:         models.DefaultCollection,
		UserID:     userID,
		Name:       "Default",
		PlaceCount: count,
	})
	return append(out, named...), nil
}

func (s *service) Delete(ctx context.Context, userID, collectionID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if collectionID == models.DefaultCollection || collectionID == "" {
		return ErrDefaultCollection
	}
	return s.store.DeleteCollection(ctx, userID, collectionID)
}
