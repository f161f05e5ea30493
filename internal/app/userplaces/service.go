package userplaces

import (
	"context"
	"errors"
	"strings"
	"time"

	"placeplanner/internal/store"
	"placeplanner/internal/validation"
	"placeplanner/shared/go/models"
)

// Store defines persistence operations for saved places.
type Store interface {
	ListUserPlaces(ctx context.Context, scope models.Scope) ([]models.UserPlace, error)
	GetUserPlace(ctx context.Context, scope models.Scope, placeID string) (models.UserPlace, error)
	AddUserPlace(ctx context.Context, scope models.Scope, up models.UserPlace) (models.UserPlace, bool, error)
	UpdateUserPlace(ctx context.Context, scope models.Scope, placeID string, mutate func(*models.UserPlace) error) (models.UserPlace, error)
	DeleteUserPlace(ctx context.Context, scope models.Scope, placeID string) (bool, error)
	GetPlace(ctx context.Context, id string) (models.Place, error)
	CollectionExists(ctx context.Context, userID, collectionID string) (bool, error)
}

// Service coordinates a user's saved places within one collection.
type Service interface {
	List(ctx context.Context, scope models.Scope) ([]models.UserPlace, error)
	Get(ctx context.Context, scope models.Scope, placeID string) (models.UserPlace, error)
	// Add saves a place; the bool reports whether it was newly created.
	Add(ctx context.Context, scope models.Scope, place models.Place) (models.UserPlace, bool, error)
	ToggleStatus(ctx context.Context, scope models.Scope, placeID string) (models.UserPlace, error)
	ToggleFavorite(ctx context.Context, scope models.Scope, placeID string) (models.UserPlace, error)
	UpdateMeta(ctx context.Context, scope models.Scope, placeID string, patch models.MetaPatch) (models.UserPlace, error)
	Patch(ctx context.Context, scope models.Scope, placeID string, patch models.UserPlacePatch) (models.UserPlace, error)
	Remove(ctx context.Context, scope models.Scope, placeID string) error
}

type service struct {
	store Store
	now   func() time.Time
}

// New constructs a saved-places Service backed by the provided Store
func New(store Store) Service {
	return &service{store: store, now: time.Now}
}

func (s *service) List(ctx context.Context, scope models.Scope) ([]models.UserPlace, error) {
	if err := s.guard(ctx, scope); err != nil {
		return nil, err
	}
	return s.store.ListUserPlaces(ctx, scope)
}

func (s *service) Get(ctx context.Context, scope models.Scope, placeID string) (models.UserPlace, error) {
	if err := s.guard(ctx, scope); err != nil {
		return models.UserPlace{}, err
	}
	return s.store.GetUserPlace(ctx, scope, placeID)
}

// Add copies the catalog entry into the collection. A place missing from
// the catalog is accepted only when the caller supplied its title.
func (s *service) Add(ctx context.Context, scope models.Scope, place models.Place) (models.UserPlace, bool, error) {
	if err := s.guard(ctx, scope); err != nil {
		return models.UserPlace{}, false, err
	}

	place.ID = strings.TrimSpace(place.ID)
	if place.ID == "" {
		return models.UserPlace{}, false, &validation.RequestValidationError{Fields: []validation.FieldError{{
			Field: "id", Tag: "required", Message: "is required",
		}}}
	}

	source, err := s.store.GetPlace(ctx, place.ID)
	switch {
	case err == nil:
	case errors.Is(err, store.ErrPlaceNotFound) && strings.TrimSpace(place.Title) != "":
		if err := validation.Struct(place); err != nil {
			return models.UserPlace{}, false, err
		}
		source = place
	default:
		return models.UserPlace{}, false, err
	}

	return s.store.AddUserPlace(ctx, scope, models.NewUserPlace(source, s.now()))
}

func (s *service) ToggleStatus(ctx context.Context, scope models.Scope, placeID string) (models.UserPlace, error) {
	return s.update(ctx, scope, placeID, func(up *models.UserPlace) error {
		up.Status = up.Status.Toggle()
		return nil
	})
}

func (s *service) ToggleFavorite(ctx context.Context, scope models.Scope, placeID string) (models.UserPlace, error) {
	return s.update(ctx, scope, placeID, func(up *models.UserPlace) error {
		up.IsFavorite = !up.IsFavorite
		return nil
	})
}

// UpdateMeta shallow-merges patch into the stored meta.
func (s *service) UpdateMeta(ctx context.Context, scope models.Scope, placeID string, patch models.MetaPatch) (models.UserPlace, error) {
	if err := validation.Date("meta.plannedDate", patch.PlannedDate); err != nil {
		return models.UserPlace{}, err
	}
	return s.update(ctx, scope, placeID, func(up *models.UserPlace) error {
		up.Meta = up.Meta.Merge(patch)
		return nil
	})
}

// Patch writes explicit values. An empty patch returns the stored record.
func (s *service) Patch(ctx context.Context, scope models.Scope, placeID string, patch models.UserPlacePatch) (models.UserPlace, error) {
	if err := validation.Struct(patch); err != nil {
		return models.UserPlace{}, err
	}
	if patch.Meta != nil {
		if err := validation.Date("meta.plannedDate", patch.Meta.PlannedDate); err != nil {
			return models.UserPlace{}, err
		}
	}
	if patch.Empty() {
		return s.Get(ctx, scope, placeID)
	}
	return s.update(ctx, scope, placeID, func(up *models.UserPlace) error {
		patch.Apply(up)
		return nil
	})
}

// Remove deletes a saved place; removing an absent place succeeds.
func (s *service) Remove(ctx context.Context, scope models.Scope, placeID string) error {
	if err := s.guard(ctx, scope); err != nil {
		return err
	}
	_, err := s.store.DeleteUserPlace(ctx, scope, placeID)
	return err
}

func (s *service) update(ctx context.Context, scope models.Scope, placeID string, mutate func(*models.UserPlace) error) (models.UserPlace, error) {
	if err := s.guard(ctx, scope); err != nil {
		return models.UserPlace{}, err
	}
	return s.store.UpdateUserPlace(ctx, scope, placeID, mutate)
}

// guard checks the context and that a named collection exists.
func (s *service) guard(ctx context.Context, scope models.Scope) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if scope.UserID == "" {
		return errors.New("missing user identity")
	}
	if scope.IsDefault() {
		return nil
	}
	ok, err := s.store.CollectionExists(ctx, scope.UserID, scope.CollectionID())
	if err != nil {
		return err
	}
	if !ok {
		return store.ErrCollectionNotFound
	}
	return nil
}
