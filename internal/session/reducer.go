// Package session keeps a client-side copy of one collection and applies
// mutations optimistically, falling back to a full resync when the remote
// rejects one.
package session

import (
	"slices"
	"time"

	"placeplanner/shared/go/models"
)

// State is an immutable snapshot of a collection. Reduce never modifies a
// State in place; it returns a new one.
type State struct {
	Loading bool
	Places  []models.UserPlace
}

// Has reports whether a place with id is present.
func (s State) Has(id string) bool {
	return s.index(id) >= 0
}

// Find returns the place with id.
func (s State) Find(id string) (models.UserPlace, bool) {
	if i := s.index(id); i >= 0 {
		return s.Places[i], true
	}
	return models.UserPlace{}, false
}

func (s State) index(id string) int {
	return slices.IndexFunc(s.Places, func(up models.UserPlace) bool { return up.ID == id })
}

// Action is one of Load, Sync, Reset, Add, Remove, ToggleStatus,
// ToggleFavorite or UpdateMeta.
type Action interface {
	reduce(State) State
}

// Load marks the collection as being fetched.
type Load struct{}

// Sync replaces the collection wholesale with authoritative records.
type Sync struct {
	Places []models.UserPlace
}

// Reset clears the collection after an identity change.
type Reset struct{}

// Add saves a catalog place with default fields. Adding an id that is
// already present does nothing.
type Add struct {
	Place models.Place
	Now   time.Time
}

// Remove drops a place.
type Remove struct {
	ID string
}

// ToggleStatus flips a place between want and visited.
type ToggleStatus struct {
	ID string
}

// ToggleFavorite flips the favorite flag.
type ToggleFavorite struct {
	ID string
}

// UpdateMeta shallow-merges a patch into the place's meta.
type UpdateMeta struct {
	ID    string
	Patch models.MetaPatch
}

// Reduce applies a to s.
func Reduce(s State, a Action) State {
	return a.reduce(s)
}

func (Load) reduce(State) State {
	return State{Loading: true}
}

func (a Sync) reduce(State) State {
	places := make([]models.UserPlace, len(a.Places))
	for i, up := range a.Places {
		places[i] = up.Normalized()
	}
	return State{Places: places}
}

func (Reset) reduce(State) State {
	return State{Places: []models.UserPlace{}}
}

func (a Add) reduce(s State) State {
	if s.Has(a.Place.ID) {
		return s
	}
	places := make([]models.UserPlace, 0, len(s.Places)+1)
	places = append(places, models.NewUserPlace(a.Place, a.Now))
	places = append(places, s.Places...)
	return State{Loading: s.Loading, Places: places}
}

func (a Remove) reduce(s State) State {
	i := s.index(a.ID)
	if i < 0 {
		return s
	}
	return State{Loading: s.Loading, Places: slices.Delete(slices.Clone(s.Places), i, i+1)}
}

func (a ToggleStatus) reduce(s State) State {
	return s.replace(a.ID, func(up *models.UserPlace) {
		up.Status = up.Status.Toggle()
	})
}

func (a ToggleFavorite) reduce(s State) State {
	return s.replace(a.ID, func(up *models.UserPlace) {
		up.IsFavorite = !up.IsFavorite
	})
}

func (a UpdateMeta) reduce(s State) State {
	return s.replace(a.ID, func(up *models.UserPlace) {
		up.Meta = up.Meta.Merge(a.Patch)
	})
}

// replace copies s and rewrites the place with id. Unknown ids are a no-op.
func (s State) replace(id string, fn func(*models.UserPlace)) State {
	i := s.index(id)
	if i < 0 {
		return s
	}
	places := slices.Clone(s.Places)
	up := places[i].Clone()
	fn(&up)
	places[i] = up
	return State{Loading: s.Loading, Places: places}
}
