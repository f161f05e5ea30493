package models

import (
	"net/url"
	"time"
)

// DefaultCollection is the implicit collection every user owns.
const DefaultCollection = "default"

// Scope identifies whose places an operation touches. UserID is the opaque
// caller identity; an empty Collection means the default collection.
type Scope struct {
	UserID     string
	Collection string
}

// CollectionID returns the effective collection id.
func (s Scope) CollectionID() string {
	if s.Collection == "" {
		return DefaultCollection
	}
	return s.Collection
}

// IsDefault reports whether the scope targets the default collection.
func (s Scope) IsDefault() bool {
	return s.CollectionID() == DefaultCollection
}

// Key renders the scope as a stable string, e.g. for preference storage.
// Both parts are escaped so distinct scopes never share a key.
func (s Scope) Key() string {
	return url.PathEscape(s.UserID) + "/" + url.PathEscape(s.CollectionID())
}

// Collection is a named grouping of saved places owned by one user.
type Collection struct {
	ID         string    `json:"id"`
	UserID     string    `json:"-"`
	Name       string    `json:"name"`
	PlaceCount int       `json:"placeCount"`
	CreatedAt  time.Time `json:"createdAt"`
}

// CollectionRequest is the payload for creating a collection.
type CollectionRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}
