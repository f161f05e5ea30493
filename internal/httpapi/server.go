package httpapi

import (
	"context"
	"net/http"

	"placeplanner/shared/go/models"
)

// PlaceService describes catalog browsing.
type PlaceService interface {
	List(ctx context.Context, q models.CatalogQuery) ([]models.CatalogEntry, error)
	Get(ctx context.Context, id string) (models.Place, error)
	Categories(ctx context.Context) ([]string, error)
}

// UserPlaceService coordinates a user's saved places within one collection.
type UserPlaceService interface {
	List(ctx context.Context, scope models.Scope) ([]models.UserPlace, error)
	Add(ctx context.Context, scope models.Scope, place models.Place) (models.UserPlace, bool, error)
	ToggleStatus(ctx context.Context, scope models.Scope, placeID string) (models.UserPlace, error)
	ToggleFavorite(ctx context.Context, scope models.Scope, placeID string) (models.UserPlace, error)
	Patch(ctx context.Context, scope models.Scope, placeID string, patch models.UserPlacePatch) (models.UserPlace, error)
	Remove(ctx context.Context, scope models.Scope, placeID string) error
}

// CollectionService coordinates named collections.
type CollectionService interface {
	Create(ctx context.Context, userID, name string) (models.Collection, error)
	List(ctx context.Context, userID string) ([]models.Collection, error)
	Delete(ctx context.Context, userID, collectionID string) error
}

// Server wires HTTP handlers to the underlying services.
type Server struct {
	places      PlaceService
	userPlaces  UserPlaceService
	collections CollectionService

	imagesDir string
	metrics   http.Handler
}

// Option customises a Server.
type Option func(*Server)

// WithImagesDir serves catalog images from dir under /images/.
func WithImagesDir(dir string) Option {
	return func(s *Server) { s.imagesDir = dir }
}

// WithMetricsHandler exposes h at /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) { s.metrics = h }
}

// New configures a Server with the given services.
func New(places PlaceService, userPlaces UserPlaceService, collections CollectionService, opts ...Option) *Server {
	s := &Server{
		places:      places,
		userPlaces:  userPlaces,
		collections: collections,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Routes exposes the HTTP handlers for the catalog and saved places.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	// Health check endpoint
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	if s.metrics != nil {
		mux.Handle("GET /metrics", s.metrics)
	}
	if s.imagesDir != "" {
		mux.Handle("GET /images/", http.StripPrefix("/images/", http.FileServer(http.Dir(s.imagesDir))))
	}

	// Catalog routes
	mux.HandleFunc("GET /places", s.requireUser(s.handleListPlaces))
	mux.HandleFunc("GET /places/categories", s.requireUser(s.handleCategories))
	mux.HandleFunc("GET /places/{id}", s.requireUser(s.handleGetPlace))

	// Saved places in the default collection
	mux.HandleFunc("GET /user-places", s.requireUser(s.handleListUserPlaces))
	mux.HandleFunc("POST /user-places", s.requireUser(s.handleAddUserPlace))
	mux.HandleFunc("PATCH /user-places/{id}", s.requireUser(s.handlePatchUserPlace))
	mux.HandleFunc("PATCH /user-places/{id}/status", s.requireUser(s.handleToggleStatus))
	mux.HandleFunc("PATCH /user-places/{id}/favorite", s.requireUser(s.handleToggleFavorite))
	mux.HandleFunc("DELETE /user-places/{id}", s.requireUser(s.handleRemoveUserPlace))

	// Saved places in a named collection
	mux.HandleFunc("GET /collections/{collection}/places", s.requireUser(s.handleListUserPlaces))
	mux.HandleFunc("POST /collections/{collection}/places", s.requireUser(s.handleAddUserPlace))
	mux.HandleFunc("PATCH /collections/{collection}/places/{id}", s.requireUser(s.handlePatchUserPlace))
	mux.HandleFunc("PATCH /collections/{collection}/places/{id}/status", s.requireUser(s.handleToggleStatus))
	mux.HandleFunc("PATCH /collections/{collection}/places/{id}/favorite", s.requireUser(s.handleToggleFavorite))
	mux.HandleFunc("DELETE /collections/{collection}/places/{id}", s.requireUser(s.handleRemoveUserPlace))

	// Collection routes
	mux.HandleFunc("GET /collections", s.requireUser(s.handleListCollections))
	mux.HandleFunc("POST /collections", s.requireUser(s.handleCreateCollection))
	mux.HandleFunc("DELETE /collections/{collection}", s.requireUser(s.handleDeleteCollection))

	return mux
}
