package main

import (
	"net/http"

	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"placeplanner/internal/app/collections"
	"placeplanner/internal/app/places"
	"placeplanner/internal/app/userplaces"
	"placeplanner/internal/httpapi"
	"placeplanner/internal/store"
	"placeplanner/shared/go/config"
	"placeplanner/shared/go/middleware"
)

func newHTTPHandler(cfg *config.Config, dataStore *store.Store) http.Handler {
	placesSvc := places.New(dataStore)
	userPlacesSvc := userplaces.New(dataStore)
	collectionsSvc := collections.New(dataStore)

	api := httpapi.New(placesSvc, userPlacesSvc, collectionsSvc,
		httpapi.WithImagesDir(cfg.Catalog.ImagesDir),
		httpapi.WithMetricsHandler(promhttp.Handler()),
	)

	// Metrics wraps the mux directly so it can read the matched pattern.
	handler := middleware.Metrics()(api.Routes())

	if cfg.RateLimit.Requests > 0 {
		handler = httprate.LimitByIP(cfg.RateLimit.Requests, cfg.RateLimit.Window)(handler)
	}

	handler = cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders:   []string{middleware.RequestIDHeader},
		AllowCredentials: false,
		MaxAge:           3600,
	})(handler)

	return middleware.Chain(handler,
		middleware.Recovery(),
		middleware.RequestLogging(),
	)
}
