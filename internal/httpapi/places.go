package httpapi

import (
	"net/http"
	"strconv"
	"strings"

	"placeplanner/internal/validation"
	"placeplanner/shared/go/models"
)

func (s *Server) handleListPlaces(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	q := models.CatalogQuery{
		Category: query.Get("category"),
		Search:   query.Get("q"),
	}

	near, err := parseNear(query.Get("lat"), query.Get("lon"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	q.Near = near

	entries, err := s.places.List(r.Context(), q)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Places []models.CatalogEntry `json:"places"`
	}{Places: entries})
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.places.Categories(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if categories == nil {
		categories = []string{}
	}
	writeJSON(w, http.StatusOK, struct {
		Categories []string `json:"categories"`
	}{Categories: categories})
}

func (s *Server) handleGetPlace(w http.ResponseWriter, r *http.Request) {
	place, err := s.places.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Place models.Place `json:"place"`
	}{Place: place})
}

// parseNear reads the optional lat/lon pair. Both or neither must be set.
func parseNear(latStr, lonStr string) (*models.Coordinates, error) {
	latStr, lonStr = strings.TrimSpace(latStr), strings.TrimSpace(lonStr)
	if latStr == "" && lonStr == "" {
		return nil, nil
	}

	invalid := &validation.RequestValidationError{}
	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		invalid.Fields = append(invalid.Fields, validation.FieldError{Field: "lat", Tag: "latitude", Message: "must be a valid latitude"})
	}
	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		invalid.Fields = append(invalid.Fields, validation.FieldError{Field: "lon", Tag: "longitude", Message: "must be a valid longitude"})
	}
	if len(invalid.Fields) > 0 {
		return nil, invalid
	}

	at := models.Coordinates{Lat: lat, Lon: lon}
	if err := validation.Struct(at); err != nil {
		return nil, err
	}
	return &at, nil
}
