package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/goccy/go-json"

	"placeplanner/internal/app/collections"
	"placeplanner/internal/store"
	"placeplanner/internal/validation"
	"placeplanner/shared/go/logging"
)

const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error  string                  `json:"error"`
	Fields []validation.FieldError `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// decodeJSON reads a JSON body. An empty body leaves v untouched.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if r.Body == nil || r.ContentLength == 0 {
		return true
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON payload"})
		return false
	}
	return true
}

// writeError maps service errors onto HTTP statuses.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *validation.RequestValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid place data", Fields: verr.Fields})
	case errors.Is(err, store.ErrUserPlaceNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "place not found"})
	case errors.Is(err, store.ErrPlaceNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "place not found in catalog"})
	case errors.Is(err, store.ErrCollectionNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "collection not found"})
	case errors.Is(err, store.ErrCollectionExists):
		writeJSON(w, http.StatusConflict, errorResponse{Error: "collection name already taken"})
	case errors.Is(err, collections.ErrDefaultCollection):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "request canceled"})
	default:
		logging.WithContext(r.Context()).Error().Err(err).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("request failed")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
	}
}
