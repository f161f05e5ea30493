package httpapi

import (
	"net/http"

	"placeplanner/internal/validation"
	"placeplanner/shared/go/models"
)

type addPlaceRequest struct {
	Place *models.Place `json:"place"`
}

type placeResponse struct {
	Place models.UserPlace `json:"place"`
}

func (s *Server) handleListUserPlaces(w http.ResponseWriter, r *http.Request) {
	places, err := s.userPlaces.List(r.Context(), scopeFrom(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if places == nil {
		places = []models.UserPlace{}
	}
	writeJSON(w, http.StatusOK, struct {
		Places []models.UserPlace `json:"places"`
	}{Places: places})
}

func (s *Server) handleAddUserPlace(w http.ResponseWriter, r *http.Request) {
	var req addPlaceRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Place == nil {
		writeError(w, r, &validation.RequestValidationError{Fields: []validation.FieldError{{
			Field: "place", Tag: "required", Message: "is required",
		}}})
		return
	}

	stored, created, err := s.userPlaces.Add(r.Context(), scopeFrom(r), *req.Place)
	if err != nil {
		writeError(w, r, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, placeResponse{Place: stored})
}

func (s *Server) handlePatchUserPlace(w http.ResponseWriter, r *http.Request) {
	var patch models.UserPlacePatch
	if !decodeJSON(w, r, &patch) {
		return
	}

	updated, err := s.userPlaces.Patch(r.Context(), scopeFrom(r), r.PathValue("id"), patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, placeResponse{Place: updated})
}

func (s *Server) handleToggleStatus(w http.ResponseWriter, r *http.Request) {
	updated, err := s.userPlaces.ToggleStatus(r.Context(), scopeFrom(r), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, placeResponse{Place: updated})
}

func (s *Server) handleToggleFavorite(w http.ResponseWriter, r *http.Request) {
	updated, err := s.userPlaces.ToggleFavorite(r.Context(), scopeFrom(r), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, placeResponse{Place: updated})
}

func (s *Server) handleRemoveUserPlace(w http.ResponseWriter, r *http.Request) {
	if err := s.userPlaces.Remove(r.Context(), scopeFrom(r), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
