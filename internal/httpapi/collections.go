package httpapi

import (
	"net/http"
	"strings"

	"placeplanner/internal/validation"
	"placeplanner/shared/go/models"
)

func (s *Server) handleListCollections(w http.ResponseWriter, r *http.Request) {
	id, _ := IdentityFromContext(r.Context())
	list, err := s.collections.List(r.Context(), id.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Collections []models.Collection `json:"collections"`
	}{Collections: list})
}

func (s *Server) handleCreateCollection(w http.ResponseWriter, r *http.Request) {
	var req models.CollectionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if err := validation.Struct(req); err != nil {
		writeError(w, r, err)
		return
	}

	id, _ := IdentityFromContext(r.Context())
	created, err := s.collections.Create(r.Context(), id.UserID, req.Name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, struct {
		Collection models.Collection `json:"collection"`
	}{Collection: created})
}

func (s *Server) handleDeleteCollection(w http.ResponseWriter, r *http.Request) {
	id, _ := IdentityFromContext(r.Context())
	if err := s.collections.Delete(r.Context(), id.UserID, r.PathValue("collection")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
