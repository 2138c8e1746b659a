package http

import (
	"net/http"

	"budget/internal/core"
)

var createCategorySchema = schema{
	"name":   {kind: kindString, required: true},
	"userId": {kind: kindPositiveInt},
}

var updateCategorySchema = schema{
	"name": {kind: kindString, required: true},
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	identity, err := caller(r)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	categories, err := s.categories.FindAll(r.Context(), identity.UserID)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	if categories == nil {
		categories = []core.Category{}
	}
	writeJSON(w, http.StatusOK, categories)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	identity, err := caller(r)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	b, err := decodeBody(r, createCategorySchema)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	if err := checkOwnBody(b, identity); err != nil {
		writeError(r.Context(), w, err)
		return
	}

	category, err := s.categories.Create(r.Context(), b.getString("name"), identity.UserID)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	writeJSON(w, http.StatusCreated, category)
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	identity, err := caller(r)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	b, err := decodeBody(r, updateCategorySchema)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	category, err := s.categories.Update(r.Context(), id, identity.UserID, b.getString("name"))
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	// Renames show up in summary bucket names.
	s.invalidateSummary(identity.UserID)
	writeJSON(w, http.StatusOK, category)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	identity, err := caller(r)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	category, err := s.categories.Delete(r.Context(), id, identity.UserID)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	s.invalidateSummary(identity.UserID)
	writeJSON(w, http.StatusOK, category)
}
