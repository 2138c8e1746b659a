package http

import (
	"net/http"

	"budget/internal/core"
)

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.users.FindAll(r.Context())
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	if users == nil {
		users = []core.User{}
	}
	writeJSON(w, http.StatusOK, users)
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	b, err := decodeBody(r, registerSchema)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	user, err := s.users.Create(r.Context(), b.getString("name"), b.getString("email"), b.getString("password"))
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	user, err := s.users.Remove(r.Context(), id)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	// Cascaded rows are gone with the account.
	s.invalidateSummary(id)
	writeJSON(w, http.StatusOK, user)
}
