package http

import (
	"net/http"
)

var loginSchema = schema{
	"email":    {kind: kindEmail, required: true},
	"password": {kind: kindString, required: true},
}

var registerSchema = schema{
	"name":     {kind: kindString, required: true},
	"email":    {kind: kindEmail, required: true},
	"password": {kind: kindString, required: true},
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	b, err := decodeBody(r, loginSchema)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	token, err := s.auth.Login(r.Context(), b.getString("email"), b.getString("password"))
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"access_token": token})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	b, err := decodeBody(r, registerSchema)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	user, err := s.auth.Register(r.Context(), b.getString("name"), b.getString("email"), b.getString("password"))
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	writeJSON(w, http.StatusCreated, user)
}
