package http

import (
	"net/http"

	"budget/internal/core"
)

var createTransactionSchema = schema{
	"title":      {kind: kindString, required: true},
	"amount":     {kind: kindPositiveNumber, required: true},
	"type":       {kind: kindTransactionType, required: true},
	"categoryId": {kind: kindPositiveInt, required: true},
	"userId":     {kind: kindPositiveInt},
}

var updateTransactionSchema = schema{
	"title":      {kind: kindString},
	"amount":     {kind: kindPositiveNumber},
	"type":       {kind: kindTransactionType},
	"categoryId": {kind: kindPositiveInt},
	"userId":     {kind: kindPositiveInt},
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	identity, err := caller(r)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	txs, err := s.transactions.FindAll(r.Context(), identity.UserID)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	if txs == nil {
		txs = []core.Transaction{}
	}
	writeJSON(w, http.StatusOK, txs)
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
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

	tx, err := s.transactions.FindOne(r.Context(), id, identity.UserID)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, tx)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	identity, err := caller(r)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	b, err := decodeBody(r, createTransactionSchema)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	if err := checkOwnBody(b, identity); err != nil {
		writeError(r.Context(), w, err)
		return
	}

	tx, err := s.transactions.Create(r.Context(), core.Transaction{
		Title:      b.getString("title"),
		Amount:     b.getFloat("amount"),
		Type:       core.TransactionType(b.getString("type")),
		CategoryID: b.getInt64("categoryId"),
		UserID:     identity.UserID,
	})
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	s.invalidateSummary(identity.UserID)
	writeJSON(w, http.StatusCreated, tx)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
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
	b, err := decodeBody(r, updateTransactionSchema)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	if err := checkOwnBody(b, identity); err != nil {
		writeError(r.Context(), w, err)
		return
	}

	var upd core.TransactionUpdate
	if b.has("title") {
		title := b.getString("title")
		upd.Title = &title
	}
	if b.has("amount") {
		amount := b.getFloat("amount")
		upd.Amount = &amount
	}
	if b.has("type") {
		typ := core.TransactionType(b.getString("type"))
		upd.Type = &typ
	}
	if b.has("categoryId") {
		categoryID := b.getInt64("categoryId")
		upd.CategoryID = &categoryID
	}

	tx, err := s.transactions.Update(r.Context(), id, identity.UserID, upd)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	s.invalidateSummary(identity.UserID)
	writeJSON(w, http.StatusOK, tx)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
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

	tx, err := s.transactions.Remove(r.Context(), id, identity.UserID)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	s.invalidateSummary(identity.UserID)
	writeJSON(w, http.StatusOK, tx)
}
