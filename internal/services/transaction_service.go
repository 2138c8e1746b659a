package services

import (
	"context"
	"fmt"

	"budget/internal/amqp"
	"budget/internal/core"
	"budget/internal/storage"
)

// TransactionService enforces the transaction rules. Reads and writes
// are scoped to the authenticated owner.
type TransactionService struct {
	storage *storage.SQLiteRepository
	events  *amqp.Client
}

func NewTransactionService(storage *storage.SQLiteRepository, events *amqp.Client) *TransactionService {
	return &TransactionService{
		storage: storage,
		events:  events,
	}
}

// FindAll returns the caller's transactions joined with category and
// owner, ordered by creation time descending.
func (s *TransactionService) FindAll(ctx context.Context, userID int64) ([]core.Transaction, error) {
	return s.storage.ListTransactions(ctx, userID)
}

// FindOne fails with ErrNotFound when the id is absent or foreign.
func (s *TransactionService) FindOne(ctx context.Context, id, userID int64) (*core.Transaction, error) {
	tx, err := s.storage.GetTransaction(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction %d: %w", id, core.ErrNotFound)
	}
	return tx, nil
}

// Create validates the transaction and checks that the referenced
// category belongs to the caller before inserting.
func (s *TransactionService) Create(ctx context.Context, tx core.Transaction) (*core.Transaction, error) {
	if err := tx.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkCategory(ctx, tx.CategoryID, tx.UserID); err != nil {
		return nil, err
	}

	created, err := s.storage.CreateTransaction(ctx, tx)
	if err != nil {
		return nil, err
	}
	publishChange(ctx, s.events, amqp.EntityTransaction, amqp.ActionCreated, created.ID, tx.UserID)
	return created, nil
}

// Update merges the supplied fields and returns the re-fetched joined
// record, or ErrNotFound for an absent or foreign id.
func (s *TransactionService) Update(ctx context.Context, id, userID int64, upd core.TransactionUpdate) (*core.Transaction, error) {
	if err := upd.Validate(); err != nil {
		return nil, err
	}
	if upd.CategoryID != nil {
		if err := s.checkCategory(ctx, *upd.CategoryID, userID); err != nil {
			return nil, err
		}
	}

	updated, err := s.storage.UpdateTransaction(ctx, id, userID, upd)
	if err != nil {
		return nil, err
	}
	publishChange(ctx, s.events, amqp.EntityTransaction, amqp.ActionUpdated, id, userID)
	return updated, nil
}

// Remove deletes the transaction and returns the deleted row, or
// ErrNotFound for an absent or foreign id.
func (s *TransactionService) Remove(ctx context.Context, id, userID int64) (*core.Transaction, error) {
	deleted, err := s.storage.DeleteTransaction(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	publishChange(ctx, s.events, amqp.EntityTransaction, amqp.ActionDeleted, id, userID)
	return deleted, nil
}

// checkCategory rejects category ids that do not resolve to a category
// owned by the caller. Reported as a field violation so the boundary
// answers 400, not 500 on a foreign-key failure.
func (s *TransactionService) checkCategory(ctx context.Context, categoryID, userID int64) error {
	cat, err := s.storage.GetCategory(ctx, categoryID, userID)
	if err != nil {
		return err
	}
	if cat == nil {
		ve := core.NewValidationError()
		ve.Add("categoryId", "does not reference one of your categories")
		return ve.OrNil()
	}
	return nil
}
