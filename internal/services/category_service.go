package services

import (
	"context"

	"budget/internal/amqp"
	"budget/internal/core"
	"budget/internal/storage"
)

// CategoryService enforces the category rules. All operations are scoped
// to the authenticated owner: a foreign category id behaves like an
// absent one.
type CategoryService struct {
	storage *storage.SQLiteRepository
	events  *amqp.Client
}

func NewCategoryService(storage *storage.SQLiteRepository, events *amqp.Client) *CategoryService {
	return &CategoryService{
		storage: storage,
		events:  events,
	}
}

func (s *CategoryService) FindAll(ctx context.Context, userID int64) ([]core.Category, error) {
	return s.storage.ListCategories(ctx, userID)
}

func (s *CategoryService) Create(ctx context.Context, name string, userID int64) (*core.Category, error) {
	c := core.Category{Name: name, UserID: userID}
	if err := c.Validate(); err != nil {
		return nil, err
	}

	created, err := s.storage.CreateCategory(ctx, name, userID)
	if err != nil {
		return nil, err
	}
	publishChange(ctx, s.events, amqp.EntityCategory, amqp.ActionCreated, created.ID, userID)
	return created, nil
}

func (s *CategoryService) Update(ctx context.Context, id, userID int64, name string) (*core.Category, error) {
	c := core.Category{Name: name, UserID: userID}
	if err := c.Validate(); err != nil {
		return nil, err
	}

	updated, err := s.storage.RenameCategory(ctx, id, userID, name)
	if err != nil {
		return nil, err
	}
	publishChange(ctx, s.events, amqp.EntityCategory, amqp.ActionUpdated, id, userID)
	return updated, nil
}

// Delete removes the category, refusing with ErrConflict while
// transactions still reference it.
func (s *CategoryService) Delete(ctx context.Context, id, userID int64) (*core.Category, error) {
	deleted, err := s.storage.DeleteCategory(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	publishChange(ctx, s.events, amqp.EntityCategory, amqp.ActionDeleted, id, userID)
	return deleted, nil
}
