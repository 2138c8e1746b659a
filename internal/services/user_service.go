package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"budget/internal/amqp"
	"budget/internal/auth"
	"budget/internal/core"
	"budget/internal/storage"
)

// UserService enforces the account rules over the credential store.
type UserService struct {
	storage *storage.SQLiteRepository
	events  *amqp.Client
}

func NewUserService(storage *storage.SQLiteRepository, events *amqp.Client) *UserService {
	return &UserService{
		storage: storage,
		events:  events,
	}
}

// Create registers a new user. The password is hashed before it reaches
// the store; a duplicate email surfaces as ErrConflict.
func (s *UserService) Create(ctx context.Context, name, email, password string) (*core.User, error) {
	ve := core.NewValidationError()
	if strings.TrimSpace(name) == "" {
		ve.Add("name", "must not be empty")
	}
	if !core.ValidEmail(email) {
		ve.Add("email", "must be a valid email address")
	}
	if password == "" {
		ve.Add("password", "must not be empty")
	}
	if err := ve.OrNil(); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	user, err := s.storage.CreateUser(ctx, name, email, hash)
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "User registered", "user_id", user.ID, "email", user.Email)
	publishChange(ctx, s.events, amqp.EntityUser, amqp.ActionCreated, user.ID, user.ID)

	return user, nil
}

func (s *UserService) FindAll(ctx context.Context) ([]core.User, error) {
	return s.storage.ListUsers(ctx)
}

// FindOne returns (nil, nil) for an absent id; absence is not an error
// for lookups.
func (s *UserService) FindOne(ctx context.Context, id int64) (*core.User, error) {
	return s.storage.GetUser(ctx, id)
}

// FindByEmail returns (nil, nil) for an unknown email.
func (s *UserService) FindByEmail(ctx context.Context, email string) (*core.User, error) {
	return s.storage.GetUserByEmail(ctx, email)
}

// Remove deletes the user and returns the deleted record, or
// ErrNotFound for an absent id.
func (s *UserService) Remove(ctx context.Context, id int64) (*core.User, error) {
	user, err := s.storage.DeleteUser(ctx, id)
	if err != nil {
		return nil, err
	}
	publishChange(ctx, s.events, amqp.EntityUser, amqp.ActionDeleted, id, id)
	return user, nil
}
