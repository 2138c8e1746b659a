package services

import (
	"context"
	"fmt"
	"log/slog"

	"budget/internal/auth"
	"budget/internal/core"
)

// AuthService validates credentials against the credential store and
// issues signed session tokens. Verification is stateless; there is no
// server-side session record.
type AuthService struct {
	users  *UserService
	tokens *auth.TokenManager
}

func NewAuthService(users *UserService, tokens *auth.TokenManager) *AuthService {
	return &AuthService{
		users:  users,
		tokens: tokens,
	}
}

// Login checks the credentials and returns a signed token. Unknown email
// and wrong password both map to ErrUnauthorized so the response never
// reveals which one failed.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return "", fmt.Errorf("login: %w", err)
	}
	if user == nil || !auth.CheckPassword(user.PasswordHash, password) {
		slog.WarnContext(ctx, "Login rejected", "email", email)
		return "", fmt.Errorf("login: invalid credentials: %w", core.ErrUnauthorized)
	}

	token, err := s.tokens.Issue(*user)
	if err != nil {
		return "", fmt.Errorf("login: %w", err)
	}

	slog.InfoContext(ctx, "Login succeeded", "user_id", user.ID, "email", user.Email)
	return token, nil
}

// Register creates a new account; it shares the user service rules.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*core.User, error) {
	return s.users.Create(ctx, name, email, password)
}

// Verify decodes a bearer token into the caller's identity.
func (s *AuthService) Verify(token string) (auth.Identity, error) {
	return s.tokens.Verify(token)
}
