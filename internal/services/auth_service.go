package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"finbook/internal/auth"
	"finbook/internal/core"
	applog "finbook/internal/log"
	"finbook/internal/storage"
)

// ErrInvalidCredentials is returned on login when the email is unknown or
// the password does not match. Callers get the same error either way.
var ErrInvalidCredentials = errors.New("invalid credentials")

// AuthService handles registration and login.
type AuthService struct {
	storage *storage.SQLiteRepository
	tokens  *auth.TokenManager
	logger  *applog.Logger
}

func NewAuthService(store *storage.SQLiteRepository, tokens *auth.TokenManager, logger *applog.Logger) *AuthService {
	return &AuthService{
		storage: store,
		tokens:  tokens,
		logger:  logger.WithComponent(applog.ComponentAuth),
	}
}

// Register creates a new user and returns it with a fresh access token.
func (s *AuthService) Register(ctx context.Context, email, password string) (core.User, string, error) {
	if err := core.ValidateCredentials(email, password); err != nil {
		return core.User{}, "", err
	}
	email = strings.ToLower(strings.TrimSpace(email))

	hash, err := auth.HashPassword(password)
	if err != nil {
		return core.User{}, "", fmt.Errorf("hash password: %w", err)
	}

	user, err := s.storage.CreateUser(ctx, email, hash)
	if err != nil {
		return core.User{}, "", err
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return core.User{}, "", fmt.Errorf("issue token: %w", err)
	}

	s.logger.InfoContext(ctx, "User registered",
		applog.FieldUserID, user.ID,
		applog.FieldOperation, applog.OpRegister)
	return user, token, nil
}

// Login verifies credentials and returns the user with an access token.
func (s *AuthService) Login(ctx context.Context, email, password string) (core.User, string, error) {
	if err := core.ValidateCredentials(email, password); err != nil {
		return core.User{}, "", err
	}
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.storage.GetUserByEmail(ctx, email)
	if errors.Is(err, storage.ErrNotFound) {
		return core.User{}, "", ErrInvalidCredentials
	}
	if err != nil {
		return core.User{}, "", err
	}

	if err := auth.CheckPassword(user.PasswordHash, password); err != nil {
		return core.User{}, "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return core.User{}, "", fmt.Errorf("issue token: %w", err)
	}

	s.logger.InfoContext(ctx, "User logged in",
		applog.FieldUserID, user.ID,
		applog.FieldOperation, applog.OpLogin)
	return user, token, nil
}
