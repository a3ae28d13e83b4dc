// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/marknest/marknest/internal/auth"
	"github.com/marknest/marknest/internal/metrics"
	"github.com/marknest/marknest/internal/model"
	"github.com/marknest/marknest/internal/session"
	"github.com/marknest/marknest/internal/store"
)

// Identity service errors.
var (
	ErrCredentialsRequired = errors.New("username and password required")
	ErrUsernameTaken       = errors.New("username already taken")
	// ErrInvalidCredentials covers both unknown usernames and wrong
	// passwords so that login failures never reveal which one it was.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// IdentityService handles registration, login and session-bound identity.
type IdentityService struct {
	store    store.Store
	sessions session.Store
	seeder   *Seeder
	metrics  metrics.Recorder
	logger   *slog.Logger
}

// NewIdentityService creates an IdentityService.
func NewIdentityService(st store.Store, sessions session.Store, seeder *Seeder, recorder metrics.Recorder, logger *slog.Logger) *IdentityService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &IdentityService{
		store:    st,
		sessions: sessions,
		seeder:   seeder,
		metrics:  recorder,
		logger:   logger,
	}
}

// Register creates a new account and populates it with the sample bookmark
// set. Seeding is best-effort: a failure is logged and deliberately ignored,
// so the account still comes into existence.
func (s *IdentityService) Register(ctx context.Context, username, password string) (int64, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return 0, ErrCredentialsRequired
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return 0, fmt.Errorf("hash password: %w", err)
	}

	userID, err := s.store.CreateUser(ctx, username, hash)
	if err != nil {
		if errors.Is(err, store.ErrUsernameExists) {
			return 0, ErrUsernameTaken
		}
		return 0, fmt.Errorf("create user: %w", err)
	}

	if err := s.seeder.SeedUser(ctx, userID); err != nil {
		s.logger.Warn("sample bookmark seeding failed",
			"user_id", userID,
			"error", err,
		)
	}

	s.metrics.IncUserRegistered()
	s.logger.Info("user registered", "user_id", userID, "username", username)

	return userID, nil
}

// Login verifies credentials, starts a session and returns the user together
// with the session token. Unknown usernames and wrong passwords produce the
// identical error.
func (s *IdentityService) Login(ctx context.Context, username, password string) (*model.User, string, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, "", ErrCredentialsRequired
	}

	user, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("look up user: %w", err)
	}

	match, err := auth.VerifyPassword(password, user.PasswordHash)
	if err != nil || !match {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.sessions.Create(ctx, user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("create session: %w", err)
	}

	s.metrics.IncUserLoggedIn()
	s.logger.Info("user logged in", "user_id", user.ID)

	return user, token, nil
}

// Logout ends the session for token. Idempotent; an empty or unknown token
// is not an error.
func (s *IdentityService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.sessions.Delete(ctx, token); err != nil && !errors.Is(err, session.ErrNotFound) {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// UserByID looks up a user by id. Returns nil (no error) when the user does
// not exist, e.g. for a session that outlived its account.
func (s *IdentityService) UserByID(ctx context.Context, id int64) (*model.User, error) {
	user, err := s.store.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("look up user: %w", err)
	}
	return user, nil
}
