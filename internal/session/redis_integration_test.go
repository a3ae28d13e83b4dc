package session_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/marknest/marknest/internal/session"
	"github.com/marknest/marknest/internal/testutil"
)

// Integration tests against a real Redis. Skipped unless TEST_REDIS_URL is set.

func TestRedisStore_Roundtrip(t *testing.T) {
	redisURL := testutil.RequireEnv(t, "TEST_REDIS_URL")
	ctx := context.Background()

	s, err := session.NewRedis(ctx, redisURL, time.Minute)
	if err != nil {
		t.Fatalf("connect Redis: %v", err)
	}
	defer s.Close()

	token, err := s.Create(ctx, 99)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	userID, err := s.Get(ctx, token)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if userID != 99 {
		t.Errorf("expected user id 99, got %d", userID)
	}

	if err := s.Delete(ctx, token); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := s.Get(ctx, token); !errors.Is(err, session.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestRedisStore_UnknownToken(t *testing.T) {
	redisURL := testutil.RequireEnv(t, "TEST_REDIS_URL")
	ctx := context.Background()

	s, err := session.NewRedis(ctx, redisURL, time.Minute)
	if err != nil {
		t.Fatalf("connect Redis: %v", err)
	}
	defer s.Close()

	if _, err := s.Get(ctx, session.NewToken()); !errors.Is(err, session.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
