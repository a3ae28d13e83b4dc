// Package testutil provides shared helpers for tests.
package testutil

import (
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/marknest/marknest/internal/model"
	"github.com/marknest/marknest/internal/store"
	"github.com/marknest/marknest/internal/store/sqlite"
)

// RequireEnv returns an environment variable or skips the test if missing.
func RequireEnv(t testing.TB, key string) string {
	t.Helper()
	value := os.Getenv(key)
	if value == "" {
		t.Skipf("%s not set", key)
	}
	return value
}

// NewStore opens an in-memory SQLite store and closes it when the test ends.
func NewStore(t testing.TB) store.Store {
	t.Helper()
	s, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("open in-memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// NewTestBookmark creates a bookmark with sensible defaults for userID.
func NewTestBookmark(t testing.TB, userID int64, title string) *model.Bookmark {
	t.Helper()
	return &model.Bookmark{
		UserID:    userID,
		Title:     title,
		URL:       "https://example.com/" + title,
		Tags:      "test",
		Note:      "note for " + title,
		CreatedAt: time.Now().UTC(),
	}
}

// UniqueUsername generates a unique username for tests.
func UniqueUsername(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}
