// Package store defines the persistence interface for users and bookmarks.
// Implementations live in the sqlite and postgres subpackages; the active one
// is selected by the DATABASE_URL scheme at startup.
package store

import (
	"context"
	"errors"

	"github.com/marknest/marknest/internal/model"
)

// Common errors returned by store implementations.
var (
	ErrUserNotFound     = errors.New("user not found")
	ErrUsernameExists   = errors.New("username already exists")
	ErrBookmarkNotFound = errors.New("bookmark not found")
)

// Store provides access to the relational schema backing the application.
//
// Every bookmark method takes the owning user's id and must scope all reads
// and writes to rows whose user_id matches it; no method may ever observe or
// touch another user's rows.
type Store interface {
	// Users
	CreateUser(ctx context.Context, username, passwordHash string) (int64, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	GetUserByID(ctx context.Context, id int64) (*model.User, error)
	ListUsers(ctx context.Context) ([]*model.User, error)

	// Bookmarks
	CreateBookmark(ctx context.Context, b *model.Bookmark) (int64, error)
	GetBookmark(ctx context.Context, userID, id int64) (*model.Bookmark, error)
	// ListBookmarks returns the user's bookmarks, favorites first, then
	// newest first. A non-empty query restricts the result to rows where it
	// appears (case-insensitively) in the title, URL, tags or note.
	ListBookmarks(ctx context.Context, userID int64, query string) ([]*model.Bookmark, error)
	UpdateBookmark(ctx context.Context, userID, id int64, title, url, tags, note string) error
	// DeleteBookmark is a silent no-op when the row is absent or owned by
	// another user.
	DeleteBookmark(ctx context.Context, userID, id int64) error
	// ToggleFavorite flips the favorite flag and returns the new value.
	ToggleFavorite(ctx context.Context, userID, id int64) (bool, error)
	CountBookmarks(ctx context.Context, userID int64) (int64, error)

	Ping(ctx context.Context) error
	Close() error
}
