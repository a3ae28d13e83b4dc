// Package dto provides Data Transfer Objects for API requests and responses.
package dto

import (
	"time"

	"github.com/marknest/marknest/internal/model"
)

// CredentialsRequest is the request body for registration and login.
type CredentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// BookmarkRequest is the request body for creating or updating a bookmark.
type BookmarkRequest struct {
	Title string `json:"title"`
	URL   string `json:"url"`
	Tags  string `json:"tags"`
	Note  string `json:"note"`
}

// UserResponse is the public representation of a user.
type UserResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// BookmarkResponse represents a bookmark in API responses.
type BookmarkResponse struct {
	ID         int64     `json:"id"`
	Title      string    `json:"title"`
	URL        string    `json:"url"`
	Tags       string    `json:"tags"`
	Note       string    `json:"note"`
	IsFavorite bool      `json:"is_favorite"`
	CreatedAt  time.Time `json:"created_at"`
}

// OKResponse acknowledges a successful mutation.
type OKResponse struct {
	OK bool `json:"ok"`
}

// LoginResponse is returned on successful login.
type LoginResponse struct {
	OK   bool         `json:"ok"`
	User UserResponse `json:"user"`
}

// MeResponse reports the current session identity; User is null for
// anonymous callers.
type MeResponse struct {
	User *UserResponse `json:"user"`
}

// BookmarkListResponse wraps a bookmark listing.
type BookmarkListResponse struct {
	Bookmarks []BookmarkResponse `json:"bookmarks"`
}

// ToggleFavoriteResponse reports the new favorite state after a toggle.
type ToggleFavoriteResponse struct {
	OK         bool `json:"ok"`
	IsFavorite bool `json:"is_favorite"`
}

// ErrorResponse represents an API error.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ToUserResponse converts a User model to its public DTO.
func ToUserResponse(u *model.User) UserResponse {
	return UserResponse{
		ID:       u.ID,
		Username: u.Username,
	}
}

// ToBookmarkResponse converts a Bookmark model to its DTO.
func ToBookmarkResponse(b *model.Bookmark) BookmarkResponse {
	return BookmarkResponse{
		ID:         b.ID,
		Title:      b.Title,
		URL:        b.URL,
		Tags:       b.Tags,
		Note:       b.Note,
		IsFavorite: b.IsFavorite,
		CreatedAt:  b.CreatedAt,
	}
}

// ToBookmarkListResponse converts a slice of bookmarks; the Bookmarks field
// is always a JSON array, never null.
func ToBookmarkListResponse(bookmarks []*model.Bookmark) BookmarkListResponse {
	responses := make([]BookmarkResponse, len(bookmarks))
	for i, b := range bookmarks {
		responses[i] = ToBookmarkResponse(b)
	}
	return BookmarkListResponse{Bookmarks: responses}
}
