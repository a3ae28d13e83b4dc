// Package model defines domain entities for the application.
package model

import (
	"strings"
	"time"
)

// Bookmark represents a saved link owned by a single user.
// Tags are a free-form comma-separated string; no structure is enforced.
type Bookmark struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"-"`
	Title      string    `json:"title"`
	URL        string    `json:"url"`
	Tags       string    `json:"tags"`
	Note       string    `json:"note"`
	IsFavorite bool      `json:"is_favorite"`
	CreatedAt  time.Time `json:"created_at"`
}

// Normalize trims surrounding whitespace from all user-supplied text fields.
// Called before validation so that a whitespace-only title or URL is rejected
// as empty.
func (b *Bookmark) Normalize() {
	b.Title = strings.TrimSpace(b.Title)
	b.URL = strings.TrimSpace(b.URL)
	b.Tags = strings.TrimSpace(b.Tags)
	b.Note = strings.TrimSpace(b.Note)
}
