package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/marknest/marknest/internal/metrics"
	"github.com/marknest/marknest/internal/model"
	"github.com/marknest/marknest/internal/store"
)

// Bookmark service errors.
var (
	ErrTitleRequired    = errors.New("title required")
	ErrURLRequired      = errors.New("url required")
	ErrBookmarkNotFound = errors.New("bookmark not found")
)

// BookmarkService handles bookmark business logic. Every method operates on
// behalf of an already-authenticated user id.
type BookmarkService struct {
	store   store.Store
	metrics metrics.Recorder
	logger  *slog.Logger
}

// NewBookmarkService creates a BookmarkService.
func NewBookmarkService(st store.Store, recorder metrics.Recorder, logger *slog.Logger) *BookmarkService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &BookmarkService{
		store:   st,
		metrics: recorder,
		logger:  logger,
	}
}

// BookmarkInput carries the user-editable fields of a bookmark.
type BookmarkInput struct {
	Title string
	URL   string
	Tags  string
	Note  string
}

// List returns the user's bookmarks, favorites first, then newest first.
// A non-empty query narrows the result to bookmarks whose title, URL, tags
// or note contains it (case-insensitive).
func (s *BookmarkService) List(ctx context.Context, userID int64, query string) ([]*model.Bookmark, error) {
	bookmarks, err := s.store.ListBookmarks(ctx, userID, strings.TrimSpace(query))
	if err != nil {
		return nil, fmt.Errorf("list bookmarks: %w", err)
	}
	return bookmarks, nil
}

// Create validates and stores a new bookmark, returning it with its assigned
// id. New bookmarks are never favorites.
func (s *BookmarkService) Create(ctx context.Context, userID int64, input BookmarkInput) (*model.Bookmark, error) {
	b := &model.Bookmark{
		UserID:    userID,
		Title:     input.Title,
		URL:       input.URL,
		Tags:      input.Tags,
		Note:      input.Note,
		CreatedAt: time.Now().UTC(),
	}
	b.Normalize()

	if err := validateBookmark(b); err != nil {
		return nil, err
	}

	id, err := s.store.CreateBookmark(ctx, b)
	if err != nil {
		return nil, fmt.Errorf("create bookmark: %w", err)
	}
	b.ID = id

	s.metrics.IncBookmarkCreated()
	s.logger.Info("bookmark created", "bookmark_id", id, "user_id", userID)

	return b, nil
}

// Update overwrites the text fields of a bookmark owned by userID. The
// ownership check runs before validation, so a foreign or missing id is
// reported as not found regardless of the payload.
func (s *BookmarkService) Update(ctx context.Context, userID, id int64, input BookmarkInput) error {
	if _, err := s.store.GetBookmark(ctx, userID, id); err != nil {
		if errors.Is(err, store.ErrBookmarkNotFound) {
			return ErrBookmarkNotFound
		}
		return fmt.Errorf("look up bookmark: %w", err)
	}

	b := &model.Bookmark{
		Title: input.Title,
		URL:   input.URL,
		Tags:  input.Tags,
		Note:  input.Note,
	}
	b.Normalize()

	if err := validateBookmark(b); err != nil {
		return err
	}

	if err := s.store.UpdateBookmark(ctx, userID, id, b.Title, b.URL, b.Tags, b.Note); err != nil {
		if errors.Is(err, store.ErrBookmarkNotFound) {
			return ErrBookmarkNotFound
		}
		return fmt.Errorf("update bookmark: %w", err)
	}

	s.metrics.IncBookmarkUpdated()
	s.logger.Info("bookmark updated", "bookmark_id", id, "user_id", userID)

	return nil
}

// Delete removes a bookmark owned by userID. Unknown or foreign ids succeed
// silently; delete never reports not-found.
func (s *BookmarkService) Delete(ctx context.Context, userID, id int64) error {
	if err := s.store.DeleteBookmark(ctx, userID, id); err != nil {
		return fmt.Errorf("delete bookmark: %w", err)
	}

	s.metrics.IncBookmarkDeleted()
	s.logger.Info("bookmark deleted", "bookmark_id", id, "user_id", userID)

	return nil
}

// ToggleFavorite flips the favorite flag of a bookmark owned by userID and
// returns the new state.
func (s *BookmarkService) ToggleFavorite(ctx context.Context, userID, id int64) (bool, error) {
	favorite, err := s.store.ToggleFavorite(ctx, userID, id)
	if err != nil {
		if errors.Is(err, store.ErrBookmarkNotFound) {
			return false, ErrBookmarkNotFound
		}
		return false, fmt.Errorf("toggle favorite: %w", err)
	}

	s.metrics.IncFavoriteToggled()
	s.logger.Info("favorite toggled", "bookmark_id", id, "user_id", userID, "is_favorite", favorite)

	return favorite, nil
}

// validateBookmark enforces the required fields after normalization.
func validateBookmark(b *model.Bookmark) error {
	if b.Title == "" {
		return ErrTitleRequired
	}
	if b.URL == "" {
		return ErrURLRequired
	}
	return nil
}
