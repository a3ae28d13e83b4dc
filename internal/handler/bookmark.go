package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/marknest/marknest/internal/auth"
	"github.com/marknest/marknest/internal/handler/dto"
	"github.com/marknest/marknest/internal/service"
)

// BookmarkHandler handles HTTP requests for bookmark operations. All routes
// are behind the RequireUser middleware.
type BookmarkHandler struct {
	svc    *service.BookmarkService
	logger *slog.Logger
}

// NewBookmarkHandler creates a BookmarkHandler.
func NewBookmarkHandler(svc *service.BookmarkService, logger *slog.Logger) *BookmarkHandler {
	return &BookmarkHandler{
		svc:    svc,
		logger: logger,
	}
}

// List handles GET /api/bookmarks?query=.
func (h *BookmarkHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "not logged in")
		return
	}

	bookmarks, err := h.svc.List(r.Context(), userID, r.URL.Query().Get("query"))
	if err != nil {
		h.logger.Error("list bookmarks failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, dto.ToBookmarkListResponse(bookmarks))
}

// Create handles POST /api/bookmarks.
func (h *BookmarkHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "not logged in")
		return
	}

	var req dto.BookmarkRequest
	decodeJSON(r, &req)

	_, err := h.svc.Create(r.Context(), userID, service.BookmarkInput{
		Title: req.Title,
		URL:   req.URL,
		Tags:  req.Tags,
		Note:  req.Note,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTitleRequired):
			writeError(w, http.StatusBadRequest, "title required")
		case errors.Is(err, service.ErrURLRequired):
			writeError(w, http.StatusBadRequest, "url required")
		default:
			h.logger.Error("create bookmark failed", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	writeJSON(w, http.StatusCreated, dto.OKResponse{OK: true})
}

// Update handles PUT /api/bookmarks/{id}.
func (h *BookmarkHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "not logged in")
		return
	}

	id, ok := bookmarkID(r)
	if !ok {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	var req dto.BookmarkRequest
	decodeJSON(r, &req)

	err := h.svc.Update(r.Context(), userID, id, service.BookmarkInput{
		Title: req.Title,
		URL:   req.URL,
		Tags:  req.Tags,
		Note:  req.Note,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBookmarkNotFound):
			writeError(w, http.StatusNotFound, "not found")
		case errors.Is(err, service.ErrTitleRequired), errors.Is(err, service.ErrURLRequired):
			writeError(w, http.StatusBadRequest, "title and url required")
		default:
			h.logger.Error("update bookmark failed", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	writeJSON(w, http.StatusOK, dto.OKResponse{OK: true})
}

// Delete handles DELETE /api/bookmarks/{id}. Always succeeds for ids that do
// not exist or belong to someone else.
func (h *BookmarkHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "not logged in")
		return
	}

	id, ok := bookmarkID(r)
	if !ok {
		// Non-numeric ids cannot match any bookmark; still a successful no-op.
		writeJSON(w, http.StatusOK, dto.OKResponse{OK: true})
		return
	}

	if err := h.svc.Delete(r.Context(), userID, id); err != nil {
		h.logger.Error("delete bookmark failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, dto.OKResponse{OK: true})
}

// ToggleFavorite handles PATCH /api/bookmarks/{id}/favorite.
func (h *BookmarkHandler) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "not logged in")
		return
	}

	id, ok := bookmarkID(r)
	if !ok {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	favorite, err := h.svc.ToggleFavorite(r.Context(), userID, id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBookmarkNotFound):
			writeError(w, http.StatusNotFound, "not found")
		default:
			h.logger.Error("toggle favorite failed", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	writeJSON(w, http.StatusOK, dto.ToggleFavoriteResponse{OK: true, IsFavorite: favorite})
}

// bookmarkID parses the {id} route parameter.
func bookmarkID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
