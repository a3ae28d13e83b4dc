package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/marknest/marknest/internal/auth"
	"github.com/marknest/marknest/internal/handler/dto"
	"github.com/marknest/marknest/internal/service"
	"github.com/marknest/marknest/internal/session"
)

// AuthHandler handles registration, login, logout and identity lookup.
type AuthHandler struct {
	identity   *service.IdentityService
	sessionTTL time.Duration
	logger     *slog.Logger
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(identity *service.IdentityService, sessionTTL time.Duration, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		identity:   identity,
		sessionTTL: sessionTTL,
		logger:     logger,
	}
}

// Register handles POST /api/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.CredentialsRequest
	decodeJSON(r, &req)

	if _, err := h.identity.Register(r.Context(), req.Username, req.Password); err != nil {
		switch {
		case errors.Is(err, service.ErrCredentialsRequired):
			writeError(w, http.StatusBadRequest, "username and password required")
		case errors.Is(err, service.ErrUsernameTaken):
			writeError(w, http.StatusBadRequest, "username already taken")
		default:
			h.logger.Error("registration failed", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	writeJSON(w, http.StatusCreated, dto.OKResponse{OK: true})
}

// Login handles POST /api/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.CredentialsRequest
	decodeJSON(r, &req)

	user, token, err := h.identity.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCredentialsRequired):
			writeError(w, http.StatusBadRequest, "username and password required")
		case errors.Is(err, service.ErrInvalidCredentials):
			writeError(w, http.StatusUnauthorized, "invalid credentials")
		default:
			h.logger.Error("login failed", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	session.SetCookie(w, token, int(h.sessionTTL.Seconds()))
	writeJSON(w, http.StatusOK, dto.LoginResponse{OK: true, User: dto.ToUserResponse(user)})
}

// Logout handles POST /api/logout. Idempotent; succeeds with or without an
// active session.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token, _ := session.TokenFromRequest(r)
	if err := h.identity.Logout(r.Context(), token); err != nil {
		h.logger.Error("logout failed", "error", err)
	}

	session.ClearCookie(w)
	writeJSON(w, http.StatusOK, dto.OKResponse{OK: true})
}

// Me handles GET /api/me. Anonymous callers get {"user": null}, not an error.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusOK, dto.MeResponse{User: nil})
		return
	}

	user, err := h.identity.UserByID(r.Context(), userID)
	if err != nil {
		h.logger.Error("identity lookup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if user == nil {
		// Session outlived the account.
		writeJSON(w, http.StatusOK, dto.MeResponse{User: nil})
		return
	}

	resp := dto.ToUserResponse(user)
	writeJSON(w, http.StatusOK, dto.MeResponse{User: &resp})
}
