package middleware

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/marknest/marknest/internal/auth"
	"github.com/marknest/marknest/internal/session"
)

// SessionConfig holds configuration for the session middleware.
type SessionConfig struct {
	Logger   *slog.Logger
	Sessions session.Store
}

// Session resolves the session cookie to a user id and stores it in the
// request context. Requests without a valid session pass through anonymously;
// gating happens in RequireUser so that endpoints like /api/me can serve
// anonymous callers.
func Session(cfg SessionConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := session.TokenFromRequest(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			userID, err := cfg.Sessions.Get(r.Context(), token)
			if err != nil {
				if !errors.Is(err, session.ErrNotFound) {
					cfg.Logger.Error("session lookup failed",
						slog.String("request_id", GetRequestID(r.Context())),
						slog.String("error", err.Error()),
					)
				}
				// Stale or unreadable session: continue anonymously.
				next.ServeHTTP(w, r)
				return
			}

			ctx := auth.ContextWithUserID(r.Context(), userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireUser rejects anonymous requests with 401 before they reach any
// data access.
func RequireUser() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := auth.UserIDFromContext(r.Context()); !ok {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"not logged in"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
