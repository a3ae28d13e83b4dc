// Package session implements server-side sessions keyed by an opaque cookie
// token. The token carries no information; all state lives on the server.
package session

import (
	"context"
	"errors"
	"net/http"

	"github.com/oklog/ulid/v2"
)

// CookieName is the name of the session cookie.
const CookieName = "session_token"

// ErrNotFound is returned when a token has no active session.
var ErrNotFound = errors.New("session not found")

// Store holds the token -> user id mapping for active sessions.
type Store interface {
	// Create starts a session for userID and returns its opaque token.
	Create(ctx context.Context, userID int64) (string, error)
	// Get resolves a token to a user id. Returns ErrNotFound for unknown
	// or expired tokens.
	Get(ctx context.Context, token string) (int64, error)
	// Delete ends a session. Deleting an unknown token is not an error.
	Delete(ctx context.Context, token string) error

	Ping(ctx context.Context) error
	Close() error
}

// NewToken generates a fresh opaque session token.
func NewToken() string {
	return ulid.Make().String()
}

// TokenFromRequest extracts the session token from the request cookie.
func TokenFromRequest(r *http.Request) (string, bool) {
	c, err := r.Cookie(CookieName)
	if err != nil || c.Value == "" {
		return "", false
	}
	return c.Value, true
}

// SetCookie attaches the session cookie to the response.
func SetCookie(w http.ResponseWriter, token string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
	})
}

// ClearCookie expires the session cookie on the client.
func ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}
