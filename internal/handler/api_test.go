package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/marknest/marknest/internal/handler"
	"github.com/marknest/marknest/internal/middleware"
	"github.com/marknest/marknest/internal/service"
	"github.com/marknest/marknest/internal/session"
	"github.com/marknest/marknest/internal/testutil"
)

// newTestServer spins up the API routes against an in-memory store and
// in-memory sessions.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	st := testutil.NewStore(t)
	sessions := session.NewMemory(time.Hour)
	t.Cleanup(func() { sessions.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	seeder := service.NewSeeder(st, logger)
	identity := service.NewIdentityService(st, sessions, seeder, nil, logger)
	bookmarks := service.NewBookmarkService(st, nil, logger)

	h := handler.New()
	authHandler := handler.NewAuthHandler(identity, time.Hour, logger)
	bookmarkHandler := handler.NewBookmarkHandler(bookmarks, logger)

	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Session(middleware.SessionConfig{Logger: logger, Sessions: sessions}))

		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.Post("/logout", authHandler.Logout)
		r.Get("/me", authHandler.Me)

		r.Route("/bookmarks", func(r chi.Router) {
			r.Use(middleware.RequireUser())

			r.Get("/", bookmarkHandler.List)
			r.Post("/", bookmarkHandler.Create)
			r.Put("/{id}", bookmarkHandler.Update)
			r.Delete("/{id}", bookmarkHandler.Delete)
			r.Patch("/{id}/favorite", bookmarkHandler.ToggleFavorite)
		})
	})
	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

// newClient returns an HTTP client that carries cookies between requests.
func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("create cookie jar: %v", err)
	}
	return &http.Client{Jar: jar}
}

// doJSON sends a request with an optional JSON body and decodes the JSON
// response into a generic map.
func doJSON(t *testing.T, client *http.Client, method, url string, body any) (int, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()

	var decoded map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp.StatusCode, decoded
}

// registerAndLogin creates an account and logs the client in.
func registerAndLogin(t *testing.T, client *http.Client, baseURL, username, password string) {
	t.Helper()

	creds := map[string]string{"username": username, "password": password}
	if status, body := doJSON(t, client, http.MethodPost, baseURL+"/api/register", creds); status != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d (%v)", status, body)
	}
	if status, body := doJSON(t, client, http.MethodPost, baseURL+"/api/login", creds); status != http.StatusOK {
		t.Fatalf("login: expected 200, got %d (%v)", status, body)
	}
}

func TestRegisterEndpoint(t *testing.T) {
	srv := newTestServer(t)
	client := newClient(t)

	status, body := doJSON(t, client, http.MethodPost, srv.URL+"/api/register",
		map[string]string{"username": "alice", "password": "s3cret"})
	if status != http.StatusCreated {
		t.Fatalf("expected 201, got %d (%v)", status, body)
	}
	if body["ok"] != true {
		t.Fatalf("expected ok response, got %v", body)
	}

	// Same username again.
	status, body = doJSON(t, client, http.MethodPost, srv.URL+"/api/register",
		map[string]string{"username": "alice", "password": "other"})
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400 for duplicate, got %d", status)
	}
	if body["error"] != "username already taken" {
		t.Fatalf("unexpected error message: %v", body["error"])
	}

	// Missing fields.
	status, body = doJSON(t, client, http.MethodPost, srv.URL+"/api/register",
		map[string]string{"username": "bob"})
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing password, got %d", status)
	}
	if body["error"] != "username and password required" {
		t.Fatalf("unexpected error message: %v", body["error"])
	}
}

func TestLoginEndpoint(t *testing.T) {
	srv := newTestServer(t)
	client := newClient(t)

	doJSON(t, client, http.MethodPost, srv.URL+"/api/register",
		map[string]string{"username": "alice", "password": "s3cret"})

	status, body := doJSON(t, client, http.MethodPost, srv.URL+"/api/login",
		map[string]string{"username": "alice", "password": "s3cret"})
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d (%v)", status, body)
	}
	user, ok := body["user"].(map[string]any)
	if !ok || user["username"] != "alice" {
		t.Fatalf("expected user in login response, got %v", body)
	}

	status, body = doJSON(t, client, http.MethodPost, srv.URL+"/api/login",
		map[string]string{"username": "alice", "password": "wrong"})
	if status != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", status)
	}
	if body["error"] != "invalid credentials" {
		t.Fatalf("unexpected error message: %v", body["error"])
	}

	// Unknown username gets the same response as a wrong password.
	status, body = doJSON(t, client, http.MethodPost, srv.URL+"/api/login",
		map[string]string{"username": "nobody", "password": "s3cret"})
	if status != http.StatusUnauthorized || body["error"] != "invalid credentials" {
		t.Fatalf("expected uniform 401, got %d (%v)", status, body)
	}
}

func TestMeEndpoint(t *testing.T) {
	srv := newTestServer(t)
	client := newClient(t)

	// Anonymous.
	status, body := doJSON(t, client, http.MethodGet, srv.URL+"/api/me", nil)
	if status != http.StatusOK {
		t.Fatalf("expected 200 for anonymous /me, got %d", status)
	}
	if body["user"] != nil {
		t.Fatalf("expected null user, got %v", body["user"])
	}

	registerAndLogin(t, client, srv.URL, "alice", "s3cret")

	status, body = doJSON(t, client, http.MethodGet, srv.URL+"/api/me", nil)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	user, ok := body["user"].(map[string]any)
	if !ok || user["username"] != "alice" {
		t.Fatalf("expected logged-in user, got %v", body)
	}

	// Logout drops the identity again.
	if status, _ := doJSON(t, client, http.MethodPost, srv.URL+"/api/logout", nil); status != http.StatusOK {
		t.Fatalf("expected 200 for logout, got %d", status)
	}
	status, body = doJSON(t, client, http.MethodGet, srv.URL+"/api/me", nil)
	if status != http.StatusOK || body["user"] != nil {
		t.Fatalf("expected anonymous after logout, got %d (%v)", status, body)
	}
}

func TestLogoutWithoutSession(t *testing.T) {
	srv := newTestServer(t)
	client := newClient(t)

	status, body := doJSON(t, client, http.MethodPost, srv.URL+"/api/logout", nil)
	if status != http.StatusOK || body["ok"] != true {
		t.Fatalf("logout without a session must succeed, got %d (%v)", status, body)
	}
}

func TestBookmarksRequireLogin(t *testing.T) {
	srv := newTestServer(t)
	client := newClient(t)

	requests := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/bookmarks/"},
		{http.MethodPost, "/api/bookmarks/"},
		{http.MethodPut, "/api/bookmarks/1"},
		{http.MethodDelete, "/api/bookmarks/1"},
		{http.MethodPatch, "/api/bookmarks/1/favorite"},
	}

	for _, req := range requests {
		t.Run(req.method+"_"+req.path, func(t *testing.T) {
			status, body := doJSON(t, client, req.method, srv.URL+req.path, nil)
			if status != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", status)
			}
			if body["error"] != "not logged in" {
				t.Fatalf("unexpected error message: %v", body["error"])
			}
		})
	}
}

func TestRegistrationSeedsBookmarks(t *testing.T) {
	srv := newTestServer(t)
	client := newClient(t)

	registerAndLogin(t, client, srv.URL, "alice", "s3cret")

	status, body := doJSON(t, client, http.MethodGet, srv.URL+"/api/bookmarks/", nil)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	bookmarks, ok := body["bookmarks"].([]any)
	if !ok {
		t.Fatalf("expected bookmarks array, got %v", body)
	}
	if len(bookmarks) != len(service.SampleBookmarks) {
		t.Fatalf("expected %d seeded bookmarks, got %d", len(service.SampleBookmarks), len(bookmarks))
	}
}

func TestBookmarkCRUDOverHTTP(t *testing.T) {
	srv := newTestServer(t)
	client := newClient(t)

	registerAndLogin(t, client, srv.URL, "alice", "s3cret")

	// Create.
	status, body := doJSON(t, client, http.MethodPost, srv.URL+"/api/bookmarks/",
		map[string]string{"title": "Example", "url": "https://example.com", "tags": "test", "note": "a note"})
	if status != http.StatusCreated || body["ok"] != true {
		t.Fatalf("expected 201, got %d (%v)", status, body)
	}

	// Find the new bookmark via search.
	status, body = doJSON(t, client, http.MethodGet, srv.URL+"/api/bookmarks/?query=Example", nil)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	bookmarks := body["bookmarks"].([]any)
	if len(bookmarks) != 1 {
		t.Fatalf("expected 1 search result, got %d", len(bookmarks))
	}
	created := bookmarks[0].(map[string]any)
	id := int64(created["id"].(float64))

	// Update.
	status, body = doJSON(t, client, http.MethodPut, fmt.Sprintf("%s/api/bookmarks/%d", srv.URL, id),
		map[string]string{"title": "Renamed", "url": "https://example.com"})
	if status != http.StatusOK || body["ok"] != true {
		t.Fatalf("update: expected 200, got %d (%v)", status, body)
	}

	// Toggle favorite.
	status, body = doJSON(t, client, http.MethodPatch, fmt.Sprintf("%s/api/bookmarks/%d/favorite", srv.URL, id), nil)
	if status != http.StatusOK {
		t.Fatalf("toggle: expected 200, got %d", status)
	}
	if body["is_favorite"] != true {
		t.Fatalf("expected is_favorite true, got %v", body)
	}

	// The favorite sorts first now.
	status, body = doJSON(t, client, http.MethodGet, srv.URL+"/api/bookmarks/", nil)
	if status != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", status)
	}
	first := body["bookmarks"].([]any)[0].(map[string]any)
	if first["title"] != "Renamed" || first["is_favorite"] != true {
		t.Fatalf("expected the favorite first, got %v", first)
	}

	// Delete.
	status, body = doJSON(t, client, http.MethodDelete, fmt.Sprintf("%s/api/bookmarks/%d", srv.URL, id), nil)
	if status != http.StatusOK || body["ok"] != true {
		t.Fatalf("delete: expected 200, got %d (%v)", status, body)
	}
	status, body = doJSON(t, client, http.MethodGet, srv.URL+"/api/bookmarks/?query=Renamed", nil)
	if status != http.StatusOK || len(body["bookmarks"].([]any)) != 0 {
		t.Fatalf("expected the bookmark to be gone, got %v", body)
	}
}

func TestBookmarkValidationOverHTTP(t *testing.T) {
	srv := newTestServer(t)
	client := newClient(t)

	registerAndLogin(t, client, srv.URL, "alice", "s3cret")

	status, body := doJSON(t, client, http.MethodPost, srv.URL+"/api/bookmarks/",
		map[string]string{"url": "https://example.com"})
	if status != http.StatusBadRequest || body["error"] != "title required" {
		t.Fatalf("expected 400 title required, got %d (%v)", status, body)
	}

	status, body = doJSON(t, client, http.MethodPost, srv.URL+"/api/bookmarks/",
		map[string]string{"title": "No URL"})
	if status != http.StatusBadRequest || body["error"] != "url required" {
		t.Fatalf("expected 400 url required, got %d (%v)", status, body)
	}

	// An empty body behaves like missing fields, not like a parse error.
	status, body = doJSON(t, client, http.MethodPost, srv.URL+"/api/bookmarks/", nil)
	if status != http.StatusBadRequest || body["error"] != "title required" {
		t.Fatalf("expected 400 for empty body, got %d (%v)", status, body)
	}
}

func TestBookmarkUnknownIDs(t *testing.T) {
	srv := newTestServer(t)
	client := newClient(t)

	registerAndLogin(t, client, srv.URL, "alice", "s3cret")

	status, body := doJSON(t, client, http.MethodPut, srv.URL+"/api/bookmarks/99999",
		map[string]string{"title": "T", "url": "https://example.com"})
	if status != http.StatusNotFound || body["error"] != "not found" {
		t.Fatalf("update: expected 404, got %d (%v)", status, body)
	}

	status, body = doJSON(t, client, http.MethodPatch, srv.URL+"/api/bookmarks/99999/favorite", nil)
	if status != http.StatusNotFound || body["error"] != "not found" {
		t.Fatalf("toggle: expected 404, got %d (%v)", status, body)
	}

	// Delete never reports not-found.
	status, body = doJSON(t, client, http.MethodDelete, srv.URL+"/api/bookmarks/99999", nil)
	if status != http.StatusOK || body["ok"] != true {
		t.Fatalf("delete: expected 200, got %d (%v)", status, body)
	}
}

func TestBookmarksAreScopedToTheSession(t *testing.T) {
	srv := newTestServer(t)

	alice := newClient(t)
	registerAndLogin(t, alice, srv.URL, "alice", "s3cret")
	doJSON(t, alice, http.MethodPost, srv.URL+"/api/bookmarks/",
		map[string]string{"title": "Private", "url": "https://example.com"})

	bob := newClient(t)
	registerAndLogin(t, bob, srv.URL, "bob", "hunter2")

	status, body := doJSON(t, bob, http.MethodGet, srv.URL+"/api/bookmarks/?query=Private", nil)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if got := len(body["bookmarks"].([]any)); got != 0 {
		t.Fatalf("bob must not see alice's bookmarks, got %d", got)
	}
}
