// Package postgres implements the store interface on top of PostgreSQL
// using a pgx connection pool.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/marknest/marknest/internal/model"
	"github.com/marknest/marknest/internal/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id SERIAL PRIMARY KEY,
	username TEXT UNIQUE NOT NULL,
	hash TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS bookmarks (
	id SERIAL PRIMARY KEY,
	user_id INTEGER NOT NULL REFERENCES users(id),
	title TEXT NOT NULL,
	url TEXT NOT NULL,
	tags TEXT,
	note TEXT,
	is_favorite BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_bookmarks_user_id ON bookmarks(user_id);
`

// uniqueViolation is the PostgreSQL error code for unique constraint violations.
const uniqueViolation = "23505"

// Store is a PostgreSQL-backed store.Store.
type Store struct {
	pool *pgxpool.Pool
}

var _ store.Store = (*Store)(nil)

// New creates a Store with a connection pool and bootstraps the schema.
func New(ctx context.Context, databaseURL string) (*Store, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("bootstrap schema: %w", err)
	}

	return &Store{pool: pool}, nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close closes the connection pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// CreateUser inserts a new user and returns its id.
func (s *Store) CreateUser(ctx context.Context, username, passwordHash string) (int64, error) {
	var id int64
	err := s.pool.QueryRow(ctx,
		`INSERT INTO users (username, hash) VALUES ($1, $2) RETURNING id`,
		username, passwordHash,
	).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, store.ErrUsernameExists
		}
		return 0, fmt.Errorf("create user: %w", err)
	}
	return id, nil
}

// GetUserByUsername retrieves a user by exact username match.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	return s.getUser(ctx, `SELECT id, username, hash FROM users WHERE username = $1`, username)
}

// GetUserByID retrieves a user by id.
func (s *Store) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	return s.getUser(ctx, `SELECT id, username, hash FROM users WHERE id = $1`, id)
}

func (s *Store) getUser(ctx context.Context, query string, arg any) (*model.User, error) {
	var u model.User
	err := s.pool.QueryRow(ctx, query, arg).Scan(&u.ID, &u.Username, &u.PasswordHash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

// ListUsers returns all users ordered by id.
func (s *Store) ListUsers(ctx context.Context) ([]*model.User, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, username, hash FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []*model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Username, &u.PasswordHash); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, &u)
	}
	return users, rows.Err()
}

// CreateBookmark inserts a new bookmark and returns its id.
func (s *Store) CreateBookmark(ctx context.Context, b *model.Bookmark) (int64, error) {
	var id int64
	err := s.pool.QueryRow(ctx,
		`INSERT INTO bookmarks (user_id, title, url, tags, note, is_favorite, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
		b.UserID, b.Title, b.URL, b.Tags, b.Note, b.IsFavorite, b.CreatedAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create bookmark: %w", err)
	}
	return id, nil
}

// GetBookmark retrieves a bookmark owned by userID.
func (s *Store) GetBookmark(ctx context.Context, userID, id int64) (*model.Bookmark, error) {
	var b model.Bookmark
	err := s.pool.QueryRow(ctx,
		`SELECT id, user_id, title, url, tags, note, is_favorite, created_at
		 FROM bookmarks WHERE id = $1 AND user_id = $2`,
		id, userID,
	).Scan(&b.ID, &b.UserID, &b.Title, &b.URL, &b.Tags, &b.Note, &b.IsFavorite, &b.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrBookmarkNotFound
		}
		return nil, fmt.Errorf("get bookmark: %w", err)
	}
	return &b, nil
}

// ListBookmarks returns the user's bookmarks, favorites first, newest first.
// ILIKE provides the case-insensitive substring match.
func (s *Store) ListBookmarks(ctx context.Context, userID int64, query string) ([]*model.Bookmark, error) {
	const baseQuery = `
		SELECT id, user_id, title, url, tags, note, is_favorite, created_at
		FROM bookmarks
		WHERE user_id = $1`
	const order = ` ORDER BY is_favorite DESC, created_at DESC, id DESC`

	var (
		rows pgx.Rows
		err  error
	)
	if query == "" {
		rows, err = s.pool.Query(ctx, baseQuery+order, userID)
	} else {
		pattern := "%" + query + "%"
		rows, err = s.pool.Query(ctx,
			baseQuery+` AND (title ILIKE $2 OR url ILIKE $2 OR tags ILIKE $2 OR note ILIKE $2)`+order,
			userID, pattern,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("list bookmarks: %w", err)
	}
	defer rows.Close()

	bookmarks := make([]*model.Bookmark, 0)
	for rows.Next() {
		var b model.Bookmark
		if err := rows.Scan(&b.ID, &b.UserID, &b.Title, &b.URL, &b.Tags, &b.Note, &b.IsFavorite, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan bookmark: %w", err)
		}
		bookmarks = append(bookmarks, &b)
	}
	return bookmarks, rows.Err()
}

// UpdateBookmark overwrites the text fields of a bookmark owned by userID.
func (s *Store) UpdateBookmark(ctx context.Context, userID, id int64, title, url, tags, note string) error {
	result, err := s.pool.Exec(ctx,
		`UPDATE bookmarks SET title = $1, url = $2, tags = $3, note = $4
		 WHERE id = $5 AND user_id = $6`,
		title, url, tags, note, id, userID,
	)
	if err != nil {
		return fmt.Errorf("update bookmark: %w", err)
	}
	if result.RowsAffected() == 0 {
		return store.ErrBookmarkNotFound
	}
	return nil
}

// DeleteBookmark removes a bookmark owned by userID. Deleting a row that does
// not exist (or belongs to someone else) is not an error.
func (s *Store) DeleteBookmark(ctx context.Context, userID, id int64) error {
	if _, err := s.pool.Exec(ctx,
		`DELETE FROM bookmarks WHERE id = $1 AND user_id = $2`,
		id, userID,
	); err != nil {
		return fmt.Errorf("delete bookmark: %w", err)
	}
	return nil
}

// ToggleFavorite flips the favorite flag and returns the new value.
func (s *Store) ToggleFavorite(ctx context.Context, userID, id int64) (bool, error) {
	var next bool
	err := s.pool.QueryRow(ctx,
		`UPDATE bookmarks SET is_favorite = NOT is_favorite
		 WHERE id = $1 AND user_id = $2 RETURNING is_favorite`,
		id, userID,
	).Scan(&next)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, store.ErrBookmarkNotFound
		}
		return false, fmt.Errorf("toggle favorite: %w", err)
	}
	return next, nil
}

// CountBookmarks returns the number of bookmarks owned by userID.
func (s *Store) CountBookmarks(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM bookmarks WHERE user_id = $1`,
		userID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count bookmarks: %w", err)
	}
	return count, nil
}

// isUniqueViolation checks if the error is a PostgreSQL unique constraint violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
