// Package sqlite implements the store interface on top of a local SQLite
// database. It is the default backend for development and tests.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"

	"github.com/marknest/marknest/internal/model"
	"github.com/marknest/marknest/internal/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	username TEXT UNIQUE NOT NULL,
	hash TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS bookmarks (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id INTEGER NOT NULL,
	title TEXT NOT NULL,
	url TEXT NOT NULL,
	tags TEXT,
	note TEXT,
	is_favorite INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY(user_id) REFERENCES users(id)
);

CREATE INDEX IF NOT EXISTS idx_bookmarks_user_id ON bookmarks(user_id);
`

// Store is a SQLite-backed store.Store.
type Store struct {
	db *sql.DB
}

var _ store.Store = (*Store)(nil)

// New opens (and if necessary creates) the SQLite database at path and
// bootstraps the schema. Use ":memory:" for an ephemeral database.
func New(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	// SQLite allows a single writer; one pooled connection avoids
	// SQLITE_BUSY and keeps :memory: databases coherent across calls.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("bootstrap schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// CreateUser inserts a new user and returns its id.
func (s *Store) CreateUser(ctx context.Context, username, passwordHash string) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO users (username, hash) VALUES (?, ?)`,
		username, passwordHash,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, store.ErrUsernameExists
		}
		return 0, fmt.Errorf("create user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("read new user id: %w", err)
	}
	return id, nil
}

// GetUserByUsername retrieves a user by exact username match.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, username, hash FROM users WHERE username = ?`,
		username,
	)
	return scanUser(row)
}

// GetUserByID retrieves a user by id.
func (s *Store) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, username, hash FROM users WHERE id = ?`,
		id,
	)
	return scanUser(row)
}

// ListUsers returns all users ordered by id.
func (s *Store) ListUsers(ctx context.Context) ([]*model.User, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, username, hash FROM users ORDER BY id`)
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
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO bookmarks (user_id, title, url, tags, note, is_favorite, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		b.UserID, b.Title, b.URL, b.Tags, b.Note, boolToInt(b.IsFavorite), b.CreatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("create bookmark: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("read new bookmark id: %w", err)
	}
	return id, nil
}

// GetBookmark retrieves a bookmark owned by userID.
func (s *Store) GetBookmark(ctx context.Context, userID, id int64) (*model.Bookmark, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, title, url, tags, note, is_favorite, created_at
		 FROM bookmarks WHERE id = ? AND user_id = ?`,
		id, userID,
	)

	b, err := scanBookmark(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrBookmarkNotFound
		}
		return nil, fmt.Errorf("get bookmark: %w", err)
	}
	return b, nil
}

// ListBookmarks returns the user's bookmarks, favorites first, newest first.
// SQLite's default LIKE is case-insensitive for ASCII, which gives the search
// its case-insensitive matching.
func (s *Store) ListBookmarks(ctx context.Context, userID int64, query string) ([]*model.Bookmark, error) {
	const baseQuery = `
		SELECT id, user_id, title, url, tags, note, is_favorite, created_at
		FROM bookmarks
		WHERE user_id = ?`
	const order = ` ORDER BY is_favorite DESC, created_at DESC, id DESC`

	var (
		rows *sql.Rows
		err  error
	)
	if query == "" {
		rows, err = s.db.QueryContext(ctx, baseQuery+order, userID)
	} else {
		pattern := "%" + query + "%"
		rows, err = s.db.QueryContext(ctx,
			baseQuery+` AND (title LIKE ? OR url LIKE ? OR tags LIKE ? OR note LIKE ?)`+order,
			userID, pattern, pattern, pattern, pattern,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("list bookmarks: %w", err)
	}
	defer rows.Close()

	bookmarks := make([]*model.Bookmark, 0)
	for rows.Next() {
		b, err := scanBookmark(rows)
		if err != nil {
			return nil, fmt.Errorf("scan bookmark: %w", err)
		}
		bookmarks = append(bookmarks, b)
	}
	return bookmarks, rows.Err()
}

// UpdateBookmark overwrites the text fields of a bookmark owned by userID.
// The favorite flag and creation time are untouched.
func (s *Store) UpdateBookmark(ctx context.Context, userID, id int64, title, url, tags, note string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE bookmarks SET title = ?, url = ?, tags = ?, note = ?
		 WHERE id = ? AND user_id = ?`,
		title, url, tags, note, id, userID,
	)
	if err != nil {
		return fmt.Errorf("update bookmark: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update bookmark: %w", err)
	}
	if affected == 0 {
		return store.ErrBookmarkNotFound
	}
	return nil
}

// DeleteBookmark removes a bookmark owned by userID. Deleting a row that does
// not exist (or belongs to someone else) is not an error.
func (s *Store) DeleteBookmark(ctx context.Context, userID, id int64) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM bookmarks WHERE id = ? AND user_id = ?`,
		id, userID,
	); err != nil {
		return fmt.Errorf("delete bookmark: %w", err)
	}
	return nil
}

// ToggleFavorite flips the favorite flag and returns the new value.
func (s *Store) ToggleFavorite(ctx context.Context, userID, id int64) (bool, error) {
	var current int64
	err := s.db.QueryRowContext(ctx,
		`SELECT is_favorite FROM bookmarks WHERE id = ? AND user_id = ?`,
		id, userID,
	).Scan(&current)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, store.ErrBookmarkNotFound
		}
		return false, fmt.Errorf("toggle favorite: %w", err)
	}

	next := int64(1)
	if current == 1 {
		next = 0
	}

	if _, err := s.db.ExecContext(ctx,
		`UPDATE bookmarks SET is_favorite = ? WHERE id = ? AND user_id = ?`,
		next, id, userID,
	); err != nil {
		return false, fmt.Errorf("toggle favorite: %w", err)
	}

	return next == 1, nil
}

// CountBookmarks returns the number of bookmarks owned by userID.
func (s *Store) CountBookmarks(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM bookmarks WHERE user_id = ?`,
		userID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count bookmarks: %w", err)
	}
	return count, nil
}

// scanner abstracts *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanUser(row scanner) (*model.User, error) {
	var u model.User
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrUserNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &u, nil
}

func scanBookmark(row scanner) (*model.Bookmark, error) {
	var (
		b   model.Bookmark
		fav int64
	)
	if err := row.Scan(&b.ID, &b.UserID, &b.Title, &b.URL, &b.Tags, &b.Note, &fav, &b.CreatedAt); err != nil {
		return nil, err
	}
	b.IsFavorite = fav == 1
	return &b, nil
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

// isUniqueViolation checks if the error is a SQLite unique constraint violation.
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}
