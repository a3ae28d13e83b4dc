package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/marknest/marknest/internal/model"
	"github.com/marknest/marknest/internal/store"
)

// SampleBookmark describes one entry of the starter set.
type SampleBookmark struct {
	Title string
	URL   string
	Tags  string
	Note  string
}

// SampleBookmarks is the fixed starter set inserted for every new account.
var SampleBookmarks = []SampleBookmark{
	{
		Title: "GitHub",
		URL:   "https://github.com",
		Tags:  "code,development,version-control",
		Note:  "Version control and collaboration platform",
	},
	{
		Title: "Stack Overflow",
		URL:   "https://stackoverflow.com",
		Tags:  "help,learning,code,debugging",
		Note:  "Q&A community for programmers",
	},
	{
		Title: "MDN Web Docs",
		URL:   "https://developer.mozilla.org",
		Tags:  "learning,web,documentation,javascript",
		Note:  "Mozilla's comprehensive web development docs",
	},
	{
		Title: "CSS-Tricks",
		URL:   "https://css-tricks.com",
		Tags:  "css,web-design,learning",
		Note:  "Articles and learning resources about CSS",
	},
	{
		Title: "Dev.to",
		URL:   "https://dev.to",
		Tags:  "blogs,development,community",
		Note:  "Community of developers sharing articles",
	},
	{
		Title: "Tailwind CSS",
		URL:   "https://tailwindcss.com",
		Tags:  "css,framework,utility",
		Note:  "Utility-first CSS framework for rapid UI",
	},
	{
		Title: "React Documentation",
		URL:   "https://react.dev",
		Tags:  "javascript,frontend,framework",
		Note:  "Official React docs and tutorials",
	},
	{
		Title: "Python.org",
		URL:   "https://python.org",
		Tags:  "python,programming,documentation",
		Note:  "Official Python programming language site",
	},
	{
		Title: "Flask Documentation",
		URL:   "https://flask.palletsprojects.com",
		Tags:  "python,backend,framework",
		Note:  "Flask web framework for Python",
	},
	{
		Title: "YouTube",
		URL:   "https://youtube.com",
		Tags:  "video,learning,entertainment",
		Note:  "Video sharing platform",
	},
}

// Seeder populates accounts with the starter bookmark set.
type Seeder struct {
	store  store.Store
	logger *slog.Logger
}

// NewSeeder creates a Seeder.
func NewSeeder(st store.Store, logger *slog.Logger) *Seeder {
	return &Seeder{store: st, logger: logger}
}

// SeedUser inserts the starter set for userID. A returned error means the set
// is incomplete; the registration flow decides whether that matters.
func (s *Seeder) SeedUser(ctx context.Context, userID int64) error {
	now := time.Now().UTC()
	for _, sample := range SampleBookmarks {
		b := &model.Bookmark{
			UserID:    userID,
			Title:     sample.Title,
			URL:       sample.URL,
			Tags:      sample.Tags,
			Note:      sample.Note,
			CreatedAt: now,
		}
		if _, err := s.store.CreateBookmark(ctx, b); err != nil {
			return fmt.Errorf("seed bookmark %q: %w", sample.Title, err)
		}
	}
	return nil
}

// SeedMissing inserts the starter set for every existing user that has no
// bookmarks yet. Returns the number of users seeded. Intended for the
// maintenance CLI, not the request path.
func (s *Seeder) SeedMissing(ctx context.Context) (int, error) {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return 0, fmt.Errorf("list users: %w", err)
	}

	seeded := 0
	for _, u := range users {
		count, err := s.store.CountBookmarks(ctx, u.ID)
		if err != nil {
			return seeded, fmt.Errorf("count bookmarks for user %d: %w", u.ID, err)
		}
		if count > 0 {
			continue
		}

		if err := s.SeedUser(ctx, u.ID); err != nil {
			return seeded, err
		}
		s.logger.Info("seeded sample bookmarks",
			"user_id", u.ID,
			"username", u.Username,
			"count", len(SampleBookmarks),
		)
		seeded++
	}
	return seeded, nil
}
