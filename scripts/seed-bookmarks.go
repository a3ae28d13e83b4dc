// Command seed-bookmarks backfills the sample bookmarks for users that
// registered before seeding existed or whose seeding failed.
//
// Usage:
//
//	go run ./scripts/seed-bookmarks.go -database-url sqlite:///bookmarks.db
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/marknest/marknest/internal/service"
	"github.com/marknest/marknest/internal/store"
	"github.com/marknest/marknest/internal/store/postgres"
	"github.com/marknest/marknest/internal/store/sqlite"
)

func main() {
	_ = godotenv.Load()

	defaultURL := os.Getenv("DATABASE_URL")
	if defaultURL == "" {
		defaultURL = "sqlite:///bookmarks.db"
	}

	databaseURL := flag.String("database-url", defaultURL, "Database connection URL (sqlite:/// or postgres://)")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	st, err := openStore(ctx, *databaseURL)
	if err != nil {
		fmt.Fprintln(os.Stderr, "open store:", err)
		os.Exit(1)
	}
	defer st.Close()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	seeder := service.NewSeeder(st, logger)

	seeded, err := seeder.SeedMissing(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "seed bookmarks:", err)
		os.Exit(1)
	}

	fmt.Printf("seeded %d user(s)\n", seeded)
}

func openStore(ctx context.Context, databaseURL string) (store.Store, error) {
	switch {
	case strings.HasPrefix(databaseURL, "postgres://"), strings.HasPrefix(databaseURL, "postgresql://"):
		return postgres.New(ctx, databaseURL)
	case strings.HasPrefix(databaseURL, "sqlite:///"):
		return sqlite.New(strings.TrimPrefix(databaseURL, "sqlite:///"))
	case strings.HasPrefix(databaseURL, "sqlite://"):
		return sqlite.New(strings.TrimPrefix(databaseURL, "sqlite://"))
	default:
		return sqlite.New(databaseURL)
	}
}
