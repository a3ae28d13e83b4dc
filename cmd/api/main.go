// Package main is the entrypoint for the Marknest API server.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/marknest/marknest/internal/config"
	"github.com/marknest/marknest/internal/handler"
	"github.com/marknest/marknest/internal/metrics"
	"github.com/marknest/marknest/internal/middleware"
	"github.com/marknest/marknest/internal/server"
	"github.com/marknest/marknest/internal/service"
	"github.com/marknest/marknest/internal/session"
	"github.com/marknest/marknest/internal/store"
	"github.com/marknest/marknest/internal/store/postgres"
	"github.com/marknest/marknest/internal/store/sqlite"
)

func main() {
	ctx := context.Background()

	// Load .env if present; real environment takes precedence.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)

	// Initialize the bookmark store
	st, err := openStore(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to open store",
			slog.String("error", err.Error()),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	logger.Info("store ready", "database_url", redactURL(cfg.DatabaseURL))

	// Initialize the session backend
	sessions, err := openSessions(ctx, cfg)
	if err != nil {
		logger.Error("failed to connect to Redis",
			slog.String("error", err.Error()),
			slog.String("redis_url", redactURL(cfg.RedisURL)),
		)
		os.Exit(1)
	}

	// Initialize services
	recorder := metrics.NewInMemory()
	seeder := service.NewSeeder(st, logger)
	identity := service.NewIdentityService(st, sessions, seeder, recorder, logger)
	bookmarks := service.NewBookmarkService(st, recorder, logger)

	// Initialize handlers
	h := handler.New()
	healthHandler := handler.NewHealthHandler(st, sessions)
	authHandler := handler.NewAuthHandler(identity, cfg.SessionTTL, logger)
	bookmarkHandler := handler.NewBookmarkHandler(bookmarks, logger)

	r := setupRouter(h, healthHandler, authHandler, bookmarkHandler, sessions, cfg, logger)

	srv := server.New(r, server.Options{
		Port:            cfg.AppPort,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, logger)

	srv.OnShutdown("store", func(ctx context.Context) error {
		return st.Close()
	})
	srv.OnShutdown("sessions", func(ctx context.Context) error {
		return sessions.Close()
	})

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
	)

	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// openStore selects a store implementation by DATABASE_URL scheme.
// "sqlite:///bookmarks.db" opens a local SQLite file; "postgres://..."
// connects through pgx. A bare path is treated as a SQLite file.
func openStore(ctx context.Context, databaseURL string) (store.Store, error) {
	switch {
	case strings.HasPrefix(databaseURL, "postgres://"), strings.HasPrefix(databaseURL, "postgresql://"):
		return postgres.New(ctx, databaseURL)
	case strings.HasPrefix(databaseURL, "sqlite:///"):
		return sqlite.New(strings.TrimPrefix(databaseURL, "sqlite:///"))
	case strings.HasPrefix(databaseURL, "sqlite://"):
		return sqlite.New(strings.TrimPrefix(databaseURL, "sqlite://"))
	case strings.Contains(databaseURL, "://"):
		return nil, fmt.Errorf("unsupported database URL scheme: %s", redactURL(databaseURL))
	default:
		return sqlite.New(databaseURL)
	}
}

// openSessions returns a Redis-backed session store when REDIS_URL is set
// and an in-memory one otherwise.
func openSessions(ctx context.Context, cfg *config.Config) (session.Store, error) {
	if cfg.RedisURL == "" {
		return session.NewMemory(cfg.SessionTTL), nil
	}
	return session.NewRedis(ctx, cfg.RedisURL, cfg.SessionTTL)
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(
	h *handler.Handler,
	healthHandler *handler.HealthHandler,
	authHandler *handler.AuthHandler,
	bookmarkHandler *handler.BookmarkHandler,
	sessions session.Store,
	cfg *config.Config,
	logger *slog.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.Security(middleware.SecurityConfig{
		IsDevelopment: cfg.IsDevelopment(),
	}))
	r.Use(middleware.MaxBodySize(cfg.MaxRequestBodySize))

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.GetCORSAllowedOrigins()
	r.Use(middleware.CORS(corsCfg))

	// Health endpoints
	r.Get("/healthz", healthHandler.Healthz)
	r.Get("/readyz", healthHandler.Readyz)

	// Root info endpoint
	r.Get("/", h.Hello)

	sessionCfg := middleware.SessionConfig{
		Logger:   logger,
		Sessions: sessions,
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Session(sessionCfg))

		// Auth endpoints; /me serves anonymous callers too.
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.Post("/logout", authHandler.Logout)
		r.Get("/me", authHandler.Me)

		// Bookmark management (requires a logged-in user)
		r.Route("/bookmarks", func(r chi.Router) {
			r.Use(middleware.RequireUser())

			r.Get("/", bookmarkHandler.List)
			r.Post("/", bookmarkHandler.Create)
			r.Put("/{id}", bookmarkHandler.Update)
			r.Delete("/{id}", bookmarkHandler.Delete)
			r.Patch("/{id}/favorite", bookmarkHandler.ToggleFavorite)
		})
	})

	// 404 and 405 handlers
	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)

	return r
}

// redactURL strips credentials from a connection URL for logging.
func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}
