// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/royfox/little-reviews/internal/aggregate"
	"github.com/royfox/little-reviews/internal/api"
	"github.com/royfox/little-reviews/internal/catalog"
	"github.com/royfox/little-reviews/internal/index"
	"github.com/royfox/little-reviews/internal/mcpserver"
	"github.com/royfox/little-reviews/internal/metrics"
	"github.com/royfox/little-reviews/internal/reviewservice"
	"github.com/royfox/little-reviews/internal/sse"
	"github.com/royfox/little-reviews/internal/storage"
)

const (
	shutdownTimeout = 10 * time.Second
	reloadThrottle  = 2 * time.Second
)

// NewLogger builds the structured logger described by cfg.
func NewLogger(cfg *Config, w io.Writer) *slog.Logger {
	hopts := &slog.HandlerOptions{Level: cfg.App.LogLevel}
	if cfg.App.LogFormat == LogFormatText {
		return slog.New(slog.NewTextHandler(w, hopts))
	}
	return slog.New(slog.NewJSONHandler(w, hopts))
}

// Build aggregates the record store into the artifact under the public
// directory.
func Build(ctx context.Context, cfg *Config, logger *slog.Logger) (aggregate.Report, error) {
	store, err := storage.OpenFS(cfg.Content.RecordsDir)
	if err != nil {
		return aggregate.Report{}, fmt.Errorf("init storage: %w", err)
	}
	if err := os.MkdirAll(cfg.Content.PublicDir, 0o755); err != nil {
		return aggregate.Report{}, fmt.Errorf("create public dir: %w", err)
	}
	return aggregate.New(store, logger).Build(ctx, cfg.Content.ArtifactPath())
}

// ArtifactSource returns where sessions read the artifact from: the
// configured URL when set, the local public directory otherwise.
func ArtifactSource(cfg *Config) catalog.Source {
	if cfg.Content.ArtifactURL != "" {
		return catalog.HTTPSource{URL: cfg.Content.ArtifactURL}
	}
	return catalog.FileSource{Path: cfg.Content.ArtifactPath()}
}

// LoadSession loads the artifact once and returns the resulting session.
func LoadSession(ctx context.Context, src catalog.Source) *catalog.Session {
	s := catalog.NewLoader(src).Load(ctx)
	if s.Status == catalog.Ready {
		metrics.CatalogRecords.Set(float64(s.Collection.Len()))
	}
	return s
}

// ServeMCP exposes the catalogue over MCP on stdio.
func ServeMCP(ctx context.Context, opts ...Option) error {
	app := newApplication(opts)
	if app.config == nil {
		return fmt.Errorf("config is required")
	}
	logger := NewLogger(app.config, app.logOutput)
	slog.SetDefault(logger)

	session := LoadSession(ctx, ArtifactSource(app.config))
	if session.Status != catalog.Ready {
		logger.Warn("catalog unavailable", slog.Any("error", session.Err))
	}
	svc := reviewservice.NewService(reviewservice.NewSessions(session))

	logger.Info("MCP server starting on stdio", slog.String("version", app.version))
	return mcpserver.New(svc, app.version).ServeStdio()
}

// Run serves the catalogue over HTTP until ctx is cancelled or a shutdown
// signal arrives.
func Run(ctx context.Context, opts ...Option) error {
	app := newApplication(opts)
	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	logger := NewLogger(cfg, app.logOutput)
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("records_dir", cfg.Content.RecordsDir),
		slog.String("artifact", cfg.Content.ArtifactPath()),
		slog.String("artifact_url", cfg.Content.ArtifactURL),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.Bool("watch", app.watch),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// A watched store always serves the artifact it just built.
	src := ArtifactSource(cfg)
	if app.watch {
		if cfg.Content.ArtifactURL != "" {
			logger.Warn("artifact_url ignored while watching the record store")
		}
		src = catalog.FileSource{Path: cfg.Content.ArtifactPath()}
		if _, err := Build(ctx, cfg, logger); err != nil {
			return fmt.Errorf("initial build: %w", err)
		}
	}

	sessions := reviewservice.NewSessions(nil)

	db, err := index.Open(cfg.SQLite.Path)
	if err != nil {
		return fmt.Errorf("init index: %w", err)
	}
	defer db.Close()

	broker := sse.NewBroker(reloadThrottle)
	defer broker.Close()

	// reload swaps in a fresh session and brings the search index up to date.
	reload := func(ctx context.Context) {
		s := LoadSession(ctx, src)
		sessions.Set(s)
		if s.Status != catalog.Ready {
			logger.Warn("catalog unavailable", slog.Any("error", s.Err))
			return
		}
		if _, err := index.Sync(db, s.Collection.All(), logger); err != nil {
			logger.Warn("index sync failed", slog.String("error", err.Error()))
		}
	}
	reload(ctx)

	svc := reviewservice.NewService(sessions, reviewservice.WithIndex(db))
	apiRouter := api.NewRouter(svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		status := svc.Status()
		code := http.StatusOK
		if status != catalog.Ready {
			code = http.StatusServiceUnavailable
		}
		w.WriteHeader(code)
		_, _ = fmt.Fprintf(w, `{"status":%q}`, status.String())
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Mount("/api", apiRouter)

	// Built site, including the artifact itself.
	r.Handle("/*", http.FileServer(http.Dir(cfg.Content.PublicDir)))

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	if app.watch {
		store, err := storage.OpenFS(cfg.Content.RecordsDir)
		if err != nil {
			return fmt.Errorf("init storage: %w", err)
		}
		g.Go(func() error {
			return aggregate.Watch(gCtx, store.Root(), logger, func() {
				rep, err := Build(gCtx, cfg, logger)
				if err != nil {
					logger.Error("rebuild failed", slog.String("error", err.Error()))
					return
				}
				reload(gCtx)
				broker.PublishRebuild(sse.Rebuild{
					Included:   rep.Included,
					Skipped:    len(rep.Skipped),
					Collisions: len(rep.Collisions),
					Digest:     rep.Digest,
				})
			})
		})
	}

	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}
