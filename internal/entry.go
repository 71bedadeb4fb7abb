// Package internal provides application assembly and the watch-mode runtime.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/starford/raido/internal/engine"
	"github.com/starford/raido/internal/normalize"
	"github.com/starford/raido/internal/storage"
	"github.com/starford/raido/internal/watch"
	"github.com/starford/raido/internal/web"
)

// debounce is the quiet period the watcher waits for before re-running.
const debounce = 500 * time.Millisecond

// NewLogger builds the structured JSON logger used across commands.
func NewLogger(cfg *Config) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
}

// NewEngine assembles the normalization engine from configuration.
func NewEngine(cfg *Config, logger *slog.Logger) (*engine.Engine, error) {
	store, err := storage.NewFS(cfg.Content.Root)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}
	norm := normalize.New(cfg.Frontmatter.DefaultCategory, nil)
	return engine.New(store, norm,
		cfg.Ledger.Path,
		cfg.Frontmatter.Marker,
		cfg.Frontmatter.SynthesizeMissing,
		logger), nil
}

// Run starts watch mode: an initial normalization pass, then fsnotify-driven
// re-runs, plus the status HTTP server. It blocks until ctx is cancelled or
// a shutdown signal arrives.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}
	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}
	cfg := app.config

	logger := app.logger
	if logger == nil {
		logger = NewLogger(cfg)
	}
	slog.SetDefault(logger)

	logger.Info("configuration loaded",
		slog.String("content_root", cfg.Content.Root),
		slog.String("ledger_path", cfg.Ledger.Path),
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("log_level", cfg.App.LogLevel.String()))

	eng, err := NewEngine(cfg, logger)
	if err != nil {
		return err
	}

	holder := &web.ReportHolder{}
	runOnce := func() {
		report, runErr := eng.Run()
		if runErr != nil {
			logger.Error("normalization run failed", slog.String("error", runErr.Error()))
			return
		}
		holder.Set(report)
	}

	// Initial pass before the watcher takes over.
	runOnce()

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: web.NewRouter(holder),
	}

	// A shutdown signal cancels the whole group.
	runCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(runCtx)

	g.Go(func() error {
		return watch.Watch(gCtx, cfg.Content.Root, debounce, logger, runOnce)
	})

	g.Go(func() error {
		logger.Info("status server starting", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("status server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("status server shutdown error", slog.String("error", err.Error()))
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("watch mode error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("stopped")
	return nil
}
