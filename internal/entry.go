// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/mvantol/ansuz/internal/catalog"
	"github.com/mvantol/ansuz/internal/enrich"
	"github.com/mvantol/ansuz/internal/layout"
	"github.com/mvantol/ansuz/internal/models"
	"github.com/mvantol/ansuz/internal/storage"
	"github.com/mvantol/ansuz/internal/watch"
	"github.com/mvantol/ansuz/internal/workflow"
)

// Run starts the resident watch mode with the given options: new captures are
// processed as they appear and the catalog is kept in sync. It blocks until
// ctx is cancelled or a shutdown signal arrives.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("vault_path", cfg.Vault.Path),
		slog.String("enrich_mode", cfg.Enrich.Mode),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// Resolve vault layout and ensure the area directories exist.
	l, err := layout.Resolve(cfg.Vault.Path)
	if err != nil {
		return fmt.Errorf("resolve layout: %w", err)
	}
	if err := l.EnsureExists(); err != nil {
		return fmt.Errorf("create vault dirs: %w", err)
	}

	store, err := storage.NewFS(l.Root)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}

	db, err := catalog.Open(l.CatalogPath())
	if err != nil {
		return fmt.Errorf("init catalog: %w", err)
	}
	defer db.Close()

	// Run initial sync.
	if err := catalog.Sync(db, store, logger); err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
	}

	enricher := app.enricher
	if enricher == nil && cfg.Enrich.Enabled() {
		enricher = enrich.NewHeuristic()
	}
	wfOpts := workflow.Options{SkipEnrichment: enricher == nil}

	wf := workflow.New(store, l, enricher, logger)

	logger.Info("Watch mode starting...", slog.String("capture", l.CaptureDir()))

	g, gCtx := errgroup.WithContext(ctx)
	watchCtx, stopWatch := context.WithCancel(gCtx)
	defer stopWatch()

	// Process capture-area events; refresh the catalog after each run.
	g.Go(func() error {
		return watch.Watch(watchCtx, wf, l, wfOpts, logger, func(res *models.ProcessResult) {
			if syncErr := catalog.Sync(db, store, logger); syncErr != nil {
				logger.Warn("catalog sync failed",
					slog.String("path", res.Path), slog.String("error", syncErr.Error()))
			}
		})
	})

	// Handle shutdown signals.
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

		stopWatch()
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Watch mode stopped successfully")
	return nil
}
