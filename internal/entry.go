// Package internal provides the main application initialization and runtime logic.
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

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/menushare/internal/api"
	"github.com/starford/menushare/internal/catalog"
	"github.com/starford/menushare/internal/mcpserver"
	"github.com/starford/menushare/internal/menu"
	"github.com/starford/menushare/internal/menuservice"
	"github.com/starford/menushare/internal/models"
	"github.com/starford/menushare/internal/sharecodec"
	"github.com/starford/menushare/internal/sse"
)

func setup(opts []Option) (*application, *slog.Logger, error) {
	app := &application{logOutput: os.Stdout}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return nil, nil, fmt.Errorf("config is required")
	}

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(app.logOutput, &slog.HandlerOptions{
		Level: app.config.App.LogLevel,
	}))
	slog.SetDefault(logger)
	return app, logger, nil
}

// NewService builds the menu store described by cfg.Menu and the service
// over it. An import file must parse; a broken share fragment only logs a
// warning and leaves an empty editable menu.
func NewService(cfg *Config, logger *slog.Logger) (*menuservice.Service, error) {
	store := menu.NewStore()

	switch {
	case cfg.Menu.ImportPath != "":
		snap, err := catalog.Read(cfg.Menu.ImportPath)
		if err != nil {
			return nil, fmt.Errorf("import menu: %w", err)
		}
		store.Replace(catalog.State(snap))
		logger.Info("Menu imported",
			slog.String("path", cfg.Menu.ImportPath),
			slog.Int("categories", len(snap.Categories)),
			slog.Int("items", len(snap.Items)))

	case cfg.Menu.Fragment != "":
		st, err := sharecodec.Load(cfg.Menu.Fragment)
		if err == nil {
			logger.Info("Menu opened from share link (read-only)",
				slog.Int("categories", len(st.Categories)),
				slog.Int("items", len(st.Items)))
		}
		store.Replace(st)
	}

	return menuservice.NewService(store, menuservice.Config{
		ShareBaseURL: cfg.Share.BaseURL,
		WarnLength:   cfg.Share.WarnLength,
		Images:       cfg.Images.Options(),
	}), nil
}

// NewHTTPHandler assembles the chi router: health checks, the REST API
// under /api and the SSE stream at /api/events.
func NewHTTPHandler(cfg *Config, svc *menuservice.Service, events http.Handler) http.Handler {
	apiRouter := api.NewRouter(svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, events, cfg.Images.MaxUploadBytes)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)
	return r
}

// watchMenu re-imports the seed file on change until ctx is done.
func watchMenu(ctx context.Context, cfg *Config, svc *menuservice.Service, logger *slog.Logger) error {
	return catalog.Watch(ctx, cfg.Menu.ImportPath, logger, func(snap models.Snapshot) {
		if _, err := svc.Replace(ctx, snap); err != nil {
			logger.Warn("menu reload rejected", slog.String("error", err.Error()))
		}
	})
}

// Run starts the HTTP service with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, logger, err := setup(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("share_base_url", cfg.Share.BaseURL),
		slog.String("import_path", cfg.Menu.ImportPath),
		slog.Bool("watch", cfg.Menu.Watch),
		slog.String("log_level", cfg.App.LogLevel.String()))

	svc, err := NewService(cfg, logger)
	if err != nil {
		return err
	}

	// SSE broker follows every store change.
	broker := sse.NewBroker(cfg.Events.Throttle, sse.WithKeepAlive(cfg.Events.KeepAlive))
	defer broker.Close()
	unfollow := broker.Follow(svc.Store())
	defer unfollow()

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: NewHTTPHandler(cfg, svc, broker),
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Re-import the seed menu when it changes.
	if cfg.Menu.Watch {
		g.Go(func() error {
			return watchMenu(gCtx, cfg, svc, logger)
		})
	}

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
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

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
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

// RunMCP serves the MCP tools over stdio until stdin closes or ctx is done.
func RunMCP(ctx context.Context, opts ...Option) error {
	app, logger, err := setup(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	svc, err := NewService(cfg, logger)
	if err != nil {
		return err
	}

	g, gCtx := errgroup.WithContext(ctx)
	watchCtx, stopWatch := context.WithCancel(gCtx)
	defer stopWatch()

	if cfg.Menu.Watch {
		g.Go(func() error {
			return watchMenu(watchCtx, cfg, svc, logger)
		})
	}

	g.Go(func() error {
		defer stopWatch()
		logger.Info("Starting MCP server on stdio")
		return mcpserver.New(svc).ServeStdio()
	})

	return g.Wait()
}
