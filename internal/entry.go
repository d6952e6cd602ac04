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
	"golang.org/x/sync/errgroup"

	"github.com/starford/daybook/internal/api"
	"github.com/starford/daybook/internal/eventstore"
	"github.com/starford/daybook/internal/icalx"
	"github.com/starford/daybook/internal/inbox"
	"github.com/starford/daybook/internal/mcpserver"
	"github.com/starford/daybook/internal/models"
	"github.com/starford/daybook/internal/reminder"
	"github.com/starford/daybook/internal/sse"
	"github.com/starford/daybook/internal/tui"
	"github.com/starford/daybook/internal/view"
)

func setup(opts []Option) (*application, *slog.Logger, error) {
	app := &application{logOut: os.Stdout}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return nil, nil, fmt.Errorf("config is required")
	}

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(app.logOut, &slog.HandlerOptions{
		Level: app.config.App.LogLevel,
	}))
	slog.SetDefault(logger)

	return app, logger, nil
}

// Run starts the HTTP server, the reminder dispatcher and the inbox watcher.
func Run(ctx context.Context, opts ...Option) error {
	app, logger, err := setup(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("locale", string(cfg.Calendar.Locale)),
		slog.String("timezone", cfg.Calendar.Location().String()),
		slog.String("inbox_path", cfg.Inbox.Path),
		slog.String("reminder_schedule", cfg.Reminders.Schedule),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// SSE broker.
	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	// Event store. Changes are streamed to clients; reminders that were
	// edited or removed may fire again at their new time.
	var dispatcher *reminder.Dispatcher
	store := eventstore.New(
		eventstore.WithLocation(cfg.Calendar.Location()),
		eventstore.WithOnChange(func(kind string, ev models.Event) {
			broker.PublishEventChange(kind, ev.ID)
			if kind != eventstore.KindCreated {
				dispatcher.Forget(ev.ID)
			}
		}),
	)
	dispatcher = reminder.New(store, broker,
		reminder.WithSchedule(cfg.Reminders.Schedule),
		reminder.WithLead(cfg.Reminders.Lead),
		reminder.WithLocation(cfg.Calendar.Location()),
		reminder.WithLogger(logger),
	)

	// Build API router.
	settings := api.Settings{
		Locale: cfg.Calendar.Locale,
		Layout: cfg.Calendar.Layout(),
	}
	apiRouter := api.NewRouter(store, settings, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", healthOK)
	r.Get("/health/ready", healthOK)

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Fire due reminders.
	g.Go(func() error {
		return dispatcher.Start(gCtx)
	})

	// Keep the inbox directory imported.
	if cfg.Inbox.Enabled() {
		ib, err := newInbox(cfg, store, logger)
		if err != nil {
			return err
		}
		g.Go(func() error {
			if err := ib.Watch(gCtx); err != nil {
				logger.Error("inbox watcher stopped", slog.String("error", err.Error()))
			}
			return nil
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

		// Closing the broker ends open SSE streams so Shutdown does not wait on them.
		broker.Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// errShutdown cancels the group so the dispatcher and watcher stop with the server.
var errShutdown = errors.New("shutdown")

func healthOK(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func newInbox(cfg *Config, store *eventstore.Store, logger *slog.Logger) (*inbox.Inbox, error) {
	dir, err := inbox.NewDir(cfg.Inbox.Path)
	if err != nil {
		return nil, fmt.Errorf("init inbox: %w", err)
	}
	return inbox.New(dir, store, cfg.Calendar.Location(), logger, func(kind, path string) {
		logger.Info("inbox file synced", slog.String("kind", kind), slog.String("path", path))
	}), nil
}

// offlineStore builds a store for the single-process commands, preloaded
// from the inbox directory when one is configured.
func offlineStore(ctx context.Context, cfg *Config, logger *slog.Logger) (*eventstore.Store, error) {
	store := eventstore.New(eventstore.WithLocation(cfg.Calendar.Location()))
	if !cfg.Inbox.Enabled() {
		return store, nil
	}
	ib, err := newInbox(cfg, store, logger)
	if err != nil {
		return nil, err
	}
	if err := ib.Sync(ctx); err != nil {
		logger.Warn("inbox sync failed", slog.String("error", err.Error()))
	}
	return store, nil
}

// RunTUI runs the interactive terminal calendar.
func RunTUI(ctx context.Context, opts ...Option) error {
	app, logger, err := setup(opts)
	if err != nil {
		return err
	}
	store, err := offlineStore(ctx, app.config, logger)
	if err != nil {
		return err
	}
	return tui.Run(ctx, tui.New(store, app.config.Calendar.Locale))
}

// RunMCP serves the calendar tools over stdio.
func RunMCP(ctx context.Context, opts ...Option) error {
	app, logger, err := setup(opts)
	if err != nil {
		return err
	}
	store, err := offlineStore(ctx, app.config, logger)
	if err != nil {
		return err
	}
	logger.Info("MCP server starting", slog.Int("events", store.Len()))
	return mcpserver.New(store, app.config.Calendar.Locale).ServeStdio()
}

// MonthRequest selects the month printed by PrintMonth. Zero Year or Month
// means the current one; ICSPath optionally preloads a calendar file.
type MonthRequest struct {
	Year    int
	Month   time.Month
	ICSPath string
}

// PrintMonth writes one month grid to w.
func PrintMonth(ctx context.Context, w io.Writer, req MonthRequest, opts ...Option) error {
	app, logger, err := setup(opts)
	if err != nil {
		return err
	}
	store, err := offlineStore(ctx, app.config, logger)
	if err != nil {
		return err
	}
	if req.ICSPath != "" {
		if err := importFile(ctx, store, req.ICSPath); err != nil {
			return err
		}
	}

	now := store.Now()
	state := view.NewState(now)
	if req.Year != 0 {
		state.Year = req.Year
	}
	if req.Month != 0 {
		state = view.Reduce(state, view.NavigateMonth{Delta: int(req.Month - state.Month)})
	}

	v := view.BuildMonth(state, store, now, app.config.Calendar.Locale)
	_, err = fmt.Fprintln(w, tui.RenderGrid(v, tui.DefaultStyles()))
	return err
}

func importFile(ctx context.Context, store *eventstore.Store, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open calendar: %w", err)
	}
	defer f.Close()

	inputs, skipped, err := icalx.Decode(f, store.Location())
	if err != nil {
		return fmt.Errorf("read calendar %s: %w", path, err)
	}
	created, rejected := store.Import(ctx, inputs)
	slog.Info("calendar imported",
		slog.String("path", path),
		slog.Int("imported", len(created)),
		slog.Int("skipped", skipped+rejected))
	return nil
}
