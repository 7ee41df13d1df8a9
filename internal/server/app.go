// Package server initializes and runs the library service: it loads the
// initial catalog, builds the in-memory tables, and runs the line-protocol
// listener next to the gRPC health endpoint until a stop signal arrives.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/librarian/internal/activity"
	"github.com/dmitrijs2005/librarian/internal/catalog"
	"github.com/dmitrijs2005/librarian/internal/logging"
	"github.com/dmitrijs2005/librarian/internal/server/config"
	"github.com/dmitrijs2005/librarian/internal/server/library"
	"github.com/dmitrijs2005/librarian/internal/server/metrics"
	"github.com/dmitrijs2005/librarian/internal/server/protocol"
	"github.com/dmitrijs2005/librarian/internal/server/tcp"

	gs "github.com/dmitrijs2005/librarian/internal/server/grpc"
)

type App struct {
	config   *config.Config
	logger   logging.Logger
	activity activity.Recorder
	store    *library.Store
	server   *tcp.Server
	health   *gs.HealthServer
}

// NewApp builds every component from c. The catalog is fetched here, so a
// slow catalog source delays startup but never prevents it.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.New(os.Stdout, slog.LevelInfo)
	act := activity.NewFileLog(c.ActivityLogPath, logger)

	return newApp(ctx, c, logger, act, nil)
}

func newApp(ctx context.Context, c *config.Config, logger logging.Logger, act activity.Recorder, rec metrics.Recorder) (*App, error) {
	act.Record(activity.SourceLibrary, "Library process starting...")

	loader, err := catalog.FromSource(c.CatalogSource, catalog.S3Config{
		Region:       c.S3Region,
		BaseEndpoint: c.S3BaseEndpoint,
		AccessKey:    c.S3RootUser,
		SecretKey:    c.S3RootPassword,
	})
	if err != nil {
		logger.Warn(ctx, "invalid catalog source", "source", c.CatalogSource, "error", err)
		loader = nil
	}
	titles := catalog.Load(ctx, loader, logger)

	maxTokenLen := c.MaxTokenLen
	if maxTokenLen <= 0 {
		maxTokenLen = protocol.MaxTokenLen
	}
	titles, changed := catalog.Normalize(titles, maxTokenLen)
	if changed > 0 {
		logger.Warn(ctx, "catalog titles rewritten to fit request tokens", "changed", changed, "max_token_len", maxTokenLen)
	}

	store, err := library.NewStore(c.MaxUsers, c.MaxBooks, titles)
	if errors.Is(err, library.ErrLibraryFull) {
		logger.Warn(ctx, "catalog larger than max books, extra titles dropped", "max_books", c.MaxBooks, "titles", len(titles))
	} else if err != nil {
		return nil, fmt.Errorf("store init error: %w", err)
	}

	if rec == nil {
		collector, err := metrics.New(nil)
		if err != nil {
			return nil, fmt.Errorf("metrics init error: %w", err)
		}
		rec = collector
	}

	srv := tcp.NewServer(c.EndpointAddr, protocol.NewDispatcher(store), logger, act, rec, tcp.Options{
		PollInterval:   c.AcceptPollInterval,
		ReadBufferSize: c.ReadBufferSize,
		MaxTokenLen:    c.MaxTokenLen,
	})

	app := &App{config: c, logger: logger, activity: act, store: store, server: srv}
	if c.HealthAddrGRPC != "" {
		app.health = gs.NewHealthServer(c.HealthAddrGRPC, logger)
	}

	return app, nil
}

// initSignalHandler stops the listener on SIGINT, SIGTERM or SIGQUIT. The
// returned func unregisters the handler.
func (app *App) initSignalHandler(ctx context.Context, cancelFunc context.CancelFunc) func() {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		select {
		case sig := <-sigs:
			app.logger.Info(ctx, "Signal received", "signal", sig.String())
			app.server.Shutdown()
			cancelFunc()
		case <-ctx.Done():
		}
	}()

	return func() { signal.Stop(sigs) }
}

func (app *App) startHealthServer(ctx context.Context) {
	if err := app.health.Run(ctx); err != nil {
		app.logger.Error(ctx, "health server failed", "error", err)
	}
}

// Run serves until ctx is cancelled or a stop signal arrives. The returned
// error is non-nil only when the listener could not be bound.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")
	stopSignals := app.initSignalHandler(ctx, cancelFunc)
	defer stopSignals()

	var wg sync.WaitGroup

	if app.health != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.startHealthServer(ctx)
		}()

		wg.Add(1)
		go func() {
			defer wg.Done()
			select {
			case <-app.server.Ready():
				app.health.SetServing(true)
			case <-ctx.Done():
			}
		}()
	}

	err := app.server.Run(ctx)

	if app.health != nil {
		app.health.Drain()
	}
	cancelFunc()
	wg.Wait()

	if err != nil {
		app.logger.Error(ctx, "server failed", "error", err)
		return err
	}

	st := app.store.Stats()
	app.logger.Info(ctx, "App stopped", "users", st.Users, "books", st.Books, "available_books", st.AvailableBooks)
	return nil
}
