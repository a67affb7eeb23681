// Package server initializes and runs the WasteHub server: it opens the
// database, applies migrations, wires repositories into services, and runs
// the HTTP API next to the gRPC health endpoint until a shutdown signal.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/dmitrijs2005/wastehub/internal/dbx"
	"github.com/dmitrijs2005/wastehub/internal/logging"
	"github.com/dmitrijs2005/wastehub/internal/server/config"
	"github.com/dmitrijs2005/wastehub/internal/server/httpapi"
	"github.com/dmitrijs2005/wastehub/internal/server/hubs"
	"github.com/dmitrijs2005/wastehub/internal/server/metrics"
	"github.com/dmitrijs2005/wastehub/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/wastehub/internal/server/services"

	gs "github.com/dmitrijs2005/wastehub/internal/server/grpc"
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	handler http.Handler
	grpc    *gs.GRPCServer
}

// NewApp connects to PostgreSQL, migrates the schema and builds the app.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	level, err := logging.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, err
	}
	logger := logging.NewJSON(os.Stdout, level)

	db, err := dbx.Open(ctx, c.DatabaseDSN, dbx.DefaultPoolConfig())
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	app, err := newApp(ctx, c, db, repomanager.NewPostgresRepositoryManager(), logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return app, nil
}

func newApp(ctx context.Context, c *config.Config, db *sql.DB, rm repomanager.RepositoryManager, logger logging.Logger) (*App, error) {
	if err := rm.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	registry, err := loadHubs(c.HubRegistryFile)
	if err != nil {
		return nil, err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	mx := metrics.New(reg)

	ds := services.NewDepositService(db, rm, registry, c, logger, mx)
	vs := services.NewVerificationService(db, rm, logger, mx)
	us := services.NewUserService(db, rm, c, logger, mx)

	handler := httpapi.NewRouter(httpapi.Deps{
		Deposits:       ds,
		Verification:   vs,
		Users:          us,
		Hubs:           registry,
		DB:             db,
		Logger:         logger,
		Metrics:        mx,
		Gatherer:       reg,
		RequestTimeout: c.RequestTimeout,
	})

	return &App{
		config:  c,
		logger:  logger.With("module", "app"),
		db:      db,
		handler: handler,
		grpc:    gs.NewGRPCServer(c.EndpointAddrGRPC, logger, db),
	}, nil
}

func loadHubs(path string) (*hubs.Registry, error) {
	if path == "" {
		return hubs.Default()
	}
	return hubs.LoadFile(path)
}

// Handler exposes the HTTP API, mainly for tests.
func (app *App) Handler() http.Handler {
	return app.handler
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	srv := &http.Server{
		Addr:              app.config.EndpointAddrHTTP,
		Handler:           app.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		app.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), app.config.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			app.logger.Error(ctx, "HTTP shutdown error", "error", err)
		}
	}()

	app.logger.Info(ctx, "Starting HTTP server", "address", app.config.EndpointAddrHTTP)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.grpc.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves until ctx is cancelled, a termination signal arrives, or one of
// the servers fails to start. It closes the database before returning.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
}
