// Package server initializes and runs the NewsMarks API server: database
// and cache wiring, the HTTP listener, and graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dmitrijs2005/newsmarks/internal/logging"
	"github.com/dmitrijs2005/newsmarks/internal/server/cache"
	"github.com/dmitrijs2005/newsmarks/internal/server/config"
	"github.com/dmitrijs2005/newsmarks/internal/server/httpapi"
	"github.com/dmitrijs2005/newsmarks/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/newsmarks/internal/server/services"

	_ "github.com/jackc/pgx/v5/stdlib"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	cache  *cache.HighlightCache
	server *http.Server
}

func NewApp(c *config.Config) (*App, error) {

	slogger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(slogger)

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(context.Background(), db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	hc := cache.New(c.RedisAddr, c.RedisPassword, c.CacheTTL)

	us := services.NewUserService(db, rm, c)
	hs := services.NewHighlightService(db, rm, hc)

	handler := httpapi.NewHandler(logger, us, hs, []byte(c.SecretKey))
	srv := &http.Server{
		Addr:    c.EndpointAddr,
		Handler: handler.NewRouter(),
	}

	return &App{config: c, logger: logger, db: db, cache: hc, server: srv}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "starting server", "addr", app.config.EndpointAddr)

	app.initSignalHandler(cancelFunc)

	go func() {
		if err := app.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.logger.Error(ctx, "server error", "error", err.Error())
			cancelFunc()
		}
	}()

	<-ctx.Done()

	app.logger.Info(ctx, "shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := app.server.Shutdown(shutdownCtx); err != nil {
		app.logger.Error(shutdownCtx, "shutdown error", "error", err.Error())
	}

	if err := app.cache.Close(); err != nil {
		app.logger.Error(shutdownCtx, "cache close error", "error", err.Error())
	}
	if err := app.db.Close(); err != nil {
		app.logger.Error(shutdownCtx, "db close error", "error", err.Error())
	}
}
