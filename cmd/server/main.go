package main

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/minitienda/minitienda/assets"
	"github.com/minitienda/minitienda/internal"
	"github.com/minitienda/minitienda/internal/auth"
	authdb "github.com/minitienda/minitienda/internal/auth/db"
	"github.com/minitienda/minitienda/internal/db"
	"github.com/minitienda/minitienda/internal/db/migrate"
	"github.com/minitienda/minitienda/internal/inventory"
	inventorydb "github.com/minitienda/minitienda/internal/inventory/db"
	"github.com/minitienda/minitienda/internal/web"
	"github.com/minitienda/minitienda/internal/web/sessions"
	"github.com/minitienda/minitienda/internal/web/view"
	"github.com/minitienda/minitienda/migrations"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
	"gopkg.in/natefinch/lumberjack.v2"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, os.Stderr))
}

func run(ctx context.Context, w io.Writer) int {
	logger := slog.New(slog.NewTextHandler(w, nil))

	cfg, err := configFromEnv()
	if err != nil {
		logger.Error("failed to get config from environment", "error", err)
		return 1
	}

	logOut := w
	if cfg.log.file != "" {
		rotator := &lumberjack.Logger{
			Filename:   cfg.log.file,
			MaxSize:    cfg.log.maxSizeMB,
			MaxBackups: cfg.log.maxBackups,
		}
		defer rotator.Close()

		logOut = io.MultiWriter(w, rotator)
	}
	logger = slog.New(slog.NewTextHandler(logOut, &slog.HandlerOptions{
		Level: cfg.log.level,
	}))

	// SQLite only allows a single writer, so we use separate pools for reading and writing.
	writeDB, err := db.OpenSQLite(cfg.db.driver, cfg.db.file, true)
	if err != nil {
		logger.Error("failed to open write database", "error", err)
		return 1
	}
	defer closeDB(logger, writeDB)

	if cfg.db.migrate {
		logger.Info("attempting to migrate database", "file", cfg.db.file, "driver", cfg.db.driver)

		ran, err := migrate.RunFS(ctx, writeDB, migrations.FS, migrate.Metadata{
			AppVersion: internal.Version(),
			Timestamp:  internal.BuildRevisionTime,
		})
		if err != nil {
			logger.Error("failed to migrate database", "error", err)
			return 1
		}

		for _, m := range ran {
			logger.Info("migration ran", "sequence", m.Sequence, "filename", m.Filename)
		}
	}

	readDB, err := db.OpenSQLite(cfg.db.driver, cfg.db.file, false)
	if err != nil {
		logger.Error("failed to open read database", "error", err)
		return 1
	}
	defer closeDB(logger, readDB)

	authSvc, err := auth.NewService(authdb.New(readDB, writeDB), cfg.auth)
	if err != nil {
		logger.Error("failed to create auth service", "error", err)
		return 1
	}

	var viewRenderer web.ViewRenderer
	if cfg.http.viewDir != "" {
		logger.Info("loading templates from disk", "dir", cfg.http.viewDir)
		viewRenderer = view.NewFSRenderer(os.DirFS(cfg.http.viewDir))
	} else {
		viewRenderer, err = view.NewMemRenderer(assets.TemplateFS)
		if err != nil {
			logger.Error("failed to parse templates", "error", err)
			return 1
		}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	srv := &http.Server{
		Addr:         cfg.http.addr,
		ReadTimeout:  cfg.http.readTimeout,
		WriteTimeout: cfg.http.writeTimeout,
		IdleTimeout:  cfg.http.idleTimeout,
		Handler: web.NewServer(&web.ServerDeps{
			Logger:       logger,
			ViewRenderer: viewRenderer,
			AuthService:  authSvc,
			Inventory:    inventory.NewService(inventorydb.New(readDB, writeDB)),
			SessionStore: sessionStore(logger, cfg.http),
			DistFS:       http.FS(assets.DistFS),
			Metrics:      reg,
		}, cfg.http.server),
	}

	var metricsSrv *http.Server
	if cfg.metrics.addr != "" {
		metricsSrv = &http.Server{
			Addr:        cfg.metrics.addr,
			ReadTimeout: cfg.http.readTimeout,
			Handler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{
				ErrorLog: slog.NewLogLogger(logger.Handler(), slog.LevelError),
			}),
		}
	}

	// We need to run these tasks concurrently:
	// - Listen and serving of the HTTP server.
	// - Listen and serving of the metrics server, if enabled.
	// - Waiting for a signal to stop the servers.

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting http server",
			"addr", cfg.http.addr,
			"buildRevision", internal.BuildRevision,
			"buildRevisionTime", internal.BuildRevisionTime,
			"buildLocalModified", internal.BuildLocalModified,
		)
		// ListenAndServe always returns a non-nil error,
		// g will cancel gCtx when an error is returned, so
		// this will also stop the other goroutine.
		return srv.ListenAndServe()
	})

	if metricsSrv != nil {
		g.Go(func() error {
			logger.Info("starting metrics server", "addr", cfg.metrics.addr)
			return metricsSrv.ListenAndServe()
		})
	}

	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("stopping http server")

		shutCtx, cancel := context.WithTimeout(context.Background(), cfg.http.shutdownTimeout)
		defer cancel()

		err := srv.Shutdown(shutCtx)
		if metricsSrv != nil {
			err = errors.Join(err, metricsSrv.Shutdown(shutCtx))
		}
		return err
	})

	err = g.Wait()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server stopped with error", "error", err)
		return 1
	}

	logger.Info("http server stopped successfully")

	return 0
}

func sessionStore(logger *slog.Logger, cfg httpConfig) *sessions.Store {
	keyPairs := make([][]byte, 0, len(cfg.cookieKeys))
	for _, k := range cfg.cookieKeys {
		keyPairs = append(keyPairs, k.SecretValue())
	}

	opts := sessions.Options{
		Secure: cfg.server.SecureCookie,
		MaxAge: int(cfg.sessionMaxAge.Seconds()),
	}

	if cfg.sessionDir != "" {
		logger.Info("storing sessions on disk", "dir", cfg.sessionDir)
		return sessions.NewFilesystemStore(cfg.sessionDir, opts, keyPairs...)
	}

	return sessions.NewCookieStore(opts, keyPairs...)
}

func closeDB(logger *slog.Logger, sqlDB *sql.DB) {
	err := sqlDB.Close()
	if err != nil {
		logger.Error("failed to close database", "error", err)
	}
}
