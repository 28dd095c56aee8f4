// Command stranalyzer serves the string analysis HTTP API.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/stranalyzer/internal/config"
	"github.com/kailas-cloud/stranalyzer/internal/db"
	dbRedis "github.com/kailas-cloud/stranalyzer/internal/db/redis"
	dbValkey "github.com/kailas-cloud/stranalyzer/internal/db/valkey"
	logpkg "github.com/kailas-cloud/stranalyzer/internal/logger"
	"github.com/kailas-cloud/stranalyzer/internal/metrics"
	entryrepo "github.com/kailas-cloud/stranalyzer/internal/repository/entry"
	chiTransport "github.com/kailas-cloud/stranalyzer/internal/transport/chi"
	entryuc "github.com/kailas-cloud/stranalyzer/internal/usecase/entry"
	healthuc "github.com/kailas-cloud/stranalyzer/internal/usecase/health"
	"github.com/kailas-cloud/stranalyzer/internal/version"
)

func main() {
	if err := start(); err != nil {
		fmt.Fprintln(os.Stderr, "stranalyzer:", err)
		os.Exit(1)
	}
}

func start() error {
	// A .env file is a local convenience; deployments set the environment directly.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}

	env := config.GetEnv()
	cfg, err := config.Load(env)
	if err != nil {
		return err
	}

	logger, err := logpkg.New(env, cfg.Logging.Level)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, env, &cfg, logger); err != nil {
		logger.Error("stranalyzer stopped with error", zap.Error(err))
		return err
	}
	return nil
}

func run(ctx context.Context, env string, cfg *config.Config, logger *zap.Logger) error {
	logger.Info("starting stranalyzer",
		zap.String("version", version.String()),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("db_driver", cfg.Database.Driver),
		zap.Strings("db_addrs", cfg.Database.Addrs),
		zap.String("key_prefix", cfg.Storage.KeyPrefix),
	)

	store, err := openStore(cfg.Database)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	readiness := time.Duration(cfg.Database.ReadinessTimeout) * time.Second
	if err := store.WaitForReady(ctx, readiness); err != nil {
		return err
	}
	logger.Info("database ready")

	metrics.RegisterStringMetrics()

	repo := entryrepo.New(store, cfg.Storage.KeyPrefix)
	if err := repo.EnsureIndex(ctx); err != nil {
		return fmt.Errorf("ensure index %s: %w", repo.IndexName(), err)
	}
	logger.Info("search index ready", zap.String("index", repo.IndexName()))

	entries := entryuc.New(repo).
		WithLimits(cfg.Limits()).
		WithPagination(cfg.Query.DefaultPageSize, cfg.Query.MaxPageSize)
	health := healthuc.New(store, repo)
	server := chiTransport.NewServer(entries, health, logger)

	r := chi.NewRouter()
	r.Use(chiTransport.RequestID)
	r.Use(chiTransport.JSONRecoverer(logger))
	r.Use(chiTransport.RequestLogger(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Routes(r)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           r,
		ReadTimeout:       time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		ReadHeaderTimeout: time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout:      time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("server stopped")
	return nil
}

// openStore dials the configured driver.
func openStore(cfg config.DatabaseConfig) (db.Store, error) {
	conn := dbRedis.Config{
		Addrs:       cfg.Addrs,
		Username:    cfg.Username,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: time.Duration(cfg.DialTimeoutSec) * time.Second,
	}
	switch cfg.Driver {
	case "valkey":
		return dbValkey.NewStore(conn)
	case "redis":
		return dbRedis.NewStore(conn)
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}
