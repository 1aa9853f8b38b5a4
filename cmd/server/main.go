package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/Harshitk-cp/credence/internal/api"
	"github.com/Harshitk-cp/credence/internal/config"
	"github.com/Harshitk-cp/credence/internal/logging"
	"github.com/Harshitk-cp/credence/internal/service"
	"github.com/Harshitk-cp/credence/internal/store"
)

func main() {
	if err := config.Load(); err != nil {
		panic(err)
	}

	logger, err := logging.New(config.LogLevel())
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Pipeline()
	if err != nil {
		logger.Fatal("invalid pipeline config", zap.Error(err))
	}

	dbURL := config.DatabaseURL()
	if dbURL == "" {
		logger.Fatal("DATABASE_URL is required")
	}

	ctx := context.Background()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		logger.Fatal("failed to ping database", zap.Error(err))
	}
	logger.Info("connected to database")

	if os.Getenv("AUTO_MIGRATE") == "true" {
		applied, err := store.Migrate(ctx, pool, config.MigrationsPath(), logger)
		if err != nil {
			logger.Fatal("migration failed", zap.Error(err))
		}
		logger.Info("migrations applied", zap.Strings("files", applied))
	}

	deps, err := service.DependenciesFromEnv(pool, cfg, logger)
	if err != nil {
		logger.Fatal("failed to build pipeline dependencies", zap.Error(err))
	}
	pipeline, err := service.NewPipeline(deps, cfg, logger)
	if err != nil {
		logger.Fatal("failed to build pipeline", zap.Error(err))
	}

	processor := service.NewProcessorService(pipeline, cfg.ProcessLimit, logger)
	processor.SetInterval(cfg.Interval)
	app := api.NewApp(pool, pipeline, processor, logger)

	if cfg.Interval > 0 {
		app.Processor.Start()
	}

	addr := config.ServerAddr()
	srv := &http.Server{
		Addr:              addr,
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("server starting", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}

	// The processor finishes its current batch before returning.
	if cfg.Interval > 0 {
		app.Processor.Stop()
	}

	logger.Info("server stopped")
}
