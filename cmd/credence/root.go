package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Harshitk-cp/credence/internal/config"
	"github.com/Harshitk-cp/credence/internal/logging"
	"github.com/Harshitk-cp/credence/internal/service"
)

var (
	// logLevel overrides LOG_LEVEL when set.
	logLevel string
	logger   *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "credence",
	Short: "Credibility scoring pipeline for news documents",
	Long: `credence enriches raw news documents with named entities, related articles,
fact-check claims, knowledge-base summaries and a sentiment score, then assigns
each one a credibility score.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Load(); err != nil {
			return err
		}
		level := config.LogLevel()
		if logLevel != "" {
			level = logLevel
		}
		l, err := logging.New(level)
		if err != nil {
			return fmt.Errorf("build logger: %w", err)
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
}

func connect(ctx context.Context) (*pgxpool.Pool, error) {
	dbURL := config.DatabaseURL()
	if dbURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

// openPipeline connects and wires a pipeline. The caller closes the pool.
func openPipeline(ctx context.Context, cfg config.PipelineConfig) (*service.Pipeline, *pgxpool.Pool, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	pool, err := connect(ctx)
	if err != nil {
		return nil, nil, err
	}
	deps, err := service.DependenciesFromEnv(pool, cfg, logger)
	if err != nil {
		pool.Close()
		return nil, nil, err
	}
	p, err := service.NewPipeline(deps, cfg, logger)
	if err != nil {
		pool.Close()
		return nil, nil, err
	}
	return p, pool, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
