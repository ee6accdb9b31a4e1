package main

import (
	"context"
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/mohammadpnp/employee-import/internal/bootstrap"
	"github.com/mohammadpnp/employee-import/internal/config"
	"github.com/mohammadpnp/employee-import/internal/infrastructure/metrics"
)

type rootOptions struct {
	EnvFiles []string
}

func newRootCmd() *cobra.Command {
	var opts rootOptions

	cmd := &cobra.Command{
		Use:           "importctl",
		Short:         "Queue employee imports and inspect their progress",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringSliceVar(&opts.EnvFiles, "env-file", config.DefaultEnvFiles, "env files to load when present")

	cmd.AddCommand(newQueueCmd(&opts))
	cmd.AddCommand(newStatusCmd(&opts))
	return cmd
}

func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

// environment is what every subcommand needs once config is loaded.
type environment struct {
	cfg     *config.Config
	logger  *logrus.Logger
	db      *bootstrap.Database
	metrics *metrics.ImportMetrics
}

func openEnvironment(ctx context.Context, opts *rootOptions) (*environment, error) {
	cfg, err := config.Load(opts.EnvFiles...)
	if err != nil {
		return nil, err
	}
	if err := cfg.RequireDatabase(); err != nil {
		return nil, err
	}

	logger := bootstrap.NewLogger(cfg.LogLevel)
	logger.SetOutput(os.Stderr)

	db, err := bootstrap.OpenDatabase(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if cfg.AutoMigrate {
		if err := bootstrap.Migrate(ctx, db.Gorm); err != nil {
			db.Close()
			return nil, err
		}
	}

	return &environment{
		cfg:     cfg,
		logger:  logger,
		db:      db,
		metrics: metrics.NewImportMetrics(prometheus.NewRegistry()),
	}, nil
}
