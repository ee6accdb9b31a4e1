package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	apptask "github.com/mohammadpnp/employee-import/internal/application/task"
	"github.com/mohammadpnp/employee-import/internal/bootstrap"
	"github.com/mohammadpnp/employee-import/internal/config"
	"github.com/mohammadpnp/employee-import/internal/domain/task"
	"github.com/mohammadpnp/employee-import/internal/infrastructure/metrics"
	"github.com/mohammadpnp/employee-import/internal/infrastructure/repository"
)

func main() {
	cfg, err := config.Load(config.DefaultEnvFiles...)
	if err != nil {
		bootstrap.NewLogger("info").WithError(err).Fatal("failed to load config")
	}
	logger := bootstrap.NewLogger(cfg.LogLevel)

	if err := cfg.RequireDatabase(); err != nil {
		logger.WithError(err).Fatal("invalid config")
	}

	db, err := bootstrap.OpenDatabase(context.Background(), cfg.DatabaseURL)
	if err != nil {
		logger.WithError(err).Fatal("failed to connect database")
	}
	defer db.Close()

	if cfg.AutoMigrate {
		if err := bootstrap.Migrate(context.Background(), db.Gorm); err != nil {
			logger.WithError(err).Fatal("failed to migrate database")
		}
	}

	importMetrics := metrics.NewImportMetrics(prometheus.DefaultRegisterer)
	taskRepo := repository.NewImportTaskRepository(db.Gorm, cfg.Import.MaxAttempts)

	handlers := task.Handlers{}
	bootstrap.RegisterImportHandlers(handlers, taskRepo, bootstrap.NewImportComponents(cfg, db, importMetrics, logger), logger)

	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()

	worker := apptask.NewWorker(taskRepo, handlers, importMetrics, apptask.WorkerConfig{
		Workers:       cfg.Import.Workers,
		PollInterval:  cfg.Import.PollInterval,
		LeaseDuration: cfg.Import.TaskLease,
	}, logger.WithField("component", "task_worker"))
	worker.Start(workerCtx)

	server := bootstrap.NewHTTPServer(cfg, taskRepo, logger)

	go func() {
		logger.WithField("port", cfg.Port).Info("http server listening")
		if err := server.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("graceful shutdown failed")
	}

	// Workers record the outcome of in-flight tasks before the pool is closed.
	stopWorkers()
	worker.Wait()
	logger.Info("server stopped")
}
