package main

import (
	"context"
	"errors"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"cashflow/internal/amqp"
	"cashflow/internal/cli"
	"cashflow/internal/config"
	applog "cashflow/internal/log"
	"cashflow/internal/sheets/google"
	"cashflow/internal/store/sqlite"
	"cashflow/internal/worker"
)

const shutdownTimeout = 30 * time.Second

func main() {
	if err := cli.LoadEnvFile(); err != nil {
		applog.FromContext(context.Background()).Warn("Failed to load .env file", applog.FieldError, err)
	}

	cfg := config.Load()
	logger, err := cli.SetupLogger(cfg.LogLevel, nil)
	if err != nil {
		logger.Warn("Unknown log level, using info", "level", cfg.LogLevel)
	}
	if err := cfg.ValidateWorker(); err != nil {
		logger.Error("Configuration validation failed", applog.FieldError, err)
		os.Exit(1)
	}

	logger.Info("Starting cashflow-worker")

	ctx, stop := cli.SignalContext(context.Background())
	defer stop()

	repo, err := sqlite.New(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite store", applog.FieldError, err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}

	exporter, err := google.New(ctx, google.Config{
		SpreadsheetID:      cfg.GoogleSpreadsheetID,
		SheetName:          cfg.GoogleSheetName,
		ServiceAccountFile: cfg.GoogleServiceAccountFile,
		ServiceAccountJSON: cfg.GoogleServiceAccountJSON,
	})
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", applog.FieldError, err)
		_ = repo.Close()
		os.Exit(1)
	}

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", applog.FieldError, err)
		_ = repo.Close()
		os.Exit(1)
	}

	syncWorker := worker.NewSyncWorker(repo, exporter)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return client.ConsumeCashFlowEvents(gctx, syncWorker.HandleEvent)
	})
	g.Go(func() error {
		return syncWorker.Run(gctx, cfg.SyncInterval)
	})

	err = g.Wait()
	logger.Info("Shutting down worker")
	shutdownErr := cli.GracefulShutdown(logger, shutdownTimeout,
		func(context.Context) error { return client.Close() },
		func(context.Context) error { return repo.Close() },
	)

	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", applog.FieldError, err)
		os.Exit(1)
	}
	if shutdownErr != nil {
		os.Exit(1)
	}
	logger.Info("Worker shutdown complete")
}
