package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"cashflow/internal/backend"
	"cashflow/internal/cache"
	"cashflow/internal/cli"
	apphttp "cashflow/internal/http"
	applog "cashflow/internal/log"
	"cashflow/internal/seed"
	"cashflow/internal/services"
	"cashflow/internal/sheets/google"
)

const (
	shutdownTimeout      = 30 * time.Second
	cacheCleanupInterval = time.Minute
	metadataCacheSize    = 16
)

func main() {
	// .env is optional outside local development
	if err := cli.LoadEnvFile(); err != nil {
		applog.FromContext(context.Background()).Warn("Failed to load .env file", applog.FieldError, err)
	}

	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		logger, _ := cli.SetupLogger("info", nil)
		logger.Error("Configuration validation failed", applog.FieldError, err)
		os.Exit(1)
	}

	logger, err := cli.SetupLogger(cfg.LogLevel, nil)
	if err != nil {
		logger.Warn("Unknown log level, using info", "level", cfg.LogLevel)
	}

	ctx, stop := cli.SignalContext(context.Background())
	defer stop()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", applog.FieldError, err)
		os.Exit(1)
	}
	var factory backend.Factory = backend.NewFactory(logger.WithComponent(applog.ComponentBackend).Logger)
	result, err := factory.CreateBackend(ctx, backendCfg)
	if err != nil {
		logger.Error("Failed to initialize backend", applog.FieldError, err, applog.FieldBackend, cfg.DataBackend)
		os.Exit(1)
	}

	// A zero TTL turns metadata caching off.
	var opts []services.Option
	caches := cache.NewManager()
	if cfg.MetadataCacheTTL > 0 {
		metadata := cache.NewLRUCache[[]string](metadataCacheSize, cfg.MetadataCacheTTL)
		caches.Register(metadata)
		caches.StartCleanup(cacheCleanupInterval)
		opts = append(opts, services.WithMetadataCache(metadata))
	}
	if result.Publisher != nil {
		opts = append(opts, services.WithPublisher(result.Publisher))
	}
	svc := services.NewCashFlowService(result.Store, seed.NewLoader(cfg.SeedFile), opts...)

	if cfg.SeedOnStartup {
		n, err := svc.Reseed(ctx)
		if err != nil {
			logger.Error("Failed to seed store", applog.FieldError, err, applog.FieldOperation, applog.OpStartup)
			os.Exit(1)
		}
		logger.Info("Store seeded", applog.FieldCount, n, "seed_file", cfg.SeedFile)
	}

	serverOpts := []apphttp.Option{
		apphttp.WithLogger(logger.WithComponent(applog.ComponentHTTP)),
		apphttp.WithRateLimit(cfg.RateLimitPerMinute),
		apphttp.WithTrustedProxies(cfg.TrustedProxies),
	}
	if cfg.SheetsEnabled() {
		exporter, err := google.New(ctx, google.Config{
			SpreadsheetID:      cfg.GoogleSpreadsheetID,
			SheetName:          cfg.GoogleSheetName,
			ServiceAccountFile: cfg.GoogleServiceAccountFile,
			ServiceAccountJSON: cfg.GoogleServiceAccountJSON,
		})
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", applog.FieldError, err)
			os.Exit(1)
		}
		serverOpts = append(serverOpts, apphttp.WithSheetsExporter(exporter))
		logger.Info("Google Sheets export enabled", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	}

	srv := apphttp.NewServer(":"+cfg.Port, svc, serverOpts...)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting cashflow server", "port", cfg.Port, applog.FieldBackend, cfg.DataBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down server")
		return cli.GracefulShutdown(logger, shutdownTimeout,
			srv.Shutdown,
			func(context.Context) error {
				caches.Stop()
				hits, misses := caches.Stats()
				logger.Info("Metadata cache stats", "hits", hits, "misses", misses)
				return nil
			},
			func(context.Context) error { return result.Cleanup() },
		)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server stopped with error", applog.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
