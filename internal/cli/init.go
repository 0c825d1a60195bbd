// Package cli holds the start-up and shutdown steps of cmd/cashflow.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"cashflow/internal/config"
	applog "cashflow/internal/log"
)

// SetupLogger builds the application logger at the named level and installs
// it as the slog default. An unknown level falls back to info and is
// reported through the returned error.
func SetupLogger(level string, out io.Writer) (*applog.Logger, error) {
	lvl, err := config.ParseLogLevel(level)

	cfg := applog.DefaultConfig()
	cfg.Level = lvl
	if out != nil {
		cfg.Output = out
	}
	logger := applog.New(cfg)
	applog.SetDefault(logger)
	return logger, err
}

// LoadEnvFile loads .env for local development. A missing file is fine.
func LoadEnvFile(filenames ...string) error {
	err := godotenv.Load(filenames...)
	if err != nil && errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// LoadAndValidateConfig reads the environment and validates the result.
func LoadAndValidateConfig() (*config.Config, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM.
func SignalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}

// GracefulShutdown runs each step with a shared deadline and joins their
// errors. Every step runs even if an earlier one failed.
func GracefulShutdown(logger *applog.Logger, timeout time.Duration, steps ...func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var errs []error
	for i, step := range steps {
		if step == nil {
			continue
		}
		if err := step(ctx); err != nil {
			logger.Error("Shutdown step failed",
				applog.FieldOperation, applog.OpShutdown,
				"step", i,
				applog.FieldError, err)
			errs = append(errs, fmt.Errorf("shutdown step %d: %w", i, err))
		}
	}
	if ctx.Err() != nil {
		logger.Warn("Shutdown timeout reached", "timeout", timeout)
	}
	return errors.Join(errs...)
}
