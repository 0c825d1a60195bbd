package backend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"cashflow/internal/amqp"
	applog "cashflow/internal/log"
	"cashflow/internal/store"
	"cashflow/internal/store/memory"
	"cashflow/internal/store/sqlite"
)

var _ Factory = (*DefaultFactory)(nil)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger

	// dialAMQP is replaced in tests.
	dialAMQP func(url, exchange, queue string) (*amqp.Client, error)
}

func NewFactory(logger *slog.Logger) *DefaultFactory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{
		logger:   logger.With(applog.FieldComponent, applog.ComponentBackend),
		dialAMQP: amqp.NewClient,
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("backend config: %w", err)
	}
	f.logger.DebugContext(ctx, "Creating backend", "config", config)

	var (
		repo store.Repository
		err  error
	)
	switch config.Type {
	case SQLiteBackend:
		repo, err = sqlite.New(config.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite store: %w", err)
		}
		f.logger.InfoContext(ctx, "Initialized SQLite backend", "db_path", config.SQLiteDBPath)
	case MemoryBackend:
		repo = memory.New()
		f.logger.InfoContext(ctx, "Initialized memory backend")
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}

	result := &BackendResult{Store: repo}

	// AMQP is optional; a broker that is down at startup must not keep the
	// API from serving.
	var client *amqp.Client
	if config.AMQPURL != "" {
		client, err = f.dialAMQP(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
		if err != nil {
			f.logger.WarnContext(ctx, "Failed to initialize AMQP client, continuing without change events",
				"amqp_url", redactURL(config.AMQPURL),
				applog.FieldError, err)
			client = nil
		} else {
			result.Publisher = client
			f.logger.InfoContext(ctx, "Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
		}
	}

	result.Cleanup = func() error {
		var errs []error
		if client != nil {
			if err := client.Close(); err != nil {
				errs = append(errs, fmt.Errorf("amqp: %w", err))
			}
		}
		if err := repo.Close(); err != nil {
			errs = append(errs, fmt.Errorf("store: %w", err))
		}
		return errors.Join(errs...)
	}
	return result, nil
}
