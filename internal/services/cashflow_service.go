package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"cashflow/internal/cache"
	"cashflow/internal/core"
	"cashflow/internal/filter"
	applog "cashflow/internal/log"
	"cashflow/internal/store"
)

// Metadata cache keys.
const (
	keyTypes   = "types"
	keySources = "sources"
	keyLabels  = "labels"
)

// EventPublisher announces store changes. The AMQP client satisfies it.
type EventPublisher interface {
	PublishCashFlowEvent(ctx context.Context, event, id string) error
}

// SeedSource yields the records a reseed loads, plus a description of
// where they came from.
type SeedSource interface {
	Load() ([]core.CashFlow, string, error)
}

// CashFlowService orchestrates cash flow operations over a store,
// keeping the distinct-value cache consistent and publishing change events.
type CashFlowService struct {
	store     store.Repository
	seeds     SeedSource
	publisher EventPublisher
	metadata  cache.Cache[[]string]
	logger    *slog.Logger
}

type Option func(*CashFlowService)

// WithPublisher enables change events.
func WithPublisher(p EventPublisher) Option {
	return func(s *CashFlowService) { s.publisher = p }
}

// WithMetadataCache caches the distinct types, sources and labels.
func WithMetadataCache(c cache.Cache[[]string]) Option {
	return func(s *CashFlowService) { s.metadata = c }
}

func NewCashFlowService(repo store.Repository, seeds SeedSource, opts ...Option) *CashFlowService {
	s := &CashFlowService{
		store:  repo,
		seeds:  seeds,
		logger: slog.Default().With(applog.FieldComponent, applog.ComponentCashFlow),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns the records matching q in store order.
func (s *CashFlowService) List(ctx context.Context, q filter.Query) ([]core.CashFlow, error) {
	all, err := s.store.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list cash flows: %w", err)
	}
	return filter.Apply(all, q), nil
}

func (s *CashFlowService) Get(ctx context.Context, id string) (core.CashFlow, error) {
	return s.store.FindByID(ctx, id)
}

// Create validates d, stores a new record and returns its id.
func (s *CashFlowService) Create(ctx context.Context, d core.Draft) (string, error) {
	in, err := d.Validate()
	if err != nil {
		return "", err
	}

	c := core.NewCashFlow(in)
	if err := s.store.Add(ctx, c); err != nil {
		return "", fmt.Errorf("save cash flow: %w", err)
	}

	s.logger.InfoContext(ctx, "Cash flow created",
		applog.NewFields().
			WithCashFlow(c.ID, c.Type, c.Source, c.Amount.String()).
			WithOperation(applog.OpCreate).
			ToSlice()...)
	s.changed(ctx, core.EventCreated, c.ID)
	return c.ID, nil
}

// Update replaces the editable fields of the record with the given id.
// A missing id is reported before d is validated.
func (s *CashFlowService) Update(ctx context.Context, id string, d core.Draft) error {
	existing, err := s.store.FindByID(ctx, id)
	if err != nil {
		return err
	}

	in, err := d.Validate()
	if err != nil {
		return err
	}

	if err := s.store.Update(ctx, id, existing.Replace(in)); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return err
		}
		return fmt.Errorf("update cash flow: %w", err)
	}

	s.logger.InfoContext(ctx, "Cash flow updated",
		applog.FieldCashFlowID, id,
		applog.FieldOperation, applog.OpUpdate)
	s.changed(ctx, core.EventUpdated, id)
	return nil
}

// Delete removes the record, returning core.ErrNotFound when absent.
func (s *CashFlowService) Delete(ctx context.Context, id string) error {
	removed, err := s.store.RemoveByID(ctx, id)
	if err != nil {
		return fmt.Errorf("delete cash flow: %w", err)
	}
	if !removed {
		return core.ErrNotFound
	}

	s.logger.InfoContext(ctx, "Cash flow deleted",
		applog.FieldCashFlowID, id,
		applog.FieldOperation, applog.OpDelete)
	s.changed(ctx, core.EventDeleted, id)
	return nil
}

// Reseed empties the store and loads the seed records. A seed that cannot
// be read is logged and leaves the store empty; only store failures are
// returned.
func (s *CashFlowService) Reseed(ctx context.Context) (int, error) {
	if err := s.store.Clear(ctx); err != nil {
		return 0, fmt.Errorf("clear store: %w", err)
	}
	defer s.changed(ctx, core.EventReseeded, "")

	if s.seeds == nil {
		return 0, nil
	}

	records, source, err := s.seeds.Load()
	if err != nil {
		var seedErr *core.SeedLoadError
		errType := applog.ErrorTypeInternal
		if errors.As(err, &seedErr) {
			errType = applog.ErrorTypeConfiguration
		}
		s.logger.ErrorContext(ctx, "Failed to load seed data",
			applog.FieldError, err,
			applog.FieldErrorType, errType,
			applog.FieldOperation, applog.OpReseed)
		return 0, nil
	}

	for _, c := range records {
		if err := s.store.Add(ctx, c); err != nil {
			return 0, fmt.Errorf("load seed record %s: %w", c.ID, err)
		}
	}

	s.logger.InfoContext(ctx, "Seed data loaded",
		"seed_source", source,
		applog.FieldCount, len(records),
		applog.FieldOperation, applog.OpReseed)
	return len(records), nil
}

// Types returns the distinct record types in first-seen order.
func (s *CashFlowService) Types(ctx context.Context) ([]string, error) {
	return s.distinct(ctx, keyTypes, filter.DistinctTypes)
}

// Sources returns the distinct record sources in first-seen order.
func (s *CashFlowService) Sources(ctx context.Context) ([]string, error) {
	return s.distinct(ctx, keySources, filter.DistinctSources)
}

// Labels returns the distinct label tags in first-seen order.
func (s *CashFlowService) Labels(ctx context.Context) ([]string, error) {
	return s.distinct(ctx, keyLabels, filter.DistinctLabels)
}

func (s *CashFlowService) distinct(ctx context.Context, key string, fn func([]core.CashFlow) []string) ([]string, error) {
	load := func() ([]string, error) {
		all, err := s.store.GetAll(ctx)
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", key, err)
		}
		return fn(all), nil
	}
	if s.metadata == nil {
		return load()
	}
	return s.metadata.GetOrLoad(key, load)
}

// changed invalidates derived data and publishes event. Publish failures
// are logged only; the mutation already succeeded.
func (s *CashFlowService) changed(ctx context.Context, event, id string) {
	if s.metadata != nil {
		s.metadata.Purge()
	}
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishCashFlowEvent(ctx, event, id); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish change event",
			"event", event,
			applog.FieldCashFlowID, id,
			applog.FieldError, err,
			applog.FieldErrorType, applog.ErrorTypeNetwork)
	}
}

// Close releases the store.
func (s *CashFlowService) Close() error {
	if s.store == nil {
		return nil
	}
	if err := s.store.Close(); err != nil {
		return fmt.Errorf("close cash flow service: %w", err)
	}
	return nil
}
