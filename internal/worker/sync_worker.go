package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"cashflow/internal/amqp"
	"cashflow/internal/core"
	applog "cashflow/internal/log"
	"cashflow/internal/sheets"
)

// Source is the read side of the cash flow store.
type Source interface {
	GetAll(ctx context.Context) ([]core.CashFlow, error)
}

// SyncWorker mirrors the store into a spreadsheet. Every sync rewrites the
// whole sheet from the current store contents, so events only signal that
// a sync is due.
type SyncWorker struct {
	source   Source
	exporter sheets.Exporter
	logger   *slog.Logger

	mu         sync.Mutex
	lastSynced time.Time
	now        func() time.Time
}

func NewSyncWorker(source Source, exporter sheets.Exporter) *SyncWorker {
	return &SyncWorker{
		source:   source,
		exporter: exporter,
		logger:   slog.Default().With(applog.FieldComponent, applog.ComponentSheets),
		now:      time.Now,
	}
}

// HandleEvent syncs for a change event. Events published before the start
// of the last successful sync are already reflected and are skipped.
func (w *SyncWorker) HandleEvent(ctx context.Context, event *amqp.CashFlowEvent) error {
	w.mu.Lock()
	covered := !w.lastSynced.IsZero() && !event.Timestamp.After(w.lastSynced)
	w.mu.Unlock()

	if covered {
		w.logger.DebugContext(ctx, "Event already covered by last sync",
			"event", event.Event,
			applog.FieldCashFlowID, event.ID)
		return nil
	}

	w.logger.InfoContext(ctx, "Processing change event",
		"event", event.Event,
		applog.FieldCashFlowID, event.ID)
	return w.SyncAll(ctx)
}

// SyncAll exports every record in store order.
func (w *SyncWorker) SyncAll(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	started := w.now()
	records, err := w.source.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("read cash flows: %w", err)
	}

	rng, err := w.exporter.Export(ctx, records)
	if err != nil {
		return fmt.Errorf("export cash flows to sheets: %w", err)
	}

	w.lastSynced = started
	w.logger.InfoContext(ctx, "Synced cash flows to Google Sheets",
		"range", rng,
		applog.FieldCount, len(records),
		applog.FieldDuration, w.now().Sub(started).Milliseconds())
	return nil
}

// Run syncs once at start and then every interval until ctx is done. A
// failed sync is logged and retried on the next tick.
func (w *SyncWorker) Run(ctx context.Context, interval time.Duration) error {
	if err := w.SyncAll(ctx); err != nil {
		w.logger.ErrorContext(ctx, "Startup sync failed", applog.FieldError, err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.SyncAll(ctx); err != nil {
				w.logger.ErrorContext(ctx, "Periodic sync failed", applog.FieldError, err)
			}
		}
	}
}
