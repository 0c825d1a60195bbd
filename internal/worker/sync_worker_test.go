package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"cashflow/internal/amqp"
	"cashflow/internal/core"
	"cashflow/internal/store/memory"
)

type fakeExporter struct {
	calls int
	last  []core.CashFlow
	err   error
}

func (f *fakeExporter) Export(_ context.Context, records []core.CashFlow) (string, error) {
	f.calls++
	f.last = records
	if f.err != nil {
		return "", f.err
	}
	return "CashFlows!A1:H2", nil
}

type failingSource struct{}

func (failingSource) GetAll(context.Context) ([]core.CashFlow, error) {
	return nil, errors.New("database is locked")
}

func seededStore(t *testing.T) *memory.Store {
	t.Helper()
	repo := memory.New()
	err := repo.Add(context.Background(), core.CashFlow{
		ID: "cf-1", Type: "Pemasukan", Source: "Gaji", Label: "kantor",
		Amount: decimal.NewFromInt(5000000), Description: "Gaji Januari",
		CreatedAt: "2024-01-15T08:00:00.000+07:00", UpdatedAt: "2024-01-15T08:00:00.000+07:00",
	})
	if err != nil {
		t.Fatal(err)
	}
	return repo
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestSyncWorker_SyncAll(t *testing.T) {
	exp := &fakeExporter{}
	w := NewSyncWorker(seededStore(t), exp)

	if err := w.SyncAll(context.Background()); err != nil {
		t.Fatalf("SyncAll() error = %v", err)
	}
	if exp.calls != 1 || len(exp.last) != 1 || exp.last[0].ID != "cf-1" {
		t.Errorf("exporter got %d calls, records %+v", exp.calls, exp.last)
	}
}

func TestSyncWorker_SyncAllErrors(t *testing.T) {
	t.Run("source", func(t *testing.T) {
		exp := &fakeExporter{}
		w := NewSyncWorker(failingSource{}, exp)
		if err := w.SyncAll(context.Background()); err == nil {
			t.Fatal("expected error")
		}
		if exp.calls != 0 {
			t.Error("exporter called after read failure")
		}
	})

	t.Run("exporter", func(t *testing.T) {
		w := NewSyncWorker(seededStore(t), &fakeExporter{err: errors.New("quota exceeded")})
		if err := w.SyncAll(context.Background()); err == nil {
			t.Fatal("expected error")
		}
		if !w.lastSynced.IsZero() {
			t.Error("failed sync must not advance lastSynced")
		}
	})
}

func TestSyncWorker_HandleEvent(t *testing.T) {
	syncedAt := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		eventAt   time.Time
		wantCalls int
	}{
		{"older event is covered", syncedAt.Add(-time.Second), 1},
		{"event at sync start is covered", syncedAt, 1},
		{"newer event triggers sync", syncedAt.Add(time.Second), 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exp := &fakeExporter{}
			w := NewSyncWorker(seededStore(t), exp)
			w.now = fixedClock(syncedAt)

			if err := w.SyncAll(context.Background()); err != nil {
				t.Fatal(err)
			}
			event := &amqp.CashFlowEvent{Event: core.EventUpdated, ID: "cf-1", Timestamp: tt.eventAt}
			if err := w.HandleEvent(context.Background(), event); err != nil {
				t.Fatalf("HandleEvent() error = %v", err)
			}
			if exp.calls != tt.wantCalls {
				t.Errorf("exporter calls = %d, want %d", exp.calls, tt.wantCalls)
			}
		})
	}
}

func TestSyncWorker_HandleEventBeforeFirstSync(t *testing.T) {
	exp := &fakeExporter{}
	w := NewSyncWorker(seededStore(t), exp)

	event := amqp.NewCashFlowEvent(core.EventReseeded, "")
	if err := w.HandleEvent(context.Background(), event); err != nil {
		t.Fatal(err)
	}
	if exp.calls != 1 {
		t.Errorf("exporter calls = %d, want 1", exp.calls)
	}
}

func TestSyncWorker_HandleEventPropagatesFailure(t *testing.T) {
	w := NewSyncWorker(seededStore(t), &fakeExporter{err: errors.New("quota exceeded")})
	event := amqp.NewCashFlowEvent(core.EventCreated, "cf-1")
	if err := w.HandleEvent(context.Background(), event); err == nil {
		t.Fatal("expected error so the delivery is requeued")
	}
}

func TestSyncWorker_Run(t *testing.T) {
	exp := &fakeExporter{err: errors.New("quota exceeded")}
	w := NewSyncWorker(seededStore(t), exp)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx, time.Hour) }()

	deadline := time.After(time.Second)
	for {
		w.mu.Lock()
		calls := exp.calls
		w.mu.Unlock()
		if calls > 0 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("startup sync did not run")
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()

	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
}
