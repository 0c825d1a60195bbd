package services

import (
	"context"
	"errors"
	"net/url"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"cashflow/internal/cache"
	"cashflow/internal/core"
	"cashflow/internal/filter"
	"cashflow/internal/store/memory"
)

type fakeSeeds struct {
	records []core.CashFlow
	err     error
}

func (f fakeSeeds) Load() ([]core.CashFlow, string, error) {
	if f.err != nil {
		return nil, "", f.err
	}
	return f.records, "test", nil
}

type publishedEvent struct{ event, id string }

type fakePublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
}

func (f *fakePublisher) PublishCashFlowEvent(_ context.Context, event, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, publishedEvent{event, id})
	return f.err
}

func seedRecords() []core.CashFlow {
	return []core.CashFlow{
		{ID: "a", Type: "Pemasukan", Source: "Gaji", Label: "kantor,bulanan", Amount: decimal.NewFromInt(5000000), Description: "Gaji Januari", CreatedAt: "2024-01-05T08:00:00.000Z", UpdatedAt: "2024-01-05T08:00:00.000Z"},
		{ID: "b", Type: "Pengeluaran", Source: "Belanja", Label: "rumah", Amount: decimal.NewFromInt(250000), Description: "Belanja bulanan", CreatedAt: "2024-01-10T10:00:00.000Z", UpdatedAt: "2024-01-10T10:00:00.000Z"},
	}
}

func validDraft() core.Draft {
	return core.Draft{Type: "Pemasukan", Source: "Bonus", Label: "kantor", Amount: "1500", Description: "Bonus proyek"}
}

func newTestService(t *testing.T, opts ...Option) (*CashFlowService, *memory.Store) {
	t.Helper()
	repo := memory.New()
	svc := NewCashFlowService(repo, fakeSeeds{records: seedRecords()}, opts...)
	if _, err := svc.Reseed(context.Background()); err != nil {
		t.Fatalf("Reseed() error = %v", err)
	}
	return svc, repo
}

func TestCashFlowService_Reseed(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, validDraft()); err != nil {
		t.Fatal(err)
	}
	n, err := svc.Reseed(ctx)
	if err != nil {
		t.Fatalf("Reseed() error = %v", err)
	}
	if n != 2 || repo.Len() != 2 {
		t.Errorf("after reseed: loaded %d, store has %d, want 2", n, repo.Len())
	}
}

func TestCashFlowService_ReseedSeedFailureLeavesStoreEmpty(t *testing.T) {
	repo := memory.New()
	svc := NewCashFlowService(repo, fakeSeeds{records: seedRecords()})
	ctx := context.Background()
	if _, err := svc.Reseed(ctx); err != nil {
		t.Fatal(err)
	}

	svc.seeds = fakeSeeds{err: &core.SeedLoadError{Source: "broken.json", Err: errors.New("unexpected EOF")}}
	n, err := svc.Reseed(ctx)
	if err != nil {
		t.Fatalf("Reseed() should not fail on seed errors, got %v", err)
	}
	if n != 0 || repo.Len() != 0 {
		t.Errorf("store should be empty, got %d records", repo.Len())
	}
}

func TestCashFlowService_CreateAndGet(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	id, err := svc.Create(ctx, validDraft())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	got, err := svc.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Source != "Bonus" || !got.Amount.Equal(decimal.NewFromInt(1500)) {
		t.Errorf("unexpected record %+v", got)
	}
	if got.CreatedAt == "" || got.CreatedAt != got.UpdatedAt {
		t.Errorf("timestamps not initialised: %q / %q", got.CreatedAt, got.UpdatedAt)
	}
}

func TestCashFlowService_CreateValidation(t *testing.T) {
	svc, repo := newTestService(t)

	_, err := svc.Create(context.Background(), core.Draft{Amount: "-5"})
	var verr core.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Create() error = %v, want ValidationError", err)
	}
	want := core.ValidationError{
		core.FieldType:        core.MsgRequired,
		core.FieldSource:      core.MsgRequired,
		core.FieldLabel:       core.MsgRequired,
		core.FieldAmount:      core.MsgAmountPositive,
		core.FieldDescription: core.MsgRequired,
	}
	if !reflect.DeepEqual(verr, want) {
		t.Errorf("ValidationError = %v, want %v", verr, want)
	}
	if repo.Len() != 2 {
		t.Errorf("store changed on invalid create: %d records", repo.Len())
	}
}

func TestCashFlowService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("replaces fields and keeps identity", func(t *testing.T) {
		svc, _ := newTestService(t)
		before, _ := svc.Get(ctx, "a")

		if err := svc.Update(ctx, "a", validDraft()); err != nil {
			t.Fatalf("Update() error = %v", err)
		}
		after, _ := svc.Get(ctx, "a")
		if after.ID != "a" || after.CreatedAt != before.CreatedAt {
			t.Errorf("identity changed: %+v", after)
		}
		if after.UpdatedAt == before.UpdatedAt {
			t.Error("updatedAt not refreshed")
		}
		if after.Description != "Bonus proyek" {
			t.Errorf("Description = %q", after.Description)
		}
	})

	t.Run("missing id wins over invalid body", func(t *testing.T) {
		svc, _ := newTestService(t)
		err := svc.Update(ctx, "nope", core.Draft{})
		if !errors.Is(err, core.ErrNotFound) {
			t.Errorf("Update() error = %v, want ErrNotFound", err)
		}
	})

	t.Run("invalid body on existing id", func(t *testing.T) {
		svc, _ := newTestService(t)
		err := svc.Update(ctx, "a", core.Draft{})
		var verr core.ValidationError
		if !errors.As(err, &verr) {
			t.Errorf("Update() error = %v, want ValidationError", err)
		}
	})
}

func TestCashFlowService_Delete(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	if err := svc.Delete(ctx, "a"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if repo.Len() != 1 {
		t.Errorf("store has %d records, want 1", repo.Len())
	}
	if err := svc.Delete(ctx, "a"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("second Delete() error = %v, want ErrNotFound", err)
	}
}

func TestCashFlowService_List(t *testing.T) {
	svc, _ := newTestService(t)

	q, err := filter.ParseQuery(url.Values{"type": {"pengeluaran"}})
	if err != nil {
		t.Fatal(err)
	}
	got, err := svc.List(context.Background(), q)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(got) != 1 || got[0].ID != "b" {
		t.Errorf("List() = %+v, want only b", got)
	}
}

func TestCashFlowService_MetadataCacheInvalidatedOnWrite(t *testing.T) {
	metadata := cache.NewLRUCache[[]string](8, time.Minute)
	svc, _ := newTestService(t, WithMetadataCache(metadata))
	ctx := context.Background()

	types, err := svc.Types(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(types, []string{"Pemasukan", "Pengeluaran"}) {
		t.Errorf("Types() = %v", types)
	}
	if metadata.Size() != 1 {
		t.Errorf("cache size = %d, want 1", metadata.Size())
	}

	d := validDraft()
	d.Type = "Investasi"
	if _, err := svc.Create(ctx, d); err != nil {
		t.Fatal(err)
	}
	if metadata.Size() != 0 {
		t.Errorf("cache not purged after create")
	}

	types, _ = svc.Types(ctx)
	if !reflect.DeepEqual(types, []string{"Pemasukan", "Pengeluaran", "Investasi"}) {
		t.Errorf("Types() after create = %v", types)
	}

	sources, _ := svc.Sources(ctx)
	if !reflect.DeepEqual(sources, []string{"Gaji", "Belanja", "Bonus"}) {
		t.Errorf("Sources() = %v", sources)
	}
	labels, _ := svc.Labels(ctx)
	if !reflect.DeepEqual(labels, []string{"kantor", "bulanan", "rumah"}) {
		t.Errorf("Labels() = %v", labels)
	}
}

func TestCashFlowService_PublishesEvents(t *testing.T) {
	pub := &fakePublisher{}
	svc, _ := newTestService(t, WithPublisher(pub))
	ctx := context.Background()

	id, err := svc.Create(ctx, validDraft())
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.Update(ctx, id, validDraft()); err != nil {
		t.Fatal(err)
	}
	if err := svc.Delete(ctx, id); err != nil {
		t.Fatal(err)
	}

	want := []publishedEvent{
		{core.EventReseeded, ""},
		{core.EventCreated, id},
		{core.EventUpdated, id},
		{core.EventDeleted, id},
	}
	if !reflect.DeepEqual(pub.events, want) {
		t.Errorf("events = %v, want %v", pub.events, want)
	}
}

func TestCashFlowService_PublishFailureDoesNotFailWrite(t *testing.T) {
	pub := &fakePublisher{err: errors.New("connection refused")}
	svc, repo := newTestService(t, WithPublisher(pub))

	if _, err := svc.Create(context.Background(), validDraft()); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if repo.Len() != 3 {
		t.Errorf("store has %d records, want 3", repo.Len())
	}
}

func TestCashFlowService_Close(t *testing.T) {
	svc := NewCashFlowService(nil, nil)
	if err := svc.Close(); err != nil {
		t.Fatalf("Close should not return error with nil components: %v", err)
	}
}
