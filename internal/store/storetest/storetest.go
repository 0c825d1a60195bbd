// Package storetest holds behaviour checks shared by every store.Repository
// implementation.
package storetest

import (
	"context"
	"errors"
	"testing"

	"cashflow/internal/core"
	"cashflow/internal/store"

	"github.com/shopspring/decimal"
)

func record(id, amount string) core.CashFlow {
	return core.CashFlow{
		ID:          id,
		Type:        "Pengeluaran",
		Source:      "Cash",
		Label:       "makan, harian",
		Amount:      decimal.RequireFromString(amount),
		Description: "record " + id,
		CreatedAt:   "2024-01-15T08:00:00Z",
		UpdatedAt:   "2024-01-15T08:00:00Z",
	}
}

// Run exercises repo, which must start empty.
func Run(t *testing.T, newRepo func(t *testing.T) store.Repository) {
	t.Run("add and get all keeps insertion order", func(t *testing.T) {
		ctx := context.Background()
		repo := newRepo(t)
		for _, id := range []string{"c", "a", "b"} {
			if err := repo.Add(ctx, record(id, "10")); err != nil {
				t.Fatalf("Add(%s): %v", id, err)
			}
		}
		all, err := repo.GetAll(ctx)
		if err != nil {
			t.Fatalf("GetAll: %v", err)
		}
		if len(all) != 3 || all[0].ID != "c" || all[1].ID != "a" || all[2].ID != "b" {
			t.Fatalf("unexpected order: %+v", all)
		}
		if !all[0].Amount.Equal(decimal.NewFromInt(10)) || all[0].Label != "makan, harian" {
			t.Fatalf("fields not round-tripped: %+v", all[0])
		}
	})

	t.Run("find by id", func(t *testing.T) {
		ctx := context.Background()
		repo := newRepo(t)
		if err := repo.Add(ctx, record("x", "12.75")); err != nil {
			t.Fatalf("Add: %v", err)
		}
		got, err := repo.FindByID(ctx, "x")
		if err != nil {
			t.Fatalf("FindByID: %v", err)
		}
		if got.ID != "x" || !got.Amount.Equal(decimal.RequireFromString("12.75")) {
			t.Fatalf("unexpected record: %+v", got)
		}
		if _, err := repo.FindByID(ctx, "missing"); !errors.Is(err, core.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("update replaces in place", func(t *testing.T) {
		ctx := context.Background()
		repo := newRepo(t)
		for _, id := range []string{"1", "2", "3"} {
			if err := repo.Add(ctx, record(id, "1")); err != nil {
				t.Fatalf("Add: %v", err)
			}
		}
		changed := record("2", "99")
		changed.Description = "changed"
		if err := repo.Update(ctx, "2", changed); err != nil {
			t.Fatalf("Update: %v", err)
		}
		all, _ := repo.GetAll(ctx)
		if all[1].ID != "2" || all[1].Description != "changed" || !all[1].Amount.Equal(decimal.NewFromInt(99)) {
			t.Fatalf("update not applied in place: %+v", all)
		}
		if err := repo.Update(ctx, "missing", changed); !errors.Is(err, core.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
		all, _ = repo.GetAll(ctx)
		if len(all) != 3 {
			t.Fatalf("failed update must not mutate the store: %+v", all)
		}
	})

	t.Run("remove by id", func(t *testing.T) {
		ctx := context.Background()
		repo := newRepo(t)
		_ = repo.Add(ctx, record("1", "1"))
		_ = repo.Add(ctx, record("2", "1"))
		removed, err := repo.RemoveByID(ctx, "1")
		if err != nil || !removed {
			t.Fatalf("RemoveByID existing = %v, %v", removed, err)
		}
		removed, err = repo.RemoveByID(ctx, "1")
		if err != nil || removed {
			t.Fatalf("RemoveByID twice = %v, %v", removed, err)
		}
		if _, err := repo.FindByID(ctx, "1"); !errors.Is(err, core.ErrNotFound) {
			t.Fatalf("removed record still found: %v", err)
		}
		all, _ := repo.GetAll(ctx)
		if len(all) != 1 || all[0].ID != "2" {
			t.Fatalf("unexpected remaining records: %+v", all)
		}
	})

	t.Run("clear", func(t *testing.T) {
		ctx := context.Background()
		repo := newRepo(t)
		_ = repo.Add(ctx, record("1", "1"))
		_ = repo.Add(ctx, record("2", "1"))
		if err := repo.Clear(ctx); err != nil {
			t.Fatalf("Clear: %v", err)
		}
		all, err := repo.GetAll(ctx)
		if err != nil || len(all) != 0 {
			t.Fatalf("store not empty after Clear: %+v, %v", all, err)
		}
		if err := repo.Add(ctx, record("1", "1")); err != nil {
			t.Fatalf("Add after Clear: %v", err)
		}
	})
}
