// Package store defines the port through which cash flows are kept.
package store

import (
	"context"

	"cashflow/internal/core"
)

// Repository is the authoritative collection of cash flows, addressable by id.
// GetAll returns records in insertion order; Update keeps a record's position.
type Repository interface {
	GetAll(ctx context.Context) ([]core.CashFlow, error)
	// FindByID returns core.ErrNotFound when no record has the id.
	FindByID(ctx context.Context, id string) (core.CashFlow, error)
	// Add inserts c. Callers guarantee that c.ID is not already present.
	Add(ctx context.Context, c core.CashFlow) error
	// Update replaces the record with the given id, or returns core.ErrNotFound.
	Update(ctx context.Context, id string, c core.CashFlow) error
	// RemoveByID reports whether a record existed and was removed.
	RemoveByID(ctx context.Context, id string) (bool, error)
	// Clear removes every record.
	Clear(ctx context.Context) error
	Close() error
}
