// Package backend assembles the store and optional change-event publisher
// selected by configuration.
package backend

import (
	"context"

	"cashflow/internal/services"
	"cashflow/internal/store"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult contains the opened store, the publisher (nil when AMQP is
// disabled or unreachable) and a cleanup that closes both.
type BackendResult struct {
	Store     store.Repository
	Publisher services.EventPublisher
	Cleanup   CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// SQLite specific
	SQLiteDBPath string

	// Change events, optional for every backend
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}
