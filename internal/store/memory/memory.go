package memory

import (
	"context"
	"sync"

	"cashflow/internal/core"
	"cashflow/internal/store"
)

var _ store.Repository = (*Store)(nil)

// Store keeps cash flows in a slice, preserving insertion order.
type Store struct {
	mu    sync.RWMutex
	items []core.CashFlow
}

func New() *Store {
	return &Store{}
}

// GetAll returns a copy of every record.
func (s *Store) GetAll(_ context.Context) ([]core.CashFlow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.CashFlow, len(s.items))
	copy(out, s.items)
	return out, nil
}

func (s *Store) FindByID(_ context.Context, id string) (core.CashFlow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexOf(id); i >= 0 {
		return s.items[i], nil
	}
	return core.CashFlow{}, core.ErrNotFound
}

func (s *Store) Add(_ context.Context, c core.CashFlow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, c)
	return nil
}

func (s *Store) Update(_ context.Context, id string, c core.CashFlow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return core.ErrNotFound
	}
	s.items[i] = c
	return nil
}

func (s *Store) RemoveByID(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return false, nil
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	return true, nil
}

func (s *Store) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
	return nil
}

func (s *Store) Close() error { return nil }

// Len returns the number of stored records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// indexOf must be called with mu held.
func (s *Store) indexOf(id string) int {
	for i := range s.items {
		if s.items[i].ID == id {
			return i
		}
	}
	return -1
}
