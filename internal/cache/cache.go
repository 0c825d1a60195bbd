package cache

import (
	"log/slog"
	"time"

	applog "cashflow/internal/log"
)

// Cache is a keyed store of values that may expire.
type Cache[T any] interface {
	Get(key string) (T, bool)
	// GetOrLoad returns the cached value or loads and stores it.
	GetOrLoad(key string, load func() (T, error)) (T, error)
	Set(key string, data T)
	Delete(key string)
	// Purge drops every entry.
	Purge()
	Size() int
}

// Cleaner is implemented by caches that can drop expired entries on demand.
type Cleaner interface {
	CleanExpired() int
}

type counter interface {
	Stats() (hits, misses uint64)
}

// Manager runs periodic expiry for a set of caches.
type Manager struct {
	caches      []Cleaner
	stopCleanup chan struct{}
	cleanupDone chan struct{}
	started     bool
}

func NewManager() *Manager {
	return &Manager{
		stopCleanup: make(chan struct{}),
		cleanupDone: make(chan struct{}),
	}
}

// Register adds a cache to the cleanup rotation. Call before StartCleanup.
func (m *Manager) Register(c Cleaner) {
	m.caches = append(m.caches, c)
}

// StartCleanup begins periodic cleanup of all registered caches.
func (m *Manager) StartCleanup(interval time.Duration) {
	m.started = true
	go m.cleanup(interval)
}

func (m *Manager) cleanup(interval time.Duration) {
	defer close(m.cleanupDone)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			removed := 0
			for _, c := range m.caches {
				removed += c.CleanExpired()
			}
			if removed > 0 {
				slog.Debug("Cache cleanup completed",
					applog.FieldComponent, applog.ComponentCache,
					applog.FieldCount, removed)
			}
		case <-m.stopCleanup:
			return
		}
	}
}

// Stop ends the cleanup goroutine and waits for it to exit.
func (m *Manager) Stop() {
	if !m.started {
		return
	}
	m.started = false
	close(m.stopCleanup)
	<-m.cleanupDone
}

// Stats sums hits and misses over the registered caches that count them.
func (m *Manager) Stats() (hits, misses uint64) {
	for _, c := range m.caches {
		if sc, ok := c.(counter); ok {
			h, ms := sc.Stats()
			hits += h
			misses += ms
		}
	}
	return hits, misses
}
