// Package cache holds the in-process caches used by the HTTP layer.
package cache

import (
	"log/slog"
	"sync"
	"time"
)

// Cache is the interface the HTTP layer depends on.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, data T)
	Delete(key string)
	Size() int
}

// Cleaner is a cache that can drop its expired entries.
type Cleaner interface {
	CleanExpired() int
}

// Manager periodically cleans registered caches.
type Manager struct {
	mu          sync.Mutex
	caches      []Cleaner
	logger      *slog.Logger
	stopCleanup chan struct{}
	cleanupDone chan struct{}
	started     bool
	stopOnce    sync.Once
}

func NewManager(logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		logger:      logger,
		stopCleanup: make(chan struct{}),
		cleanupDone: make(chan struct{}),
	}
}

func (m *Manager) Register(c Cleaner) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.caches = append(m.caches, c)
}

// StartCleanup begins periodic cleanup of all registered caches.
func (m *Manager) StartCleanup(interval time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.started {
		return
	}
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
			if n := m.CleanNow(); n > 0 {
				m.logger.Debug("Cache cleanup completed", "entries_removed", n)
			}
		case <-m.stopCleanup:
			return
		}
	}
}

// CleanNow cleans every registered cache once and returns the number of
// entries removed.
func (m *Manager) CleanNow() int {
	m.mu.Lock()
	caches := append([]Cleaner(nil), m.caches...)
	m.mu.Unlock()

	total := 0
	for _, c := range caches {
		total += c.CleanExpired()
	}
	return total
}

// Stop ends the cleanup routine and waits for it to exit. It is safe to
// call more than once and before StartCleanup.
func (m *Manager) Stop() {
	m.stopOnce.Do(func() {
		close(m.stopCleanup)
		m.mu.Lock()
		started := m.started
		m.mu.Unlock()
		if started {
			<-m.cleanupDone
		}
	})
}
