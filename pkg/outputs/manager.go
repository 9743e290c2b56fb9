package outputs

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/printdesk/internal/logging"
	"github.com/aretw0/printdesk/pkg/domain"
	"github.com/aretw0/printdesk/pkg/ports"
)

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager orchestrates output access, ensuring safe concurrent updates.
// It uses Reference Counting to garbage collect unused locks.
type Manager struct {
	store ports.OutputStore

	mu    sync.Mutex            // Global lock for the map
	locks map[int64]*lockEntry // Map of active locks

	locker  ports.DistributedLocker // Optional distributed locker
	lockTTL time.Duration
	logger  *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking of the cleanup job.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL sets how long the cleanup lock is held before it expires on its own.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		m.lockTTL = ttl
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a new output Manager over the given store.
func NewManager(store ports.OutputStore, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		locks:   make(map[int64]*lockEntry),
		lockTTL: 5 * time.Minute,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
func (m *Manager) acquire(id int64) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[id]
	if !exists {
		entry = &lockEntry{}
		m.locks[id] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(id int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[id]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, id)
	}
}

// Create stores a new output record.
func (m *Manager) Create(ctx context.Context, o *domain.DataOutput) error {
	return m.store.Create(ctx, o)
}

// Get loads an output record.
func (m *Manager) Get(ctx context.Context, id int64) (*domain.DataOutput, error) {
	var out *domain.DataOutput
	err := m.withLock(id, func() error {
		var err error
		out, err = m.store.Get(ctx, id)
		return err
	})
	return out, err
}

// Update applies fn to the stored record and persists the result atomically with
// respect to other updates of the same output.
func (m *Manager) Update(ctx context.Context, id int64, fn func(*domain.DataOutput) error) (*domain.DataOutput, error) {
	var out *domain.DataOutput
	err := m.withLock(id, func() error {
		current, err := m.store.Get(ctx, id)
		if err != nil {
			return err
		}
		if err := fn(current); err != nil {
			return err
		}
		if err := m.store.Update(ctx, current); err != nil {
			return fmt.Errorf("failed to update output %d: %w", id, err)
		}
		out = current
		return nil
	})
	return out, err
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]domain.DataOutput, error) {
	return m.store.List(ctx)
}

// Store returns the underlying output store.
func (m *Manager) Store() ports.OutputStore {
	return m.store
}

// Prune removes outputs created before the cut-off. When a distributed locker is
// configured only one replica prunes at a time.
func (m *Manager) Prune(ctx context.Context, before time.Time) ([]domain.DataOutput, error) {
	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, "outputs:cleanup", m.lockTTL)
		if err != nil {
			return nil, fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"key", "outputs:cleanup",
					"err", err,
				)
			}
		}()
	}
	return m.store.Prune(ctx, before)
}

func (m *Manager) withLock(id int64, fn func() error) error {
	entry := m.acquire(id)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(id)
	}()
	return fn()
}
