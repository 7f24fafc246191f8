package session

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"log/slog"

	"github.com/aretw0/espalier"
	"github.com/aretw0/espalier/internal/logging"
	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/ports"
)

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager orchestrates access to live engines, ensuring each session's
// dispatch stays single-threaded even when many clients address it.
// It uses reference counting to garbage collect unused locks.
type Manager struct {
	store ports.SnapshotStore // optional persistence

	mu      sync.Mutex
	locks   map[string]*lockEntry
	engines map[string]*espalier.Engine

	locker  ports.Locker // optional distributed locker
	lockTTL time.Duration
	logger  *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithStore persists a snapshot after every guarded operation.
func WithStore(store ports.SnapshotStore) Option {
	return func(m *Manager) {
		m.store = store
	}
}

// WithLocker enables distributed locking across replicas.
func WithLocker(locker ports.Locker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLogger configures a logger for internal events (like deferred errors).
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a session manager.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		locks:   make(map[string]*lockEntry),
		engines: make(map[string]*espalier.Engine),
		lockTTL: 30 * time.Second,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(sessionID) after
// unlocking.
func (m *Manager) acquire(sessionID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		entry = &lockEntry{}
		m.locks[sessionID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches
// zero.
func (m *Manager) release(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, sessionID)
	}
}

// Create registers a new session around an engine. The engine should already
// have its root mounted.
func (m *Manager) Create(ctx context.Context, sessionID string, eng *espalier.Engine) error {
	return m.withLock(ctx, sessionID, func(ctx context.Context) error {
		m.mu.Lock()
		_, exists := m.engines[sessionID]
		if !exists {
			m.engines[sessionID] = eng
		}
		m.mu.Unlock()
		if exists {
			return fmt.Errorf("%w: %q", domain.ErrSessionExists, sessionID)
		}

		return m.persist(ctx, sessionID, eng)
	})
}

// With executes fn against the session's engine while holding its lock, then
// persists a fresh snapshot if a store is configured.
func (m *Manager) With(ctx context.Context, sessionID string, fn func(*espalier.Engine) error) error {
	return m.withLock(ctx, sessionID, func(ctx context.Context) error {
		m.mu.Lock()
		eng, ok := m.engines[sessionID]
		m.mu.Unlock()
		if !ok {
			return fmt.Errorf("%w: %q", domain.ErrSessionNotFound, sessionID)
		}

		if err := fn(eng); err != nil {
			return err
		}
		return m.persist(ctx, sessionID, eng)
	})
}

// Snapshot returns the current snapshot of a live session.
func (m *Manager) Snapshot(ctx context.Context, sessionID string) (*domain.TreeSnapshot, error) {
	var snap *domain.TreeSnapshot
	err := m.With(ctx, sessionID, func(eng *espalier.Engine) error {
		snap = eng.Snapshot(sessionID)
		return nil
	})
	return snap, err
}

// Delete removes a session and its persisted snapshot.
func (m *Manager) Delete(ctx context.Context, sessionID string) error {
	return m.withLock(ctx, sessionID, func(ctx context.Context) error {
		m.mu.Lock()
		_, ok := m.engines[sessionID]
		delete(m.engines, sessionID)
		m.mu.Unlock()
		if !ok {
			return fmt.Errorf("%w: %q", domain.ErrSessionNotFound, sessionID)
		}

		if m.store != nil {
			return m.store.Delete(ctx, sessionID)
		}
		return nil
	})
}

// List returns the IDs of live sessions, sorted.
func (m *Manager) List() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.engines))
	for id := range m.engines {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Store returns the underlying snapshot store, if any.
func (m *Manager) Store() ports.SnapshotStore {
	return m.store
}

func (m *Manager) persist(ctx context.Context, sessionID string, eng *espalier.Engine) error {
	if m.store == nil {
		return nil
	}
	return m.store.Save(ctx, sessionID, eng.Snapshot(sessionID))
}

// withLock executes fn while holding the session's local (and, when
// configured, distributed) lock.
func (m *Manager) withLock(ctx context.Context, sessionID string, fn func(context.Context) error) error {
	entry := m.acquire(sessionID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(sessionID)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, sessionID, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("failed to release distributed lock (will expire via TTL)",
					"session_id", sessionID,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}
