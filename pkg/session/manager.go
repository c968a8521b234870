package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/workpad/internal/logging"
	"github.com/aretw0/workpad/pkg/domain"
	"github.com/aretw0/workpad/pkg/ports"
)

// DefaultLockTTL bounds how long a distributed lock survives a crashed holder.
const DefaultLockTTL = 30 * time.Second

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager orchestrates workpad access, ensuring safe concurrent edits.
// It uses reference counting to garbage collect unused locks.
type Manager struct {
	store   ports.WorkpadStore
	applier ports.Applier

	mu    sync.Mutex            // Global lock for the map
	locks map[string]*lockEntry // Map of active locks

	locker  ports.DistributedLocker // Optional distributed locker
	lockTTL time.Duration
	logger  *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithLockTTL sets the expiry of distributed locks. Non-positive values are ignored.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.lockTTL = ttl
		}
	}
}

// NewManager creates a Manager over the given store, using applier to run commands.
func NewManager(store ports.WorkpadStore, applier ports.Applier, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		applier: applier,
		locks:   make(map[string]*lockEntry),
		lockTTL: DefaultLockTTL,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(id) after unlocking.
func (m *Manager) acquire(id string) *lockEntry {
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
func (m *Manager) release(id string) {
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

// Create stores a new workpad. It fails with domain.ErrWorkpadExists if the ID is taken.
func (m *Manager) Create(ctx context.Context, wp *domain.Workpad) error {
	if wp == nil || wp.ID == "" {
		return errors.New("workpad id is required")
	}
	return m.WithLock(ctx, wp.ID, func(ctx context.Context) error {
		_, err := m.store.Load(ctx, wp.ID)
		switch {
		case err == nil:
			return fmt.Errorf("%w: %s", domain.ErrWorkpadExists, wp.ID)
		case !errors.Is(err, domain.ErrWorkpadNotFound):
			return fmt.Errorf("failed to check workpad existence: %w", err)
		}

		if err := m.store.Save(ctx, wp); err != nil {
			return fmt.Errorf("failed to create workpad: %w", err)
		}
		m.logger.Debug("Workpad created", "workpad_id", wp.ID, "pages", len(wp.Pages))
		return nil
	})
}

// Load retrieves an existing workpad from the store.
func (m *Manager) Load(ctx context.Context, id string) (*domain.Workpad, error) {
	var wp *domain.Workpad
	err := m.WithLock(ctx, id, func(ctx context.Context) error {
		var err error
		wp, err = m.store.Load(ctx, id)
		return err
	})
	return wp, err
}

// Save persists the workpad, replacing any stored version.
func (m *Manager) Save(ctx context.Context, wp *domain.Workpad) error {
	return m.WithLock(ctx, wp.ID, func(ctx context.Context) error {
		return m.store.Save(ctx, wp)
	})
}

// Delete removes the workpad from the store.
func (m *Manager) Delete(ctx context.Context, id string) error {
	return m.WithLock(ctx, id, func(ctx context.Context) error {
		return m.store.Delete(ctx, id)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying workpad store.
func (m *Manager) Store() ports.WorkpadStore {
	return m.store
}

// Apply runs cmds against the stored workpad as one read-modify-write cycle.
// The result is persisted only when it differs from the loaded snapshot, and
// nothing is persisted when any command fails. The returned diff is nil when
// the commands changed nothing.
func (m *Manager) Apply(ctx context.Context, id string, cmds ...domain.Command) (*domain.Workpad, *domain.WorkpadDiff, error) {
	var (
		result *domain.Workpad
		diff   *domain.WorkpadDiff
	)
	err := m.WithLock(ctx, id, func(ctx context.Context) error {
		current, err := m.store.Load(ctx, id)
		if err != nil {
			return err
		}
		result = current

		next, err := m.applier.ApplyAll(ctx, current, cmds...)
		if err != nil {
			return err
		}
		if next == current {
			m.logger.Debug("Commands left workpad unchanged", "workpad_id", id, "commands", len(cmds))
			return nil
		}

		if err := m.store.Save(ctx, next); err != nil {
			return fmt.Errorf("failed to save workpad: %w", err)
		}
		result = next
		diff = domain.Diff(current, next)
		return nil
	})
	return result, diff, err
}

// WithLock executes a function while holding the lock for the workpad.
func (m *Manager) WithLock(ctx context.Context, id string, fn func(context.Context) error) error {
	entry := m.acquire(id)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(id)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, id, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"workpad_id", id,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}
