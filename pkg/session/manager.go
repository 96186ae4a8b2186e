package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"log/slog"

	"github.com/aretw0/pagecraft"
	"github.com/aretw0/pagecraft/internal/logging"
	"github.com/aretw0/pagecraft/pkg/domain"
	"github.com/aretw0/pagecraft/pkg/ports"
)

// DefaultLockTTL bounds how long a distributed lock outlives a crashed holder.
const DefaultLockTTL = 30 * time.Second

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// CommitFunc observes a saved edit. The diff is never nil.
type CommitFunc func(docID string, diff *domain.TreeDiff)

// Manager orchestrates document access, ensuring a single writer per document.
// It uses reference counting to garbage collect unused locks.
type Manager struct {
	store ports.DocumentStore

	mu    sync.Mutex
	locks map[string]*lockEntry

	locker     ports.DistributedLocker
	lockTTL    time.Duration
	logger     *slog.Logger
	engineOpts []pagecraft.Option
	onCommit   []CommitFunc
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL sets the distributed lock expiry.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		m.lockTTL = ttl
	}
}

// WithLogger configures a logger for the Manager and the engines it opens.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithEngineOptions passes options to every engine the Manager opens.
func WithEngineOptions(opts ...pagecraft.Option) Option {
	return func(m *Manager) {
		m.engineOpts = append(m.engineOpts, opts...)
	}
}

// WithCommitHook registers a callback run after an edit changed and saved a document.
func WithCommitHook(fn CommitFunc) Option {
	return func(m *Manager) {
		m.onCommit = append(m.onCommit, fn)
	}
}

// NewManager creates a new document Manager backed by store.
func NewManager(store ports.DocumentStore, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
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
// The caller MUST Lock the entry.mu, and then call release(docID) after unlocking.
func (m *Manager) acquire(docID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[docID]
	if !exists {
		entry = &lockEntry{}
		m.locks[docID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(docID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[docID]
	if !exists {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, docID)
	}
}

// open builds an engine over the stored document. A missing document yields
// an empty engine and exists=false.
func (m *Manager) open(ctx context.Context, docID string) (eng *pagecraft.Engine, exists bool, err error) {
	opts := append([]pagecraft.Option{pagecraft.WithLogger(m.logger), pagecraft.WithName(docID)}, m.engineOpts...)
	eng = pagecraft.New(opts...)

	data, err := m.store.Load(ctx, docID)
	if errors.Is(err, ports.ErrDocumentNotFound) {
		return eng, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load document %s: %w", docID, err)
	}
	if err := eng.Load(data); err != nil {
		return nil, true, fmt.Errorf("decode document %s: %w", docID, err)
	}
	return eng, true, nil
}

// View runs fn on a read-only view of an existing document.
// It returns ports.ErrDocumentNotFound when the document does not exist.
func (m *Manager) View(ctx context.Context, docID string, fn func(*pagecraft.Engine) error) error {
	return m.WithLock(ctx, docID, func(ctx context.Context) error {
		eng, exists, err := m.open(ctx, docID)
		if err != nil {
			return err
		}
		if !exists {
			return ports.ErrDocumentNotFound
		}
		return fn(eng)
	})
}

// Edit loads the document (or starts an empty one), runs fn and saves the
// result. Nothing is saved when fn returns an error. An unchanged existing
// document is only rewritten when it was migrated on load.
func (m *Manager) Edit(ctx context.Context, docID string, fn func(*pagecraft.Engine) error) error {
	return m.edit(ctx, docID, false, fn)
}

func (m *Manager) edit(ctx context.Context, docID string, force bool, fn func(*pagecraft.Engine) error) error {
	if err := ports.ValidateDocumentID(docID); err != nil {
		return err
	}
	var diff *domain.TreeDiff
	err := m.WithLock(ctx, docID, func(ctx context.Context) error {
		eng, exists, err := m.open(ctx, docID)
		if err != nil {
			return err
		}
		before := eng.Tree().List()
		if err := fn(eng); err != nil {
			return err
		}
		diff = domain.Diff(docID, before, eng.Tree().List())
		if diff == nil && exists && !force && !eng.Migrated() {
			return nil
		}

		data, err := eng.Save()
		if err != nil {
			return fmt.Errorf("encode document %s: %w", docID, err)
		}
		if err := m.store.Save(ctx, docID, data); err != nil {
			return fmt.Errorf("save document %s: %w", docID, err)
		}
		return nil
	})
	if err == nil && diff != nil {
		for _, fn := range m.onCommit {
			fn(docID, diff)
		}
	}
	return err
}

// Put replaces the document with data. The bytes are decoded first, so
// malformed nodes are dropped and legacy documents are stored migrated.
func (m *Manager) Put(ctx context.Context, docID string, data []byte) error {
	return m.edit(ctx, docID, true, func(eng *pagecraft.Engine) error {
		return eng.Load(data)
	})
}

// Delete removes the document from the store.
func (m *Manager) Delete(ctx context.Context, docID string) error {
	return m.WithLock(ctx, docID, func(ctx context.Context) error {
		return m.store.Delete(ctx, docID)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying document store.
func (m *Manager) Store() ports.DocumentStore {
	return m.store
}

// WithLock executes a function while holding the lock for the document.
func (m *Manager) WithLock(ctx context.Context, docID string, fn func(context.Context) error) error {
	entry := m.acquire(docID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(docID)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, docID, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"document", docID,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}
