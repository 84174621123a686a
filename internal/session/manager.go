package session

import (
	"container/list"
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/utafrali/storefront/internal/repository"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// MaxSessionIDLength bounds X-Session-ID values.
const MaxSessionIDLength = 64

// Defaults applied to zero Limits fields.
const (
	DefaultMaxOpen     = 10000
	DefaultIdleTimeout = 30 * time.Minute
)

// Limits bound the stores a Manager keeps in memory. Zero fields select the
// defaults; a negative IdleTimeout disables idle eviction.
type Limits struct {
	MaxOpen     int
	IdleTimeout time.Duration
}

func (l Limits) withDefaults() Limits {
	if l.MaxOpen <= 0 {
		l.MaxOpen = DefaultMaxOpen
	}
	if l.IdleTimeout == 0 {
		l.IdleTimeout = DefaultIdleTimeout
	}
	return l
}

type entry struct {
	id       string
	store    *Store
	unsubs   []func()
	lastUsed time.Time
}

// Manager hands out one Store per session id so each session's persisted
// state has exactly one writer in this process. Stores are kept in
// least-recently-used order; the oldest are dropped once MaxOpen is exceeded
// or after IdleTimeout without use. A dropped session is reloaded from
// storage on its next Get.
type Manager struct {
	kv      repository.KeyValueStore
	logger  *slog.Logger
	metrics *Metrics
	limits  Limits
	now     func() time.Time
	loads   singleflight.Group

	mu        sync.Mutex
	stores    map[string]*list.Element
	lru       *list.List
	observers []Observer
}

// NewManager creates a Manager backed by kv. metrics may be nil.
func NewManager(kv repository.KeyValueStore, logger *slog.Logger, metrics *Metrics, limits Limits) *Manager {
	return &Manager{
		kv:      kv,
		logger:  logger,
		metrics: metrics,
		limits:  limits.withDefaults(),
		now:     time.Now,
		stores:  make(map[string]*list.Element),
		lru:     list.New(),
	}
}

// ValidateID accepts "" (the default session) or 1 to MaxSessionIDLength
// characters drawn from letters, digits, '-' and '_'.
func ValidateID(id string) error {
	if len(id) > MaxSessionIDLength {
		return apperrors.InvalidInput("session id is too long")
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return apperrors.InvalidInput("session id may only contain letters, digits, '-' and '_'")
		}
	}
	return nil
}

// Subscribe registers o on every store, current and future.
func (m *Manager) Subscribe(o Observer) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.observers = append(m.observers, o)
	for el := m.lru.Front(); el != nil; el = el.Next() {
		e := el.Value.(*entry)
		e.unsubs = append(e.unsubs, e.store.Subscribe(o))
	}
}

// Get returns the store for sessionID, opening and loading it on first use.
// Loads run outside the manager lock and concurrent loads of one id share a
// single read from storage.
func (m *Manager) Get(ctx context.Context, sessionID string) (*Store, error) {
	if err := ValidateID(sessionID); err != nil {
		return nil, err
	}
	if s, ok := m.lookup(sessionID); ok {
		return s, nil
	}

	v, _, _ := m.loads.Do(sessionID, func() (any, error) {
		if s, ok := m.lookup(sessionID); ok {
			return s, nil
		}
		// A cancelled request must not cache a session as empty.
		s := Open(context.WithoutCancel(ctx), m.kv, Options{
			SessionID: sessionID,
			Logger:    m.logger,
			Metrics:   m.metrics,
		})
		return m.insert(ctx, s), nil
	})
	return v.(*Store), nil
}

func (m *Manager) lookup(sessionID string) (*Store, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.expireLocked()
	el, ok := m.stores[sessionID]
	if !ok {
		return nil, false
	}
	e := el.Value.(*entry)
	e.lastUsed = m.now()
	m.lru.MoveToFront(el)
	return e.store, true
}

func (m *Manager) insert(ctx context.Context, s *Store) *Store {
	m.mu.Lock()
	defer m.mu.Unlock()

	if el, ok := m.stores[s.id]; ok {
		return el.Value.(*entry).store
	}

	e := &entry{id: s.id, store: s, lastUsed: m.now()}
	for _, o := range m.observers {
		e.unsubs = append(e.unsubs, s.Subscribe(o))
	}
	m.stores[s.id] = m.lru.PushFront(e)
	m.metrics.sessionOpened()

	m.logger.DebugContext(ctx, "session opened",
		slog.String("session_id", s.id),
		slog.Int("cart_lines", len(s.cart)),
		slog.Int("wishlist_entries", len(s.wishlist)),
	)

	for m.lru.Len() > m.limits.MaxOpen {
		m.removeLocked(m.lru.Back(), "capacity")
	}
	return s
}

// expireLocked drops stores idle for longer than IdleTimeout. Callers hold m.mu.
func (m *Manager) expireLocked() {
	if m.limits.IdleTimeout < 0 {
		return
	}
	cutoff := m.now().Add(-m.limits.IdleTimeout)
	for el := m.lru.Back(); el != nil; el = m.lru.Back() {
		if el.Value.(*entry).lastUsed.After(cutoff) {
			return
		}
		m.removeLocked(el, "idle")
	}
}

func (m *Manager) removeLocked(el *list.Element, reason string) {
	e := m.lru.Remove(el).(*entry)
	delete(m.stores, e.id)
	for _, unsubscribe := range e.unsubs {
		unsubscribe()
	}
	m.metrics.sessionClosed()

	m.logger.Debug("session closed",
		slog.String("session_id", e.id),
		slog.String("reason", reason),
	)
}

// Evict drops the in-memory store for sessionID. Persisted state is kept and
// reloaded on the next Get.
func (m *Manager) Evict(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if el, ok := m.stores[sessionID]; ok {
		m.removeLocked(el, "evicted")
	}
}

// Len returns the number of open stores.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.stores)
}

// Ping checks the underlying storage.
func (m *Manager) Ping(ctx context.Context) error {
	return m.kv.Ping(ctx)
}
