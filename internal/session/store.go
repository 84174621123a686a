// Package session holds a shopper's cart and wishlist in memory and writes
// every change through to a repository.KeyValueStore.
package session

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/repository"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

const (
	collectionCart     = "cart"
	collectionWishlist = "wishlist"
)

// ChangeKind identifies the mutation that produced a Change.
type ChangeKind string

const (
	ChangeCartAdd        ChangeKind = "cart_add"
	ChangeCartRemove     ChangeKind = "cart_remove"
	ChangeCartQuantity   ChangeKind = "cart_quantity"
	ChangeCartClear      ChangeKind = "cart_clear"
	ChangeCartCheckout   ChangeKind = "cart_checkout"
	ChangeWishlistAdd    ChangeKind = "wishlist_add"
	ChangeWishlistRemove ChangeKind = "wishlist_remove"
)

// Collection returns "cart" or "wishlist".
func (k ChangeKind) Collection() string {
	switch k {
	case ChangeWishlistAdd, ChangeWishlistRemove:
		return collectionWishlist
	default:
		return collectionCart
	}
}

// Change describes one completed mutation.
type Change struct {
	SessionID string
	Kind      ChangeKind
	ProductID domain.ProductID
	Version   uint64
	State     domain.SessionState
}

// Observer is called after each completed mutation, in mutation order.
// Observers run while the store is locked and must not call back into it.
type Observer func(ctx context.Context, c Change)

// Keys are the storage keys for one session's collections.
type Keys struct {
	Cart     string
	Wishlist string
}

// KeysFor returns the storage keys for sessionID. The default (empty)
// session uses the bare "cart" and "wishlist" keys.
func KeysFor(sessionID string) Keys {
	if sessionID == "" {
		return Keys{Cart: collectionCart, Wishlist: collectionWishlist}
	}
	prefix := "session:" + sessionID + ":"
	return Keys{Cart: prefix + collectionCart, Wishlist: prefix + collectionWishlist}
}

// Options configure a Store.
type Options struct {
	SessionID string
	Logger    *slog.Logger
	Metrics   *Metrics
}

// Store owns one session's cart and wishlist. All methods are safe for
// concurrent use; mutations are serialized and each one is persisted before
// it returns.
type Store struct {
	mu       sync.Mutex
	kv       repository.KeyValueStore
	id       string
	keys     Keys
	logger   *slog.Logger
	metrics  *Metrics
	cart     []domain.CartLine
	wishlist []domain.Product
	version  uint64

	obsMu     sync.RWMutex
	observers map[int]Observer
	nextObs   int
}

// Open builds a Store and loads any persisted state. Missing keys, storage
// errors and undecodable values all yield empty collections; only the last
// two are logged.
func Open(ctx context.Context, kv repository.KeyValueStore, opts Options) *Store {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{
		kv:        kv,
		id:        opts.SessionID,
		keys:      KeysFor(opts.SessionID),
		logger:    logger.With(slog.String("component", "session")),
		metrics:   opts.Metrics,
		cart:      []domain.CartLine{},
		wishlist:  []domain.Product{},
		observers: make(map[int]Observer),
	}

	if data, ok := s.load(ctx, s.keys.Cart); ok {
		if lines, err := decodeCart(data); err != nil {
			s.logger.WarnContext(ctx, "discarding undecodable cart",
				slog.String("key", s.keys.Cart),
				slog.String("error", err.Error()),
			)
		} else {
			s.cart = lines
		}
	}
	if data, ok := s.load(ctx, s.keys.Wishlist); ok {
		if products, err := decodeWishlist(data); err != nil {
			s.logger.WarnContext(ctx, "discarding undecodable wishlist",
				slog.String("key", s.keys.Wishlist),
				slog.String("error", err.Error()),
			)
		} else {
			s.wishlist = products
		}
	}
	return s
}

func (s *Store) load(ctx context.Context, key string) ([]byte, bool) {
	data, err := s.kv.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.logger.WarnContext(ctx, "failed to load session state",
				slog.String("key", key),
				slog.String("error", err.Error()),
			)
		}
		return nil, false
	}
	return data, true
}

// ID returns the session id ("" for the default session).
func (s *Store) ID() string { return s.id }

// AddToCart increments the line for product or appends it with quantity 1.
func (s *Store) AddToCart(ctx context.Context, product domain.Product) error {
	if product.ID == "" {
		return apperrors.InvalidInput("product id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if idx := domain.FindLine(s.cart, product.ID); idx >= 0 {
		s.cart[idx].Quantity++
	} else {
		s.cart = append(s.cart, domain.CartLine{Product: product, Quantity: 1})
	}
	return s.commit(ctx, ChangeCartAdd, product.ID)
}

// RemoveFromCart deletes the line for id. Unknown ids are a no-op.
func (s *Store) RemoveFromCart(ctx context.Context, id domain.ProductID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := domain.FindLine(s.cart, id)
	if idx < 0 {
		return nil
	}
	s.cart = slices.Delete(s.cart, idx, idx+1)
	return s.commit(ctx, ChangeCartRemove, id)
}

// UpdateQuantity adds delta to the line's quantity, never going below 1.
// Unknown ids are a no-op.
func (s *Store) UpdateQuantity(ctx context.Context, id domain.ProductID, delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := domain.FindLine(s.cart, id)
	if idx < 0 {
		return nil
	}
	s.cart[idx].Quantity = max(1, s.cart[idx].Quantity+delta)
	return s.commit(ctx, ChangeCartQuantity, id)
}

// ClearCart removes every line.
func (s *Store) ClearCart(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cart = []domain.CartLine{}
	return s.commit(ctx, ChangeCartClear, "")
}

// RemoveOrdered takes the ordered quantities out of the cart. Lines whose
// remaining quantity drops to zero are removed; units added after the order
// was taken stay in the cart. Nothing is committed when no line matches.
func (s *Store) RemoveOrdered(ctx context.Context, ordered []domain.CartLine) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := false
	for _, o := range ordered {
		idx := domain.FindLine(s.cart, o.Product.ID)
		if idx < 0 {
			continue
		}
		changed = true
		if s.cart[idx].Quantity > o.Quantity {
			s.cart[idx].Quantity -= o.Quantity
			continue
		}
		s.cart = slices.Delete(s.cart, idx, idx+1)
	}
	if !changed {
		return nil
	}
	return s.commit(ctx, ChangeCartCheckout, "")
}

// ToggleWishlist removes product from the wishlist if present, otherwise
// appends it. added reports which happened.
func (s *Store) ToggleWishlist(ctx context.Context, product domain.Product) (added bool, err error) {
	if product.ID == "" {
		return false, apperrors.InvalidInput("product id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	kind := ChangeWishlistAdd
	if idx := domain.FindProduct(s.wishlist, product.ID); idx >= 0 {
		s.wishlist = slices.Delete(s.wishlist, idx, idx+1)
		kind = ChangeWishlistRemove
	} else {
		s.wishlist = append(s.wishlist, product)
		added = true
	}
	return added, s.commit(ctx, kind, product.ID)
}

// CartCount returns the total number of units in the cart.
func (s *Store) CartCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.CartCount(s.cart)
}

// CartSubtotal returns Σ price × quantity over the cart.
func (s *Store) CartSubtotal() domain.Money {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.CartSubtotal(s.cart)
}

// Cart returns a copy of the cart lines in insertion order.
func (s *Store) Cart() []domain.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.cart)
}

// Wishlist returns a copy of the wishlist in insertion order.
func (s *Store) Wishlist() []domain.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.wishlist)
}

// Snapshot returns a consistent copy of both collections.
func (s *Store) Snapshot() domain.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// SnapshotVersion returns a snapshot together with the version it reflects.
func (s *Store) SnapshotVersion() (domain.SessionState, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked(), s.version
}

// InWishlist reports whether id is in the wishlist.
func (s *Store) InWishlist(id domain.ProductID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.FindProduct(s.wishlist, id) >= 0
}

// InCart reports whether id has a cart line.
func (s *Store) InCart(id domain.ProductID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.FindLine(s.cart, id) >= 0
}

// Version increases by one on every completed mutation.
func (s *Store) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// Subscribe registers o and returns a function that removes it.
func (s *Store) Subscribe(o Observer) (unsubscribe func()) {
	s.obsMu.Lock()
	defer s.obsMu.Unlock()

	id := s.nextObs
	s.nextObs++
	s.observers[id] = o
	return func() {
		s.obsMu.Lock()
		defer s.obsMu.Unlock()
		delete(s.observers, id)
	}
}

func (s *Store) snapshotLocked() domain.SessionState {
	return domain.SessionState{
		Cart:     slices.Clone(s.cart),
		Wishlist: slices.Clone(s.wishlist),
	}
}

// commit persists the collection touched by kind, bumps the version and
// notifies observers. Callers hold s.mu.
func (s *Store) commit(ctx context.Context, kind ChangeKind, id domain.ProductID) error {
	s.version++
	s.metrics.mutation(kind)

	err := s.persistLocked(ctx, kind.Collection())

	change := Change{
		SessionID: s.id,
		Kind:      kind,
		ProductID: id,
		Version:   s.version,
		State:     s.snapshotLocked(),
	}
	s.obsMu.RLock()
	observers := make([]Observer, 0, len(s.observers))
	for i := 0; i < s.nextObs; i++ {
		if o, ok := s.observers[i]; ok {
			observers = append(observers, o)
		}
	}
	s.obsMu.RUnlock()
	for _, o := range observers {
		o(ctx, change)
	}
	return err
}

func (s *Store) persistLocked(ctx context.Context, collection string) error {
	var (
		key  string
		data []byte
		err  error
	)
	if collection == collectionWishlist {
		key = s.keys.Wishlist
		data, err = encodeWishlist(s.wishlist)
	} else {
		key = s.keys.Cart
		data, err = encodeCart(s.cart)
	}
	if err == nil {
		err = s.kv.Set(ctx, key, data)
	}
	if err == nil {
		return nil
	}

	s.metrics.persistFailure(collection)
	s.logger.WarnContext(ctx, "failed to persist session state",
		slog.String("key", key),
		slog.String("error", err.Error()),
	)
	return &PersistError{Collection: collection, Key: key, Err: err}
}
