// Package cart keeps the storefront cart in memory and mirrors it to the API
// with optimistic updates and explicit reconciliation.
package cart

import (
	"context"
	"errors"
	"sync"
	"time"

	"medcart/models"
	"medcart/storefront/debounce"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultSyncDelay = 500 * time.Millisecond
	syncTimeout      = 15 * time.Second
)

var (
	ErrItemNotFound = errors.New("cart item not found")
	ErrItemPending  = errors.New("cart item is still being added")
)

type API interface {
	Cart(ctx context.Context) ([]models.CartItem, error)
	AddToCart(ctx context.Context, req models.AddToCartRequest) (*models.CartItem, error)
	UpdateCartItem(ctx context.Context, id string, quantity int) (*models.CartItem, error)
	RemoveCartItem(ctx context.Context, id string) error
	ClearCart(ctx context.Context) error
}

// AddRequest identifies the catalog item to add. Snapshot, when set, is shown
// on the placeholder line until the server copy arrives.
type AddRequest struct {
	ProductID  *string
	MedicineID *string
	Quantity   int
	Snapshot   *models.ItemSnapshot
}

type Store struct {
	api      API
	log      *zap.Logger
	clock    clock.Clock
	debounce *debounce.Group
	refetch  singleflight.Group

	mu      sync.Mutex
	items   []models.CartItem
	lastSeq uint64
	seq     map[string]uint64
	pending map[string]int
	writers map[string]*sync.Mutex
	adding  map[string]bool
	syncErr []error
	nextSub int
	subs    map[int]chan []models.CartItem

	// fetchGen numbers cart fetches in the order they start; appliedGen is
	// the newest one applied. An older snapshot never replaces a newer one.
	fetchGen   uint64
	appliedGen uint64
}

type Option func(*Store)

func WithClock(clk clock.Clock) Option {
	return func(s *Store) { s.clock = clk }
}

func WithLogger(log *zap.Logger) Option {
	return func(s *Store) { s.log = log }
}

func New(api API, opts ...Option) *Store {
	s := &Store{
		api:     api,
		log:     zap.NewNop(),
		clock:   clock.New(),
		seq:     make(map[string]uint64),
		pending: make(map[string]int),
		writers: make(map[string]*sync.Mutex),
		adding:  make(map[string]bool),
		subs:    make(map[int]chan []models.CartItem),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.debounce = debounce.NewGroup(s.clock, DefaultSyncDelay)
	return s
}

// Load replaces local state with the server cart. Concurrent loads share
// one request.
func (s *Store) Load(ctx context.Context) error {
	v, err, _ := s.refetch.Do("cart", func() (interface{}, error) {
		return s.fetch(ctx)
	})
	if err != nil {
		return err
	}
	s.apply(v.(snapshot))
	return nil
}

func (s *Store) Items() []models.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clone(s.items)
}

// Subscribe returns a channel holding the latest snapshot after each change.
func (s *Store) Subscribe() (<-chan []models.CartItem, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSub
	s.nextSub++
	ch := make(chan []models.CartItem, 1)
	s.subs[id] = ch

	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if _, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(ch)
		}
	}
}

// dispatch must be called with s.mu held.
func (s *Store) dispatch(cmd command) {
	s.items = reduce(s.items, cmd)
	for _, ch := range s.subs {
		select {
		case <-ch:
		default:
		}
		ch <- clone(s.items)
	}
}

func (s *Store) find(id string) (int, models.CartItem, bool) {
	for i, it := range s.items {
		if it.ID == id {
			return i, it, true
		}
	}
	return -1, models.CartItem{}, false
}

// Add shows a placeholder line immediately, then replaces it with the server cart.
func (s *Store) Add(ctx context.Context, req AddRequest) error {
	qty := req.Quantity
	if qty <= 0 {
		qty = 1
	}

	placeholder := models.CartItem{
		ID:         models.TempCartItemPrefix + uuid.NewString(),
		Quantity:   qty,
		ProductID:  req.ProductID,
		MedicineID: req.MedicineID,
	}
	if req.Snapshot != nil {
		snap := *req.Snapshot
		if req.MedicineID != nil {
			placeholder.Medicine = &snap
		} else {
			placeholder.Product = &snap
		}
	}

	s.mu.Lock()
	s.adding[placeholder.ID] = true
	s.dispatch(insertItem{item: placeholder})
	s.mu.Unlock()

	saved, err := s.api.AddToCart(ctx, models.AddToCartRequest{
		ProductID:  req.ProductID,
		MedicineID: req.MedicineID,
		Quantity:   qty,
	})

	s.mu.Lock()
	delete(s.adding, placeholder.ID)
	if err != nil {
		s.dispatch(dropItem{id: placeholder.ID})
	}
	s.mu.Unlock()
	if err != nil {
		return err
	}

	if err := s.reconcile(ctx); err != nil {
		s.log.Warn("cart refetch after add failed", zap.Error(err))
		s.mu.Lock()
		if _, _, exists := s.find(saved.ID); exists {
			s.dispatch(dropItem{id: placeholder.ID})
		} else {
			s.dispatch(swapItem{id: placeholder.ID, item: *saved})
		}
		s.mu.Unlock()
	}
	return nil
}

// UpdateQuantity changes the line locally and schedules a debounced write.
// A quantity of zero or less removes the line.
func (s *Store) UpdateQuantity(ctx context.Context, id string, quantity int) error {
	if quantity <= 0 {
		return s.Remove(ctx, id)
	}

	s.mu.Lock()
	_, item, ok := s.find(id)
	if !ok {
		s.mu.Unlock()
		return ErrItemNotFound
	}
	if item.IsTemporary() {
		s.mu.Unlock()
		return ErrItemPending
	}
	seq := s.nextSeq(id)
	s.pending[id] = quantity
	s.dispatch(setQuantity{id: id, quantity: quantity})
	s.debounce.Trigger(id, func(ctx context.Context) {
		ctx, cancel := context.WithTimeout(ctx, syncTimeout)
		defer cancel()
		if err := s.sendQuantity(ctx, id, seq, quantity); err != nil {
			s.log.Warn("cart quantity sync failed", zap.String("item_id", id), zap.Error(err))
		}
	})
	s.mu.Unlock()
	return nil
}

// sendQuantity writes one quantity. Writes for a line are serialized, a write
// superseded before it is sent is skipped, and the response of a superseded
// write is discarded.
func (s *Store) sendQuantity(ctx context.Context, id string, seq uint64, quantity int) error {
	w := s.writer(id)
	w.Lock()
	defer w.Unlock()

	if !s.current(id, seq) {
		return nil
	}

	_, err := s.api.UpdateCartItem(ctx, id, quantity)

	s.mu.Lock()
	latest := s.seq[id] == seq
	if latest {
		delete(s.pending, id)
		if err != nil {
			s.syncErr = append(s.syncErr, err)
		}
	}
	s.mu.Unlock()

	if !latest || err == nil {
		return nil
	}
	if rerr := s.reconcile(ctx); rerr != nil {
		s.log.Warn("cart refetch after failed update", zap.Error(rerr))
	}
	return err
}

func (s *Store) current(id string, seq uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seq[id] == seq
}

func (s *Store) writer(id string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.writers[id]
	if !ok {
		w = &sync.Mutex{}
		s.writers[id] = w
	}
	return w
}

// Remove drops the line immediately and restores it at the same position if
// the API call fails.
func (s *Store) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	index, item, ok := s.find(id)
	if !ok {
		s.mu.Unlock()
		return ErrItemNotFound
	}
	if item.IsTemporary() {
		s.mu.Unlock()
		return ErrItemPending
	}
	s.debounce.Cancel(id)
	s.nextSeq(id)
	delete(s.pending, id)
	s.dispatch(dropItem{id: id})
	s.mu.Unlock()

	if err := s.api.RemoveCartItem(ctx, id); err != nil {
		s.mu.Lock()
		s.dispatch(restoreItem{item: item, index: index})
		s.mu.Unlock()
		return err
	}

	s.mu.Lock()
	s.forget(id)
	s.mu.Unlock()
	return nil
}

// Clear empties the cart immediately and restores the previous lines if the
// API call fails. Clearing an empty cart succeeds.
func (s *Store) Clear(ctx context.Context) error {
	s.debounce.CancelAll()

	s.mu.Lock()
	prev := clone(s.items)
	for id := range s.pending {
		s.nextSeq(id)
	}
	s.pending = make(map[string]int)
	s.dispatch(replaceAll{})
	s.mu.Unlock()

	if err := s.api.ClearCart(ctx); err != nil {
		s.mu.Lock()
		s.dispatch(replaceAll{items: prev})
		s.mu.Unlock()
		return err
	}

	s.mu.Lock()
	for _, it := range prev {
		s.forget(it.ID)
	}
	s.mu.Unlock()
	return nil
}

// nextSeq stamps a new write for id. Sequence numbers are unique across the
// store, so a forgotten id never reuses one. Must be called with s.mu held.
func (s *Store) nextSeq(id string) uint64 {
	s.lastSeq++
	s.seq[id] = s.lastSeq
	return s.lastSeq
}

// forget drops the bookkeeping for a line that is gone from the server.
// Must be called with s.mu held.
func (s *Store) forget(id string) {
	if _, pending := s.pending[id]; pending {
		return
	}
	delete(s.seq, id)
	delete(s.writers, id)
}

// Flush sends pending quantity writes now and reports their failures.
func (s *Store) Flush(ctx context.Context) error {
	s.mu.Lock()
	s.syncErr = nil
	s.mu.Unlock()

	s.debounce.FlushAll(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	err := errors.Join(s.syncErr...)
	s.syncErr = nil
	return err
}

type snapshot struct {
	gen   uint64
	items []models.CartItem
}

func (s *Store) fetch(ctx context.Context) (snapshot, error) {
	s.mu.Lock()
	s.fetchGen++
	gen := s.fetchGen
	s.mu.Unlock()

	items, err := s.api.Cart(ctx)
	return snapshot{gen: gen, items: items}, err
}

// reconcile replaces local state with a cart fetched after the caller's own
// write landed. It never joins a fetch that may have started earlier.
func (s *Store) reconcile(ctx context.Context) error {
	snap, err := s.fetch(ctx)
	if err != nil {
		// Fetches that started earlier are staler than what the caller is
		// about to patch in locally.
		s.mu.Lock()
		if snap.gen > s.appliedGen {
			s.appliedGen = snap.gen
		}
		s.mu.Unlock()
		return err
	}
	s.apply(snap)
	return nil
}

// apply installs snap unless a newer fetch was applied first. Lines with
// unsent edits keep their local quantity and placeholders whose add is still
// in flight are kept.
func (s *Store) apply(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if snap.gen <= s.appliedGen {
		return
	}
	s.appliedGen = snap.gen

	keep := make(map[string]int, len(s.pending))
	for id, qty := range s.pending {
		keep[id] = qty
	}
	adding := make(map[string]bool, len(s.adding))
	for id := range s.adding {
		adding[id] = true
	}
	s.dispatch(replaceAll{items: snap.items, keep: keep, adding: adding})
}
