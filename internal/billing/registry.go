package billing

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/aurumworks/jewelpos-backend/pkg/errors"
)

// tab pairs a cart with the lock that serializes its mutations and the
// context that scopes its background goroutines (approval poller, stream
// consumers). The mutex makes every update a read-modify-write against the
// latest state, so concurrent callers cannot interleave half-applied carts.
type tab struct {
	mu      sync.Mutex
	cart    Cart
	notices []Notice

	ctx    context.Context
	cancel context.CancelFunc
}

// Registry holds every open billing tab in memory. Carts never touch the
// database until they are saved as bills; a process restart drops them.
type Registry struct {
	mu   sync.RWMutex
	tabs map[uuid.UUID]*tab
}

func NewRegistry() *Registry {
	return &Registry{tabs: make(map[uuid.UUID]*tab)}
}

// Open creates a new tab for the store and returns its empty cart. The tab's
// context is derived from parent and is cancelled when the tab closes.
func (r *Registry) Open(parent context.Context, storeID uuid.UUID, rules Rules) Cart {
	id := uuid.New()
	ctx, cancel := context.WithCancel(parent)
	t := &tab{
		cart:   NewCart(id, storeID, rules),
		ctx:    ctx,
		cancel: cancel,
	}

	r.mu.Lock()
	r.tabs[id] = t
	r.mu.Unlock()

	return t.cart
}

func (r *Registry) get(tabID uuid.UUID) (*tab, error) {
	r.mu.RLock()
	t, ok := r.tabs[tabID]
	r.mu.RUnlock()
	if !ok {
		return nil, errors.New(errors.CodeNotFound, "billing tab not found")
	}
	return t, nil
}

// Snapshot returns the tab's current cart.
func (r *Registry) Snapshot(tabID uuid.UUID) (Cart, error) {
	t, err := r.get(tabID)
	if err != nil {
		return Cart{}, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cart, nil
}

// Context returns the tab's lifecycle context, for goroutines that should
// stop when the tab closes.
func (r *Registry) Context(tabID uuid.UUID) (context.Context, error) {
	t, err := r.get(tabID)
	if err != nil {
		return nil, err
	}
	return t.ctx, nil
}

// Update applies fn to the tab's cart under the tab lock and stores the
// result. fn sees the latest committed state; returning an error leaves the
// cart unchanged.
func (r *Registry) Update(tabID uuid.UUID, fn func(Cart) (Cart, error)) (Cart, error) {
	t, err := r.get(tabID)
	if err != nil {
		return Cart{}, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	next, err := fn(t.cart)
	if err != nil {
		return t.cart, err
	}
	t.cart = next
	return next, nil
}

// PushNotices queues notices produced off the request path, such as stock
// reconciliation trims, for the next read of the tab.
func (r *Registry) PushNotices(tabID uuid.UUID, notices ...Notice) {
	if len(notices) == 0 {
		return
	}
	t, err := r.get(tabID)
	if err != nil {
		return
	}
	t.mu.Lock()
	t.notices = append(t.notices, notices...)
	t.mu.Unlock()
}

// DrainNotices returns and clears the tab's queued notices.
func (r *Registry) DrainNotices(tabID uuid.UUID) []Notice {
	t, err := r.get(tabID)
	if err != nil {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	out := t.notices
	t.notices = nil
	return out
}

// TabIDs returns the ids of every open tab.
func (r *Registry) TabIDs() []uuid.UUID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]uuid.UUID, 0, len(r.tabs))
	for id := range r.tabs {
		ids = append(ids, id)
	}
	return ids
}

// Reset swaps in an empty cart for the tab, for reuse after a bill is saved.
// Queued notices are dropped along with the old contents.
func (r *Registry) Reset(tabID uuid.UUID) (Cart, error) {
	t, err := r.get(tabID)
	if err != nil {
		return Cart{}, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cart = t.cart.Clear()
	t.notices = nil
	return t.cart, nil
}

// Close cancels the tab's context and removes it. Closing an unknown tab is
// a no-op.
func (r *Registry) Close(tabID uuid.UUID) {
	r.mu.Lock()
	t, ok := r.tabs[tabID]
	if ok {
		delete(r.tabs, tabID)
	}
	r.mu.Unlock()
	if ok {
		t.cancel()
	}
}

// CloseAll tears down every open tab, for process shutdown.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	tabs := r.tabs
	r.tabs = make(map[uuid.UUID]*tab)
	r.mu.Unlock()
	for _, t := range tabs {
		t.cancel()
	}
}
