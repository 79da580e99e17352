package cart

import (
	"sync"

	"github.com/shopspring/decimal"
)

// Product is the catalog entry a caller adds to the cart. The unit price is
// copied into the line item at add time, so later catalog price changes do
// not affect items already in the cart.
type Product struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
	Image string          `json:"image,omitempty"`
}

// LineItem is one distinct product held in the cart. Quantity is always >= 1;
// a mutation that would drive it to zero removes the item instead.
type LineItem struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	ImageRef  string          `json:"imageRef,omitempty"`
	Quantity  int             `json:"quantity"`
}

// Subtotal returns unit price times quantity at full precision.
func (li LineItem) Subtotal() decimal.Decimal {
	return li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// Store owns the authoritative cart state. All mutations go through its
// methods, and every mutation notifies subscribers synchronously before the
// call returns. Reads hand out copies, never the backing slice.
type Store struct {
	mu      sync.Mutex
	items   []LineItem
	subs    []subscriber
	nextSub int
}

type subscriber struct {
	id int
	fn func([]LineItem)
}

func NewStore() *Store {
	return &Store{}
}

// AddItem puts quantity units of the product into the cart. A nil product is
// a no-op, quantities below 1 are clamped to 1, and adding a product already
// present increments its quantity rather than creating a duplicate entry.
func (s *Store) AddItem(p *Product, quantity int) {
	if p == nil {
		return
	}
	if quantity < 1 {
		quantity = 1
	}

	s.mu.Lock()
	merged := false
	for i := range s.items {
		if s.items[i].ProductID == p.ID {
			s.items[i].Quantity += quantity
			merged = true
			break
		}
	}
	if !merged {
		s.items = append(s.items, LineItem{
			ProductID: p.ID,
			Name:      p.Name,
			UnitPrice: p.Price,
			ImageRef:  p.Image,
			Quantity:  quantity,
		})
	}
	snapshot, listeners := s.snapshotLocked()
	s.mu.Unlock()

	notify(snapshot, listeners)
}

// RemoveItem deletes the line item for the product. Removing an absent id is
// a no-op, not an error.
func (s *Store) RemoveItem(productID string) {
	s.mu.Lock()
	removed := false
	for i := range s.items {
		if s.items[i].ProductID == productID {
			s.items = append(s.items[:i], s.items[i+1:]...)
			removed = true
			break
		}
	}
	if !removed {
		s.mu.Unlock()
		return
	}
	snapshot, listeners := s.snapshotLocked()
	s.mu.Unlock()

	notify(snapshot, listeners)
}

// SetQuantity sets the line item's quantity to exactly quantity. Zero or
// negative removes the item. The read-modify-write happens under the store
// lock, so two rapid updates cannot apply against stale state.
func (s *Store) SetQuantity(productID string, quantity int) {
	if quantity <= 0 {
		s.RemoveItem(productID)
		return
	}

	s.mu.Lock()
	found := false
	for i := range s.items {
		if s.items[i].ProductID == productID {
			s.items[i].Quantity = quantity
			found = true
			break
		}
	}
	if !found {
		s.mu.Unlock()
		return
	}
	snapshot, listeners := s.snapshotLocked()
	s.mu.Unlock()

	notify(snapshot, listeners)
}

// Clear empties the cart unconditionally.
func (s *Store) Clear() {
	s.mu.Lock()
	s.items = nil
	snapshot, listeners := s.snapshotLocked()
	s.mu.Unlock()

	notify(snapshot, listeners)
}

// Replace installs items as the authoritative state, dropping whatever was
// held before. Used to feed a persisted snapshot back in on startup.
func (s *Store) Replace(items []LineItem) {
	cleaned := make([]LineItem, 0, len(items))
	seen := make(map[string]bool, len(items))
	for _, item := range items {
		if item.ProductID == "" || item.Quantity < 1 || seen[item.ProductID] {
			continue
		}
		seen[item.ProductID] = true
		cleaned = append(cleaned, item)
	}

	s.mu.Lock()
	s.items = cleaned
	snapshot, listeners := s.snapshotLocked()
	s.mu.Unlock()

	notify(snapshot, listeners)
}

// Items returns a copy of the current line items in insertion order.
func (s *Store) Items() []LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyItems(s.items)
}

// TotalItemCount sums the quantities of all line items. Recomputed on every
// call, never cached.
func (s *Store) TotalItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := 0
	for _, item := range s.items {
		total += item.Quantity
	}
	return total
}

// TotalPrice sums unit price times quantity over all line items at full
// precision. Rounding to two decimals is a presentation concern.
func (s *Store) TotalPrice() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := decimal.Zero
	for _, item := range s.items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// Subscribe registers a listener invoked with a fresh snapshot after every
// mutation. The returned function removes the listener.
func (s *Store) Subscribe(fn func(items []LineItem)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs = append(s.subs, subscriber{id: id, fn: fn})
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i := range s.subs {
			if s.subs[i].id == id {
				s.subs = append(s.subs[:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

func (s *Store) snapshotLocked() ([]LineItem, []func([]LineItem)) {
	listeners := make([]func([]LineItem), len(s.subs))
	for i, sub := range s.subs {
		listeners[i] = sub.fn
	}
	return copyItems(s.items), listeners
}

// Listeners run outside the store lock so they may call back into the store.
func notify(snapshot []LineItem, listeners []func([]LineItem)) {
	for _, fn := range listeners {
		fn(snapshot)
	}
}

func copyItems(items []LineItem) []LineItem {
	out := make([]LineItem, len(items))
	copy(out, items)
	return out
}
