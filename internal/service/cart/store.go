// Package cart holds the per-session cart state and its persistence bridge.
package cart

import (
	"slices"
	"sync"

	"github.com/shopspring/decimal"

	"podcast-storefront/internal/domain"
)

// Op names the mutation that produced an Event.
type Op string

const (
	OpAdd    Op = "add"
	OpRemove Op = "remove"
	OpUpdate Op = "update"
	OpClear  Op = "clear"
	OpLoad   Op = "load"
)

// Event is emitted after every mutation with a copy of the resulting items.
type Event struct {
	Op    Op
	Items []domain.LineItem
}

// Store is the only mutation surface of a session cart. Construct one per session.
//
// Listeners run synchronously after the mutation, in mutation order. They may read
// the store but must not mutate it.
type Store struct {
	writeMu sync.Mutex // serializes mutate+notify
	mu      sync.RWMutex
	items   []domain.LineItem

	listenersMu sync.Mutex
	listeners   map[int]func(Event)
	nextID      int
}

// NewStore returns an empty cart.
func NewStore() *Store {
	return &Store{listeners: make(map[int]func(Event))}
}

// Subscribe registers fn for every subsequent mutation.
func (s *Store) Subscribe(fn func(Event)) (unsubscribe func()) {
	s.listenersMu.Lock()
	defer s.listenersMu.Unlock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	return func() {
		s.listenersMu.Lock()
		delete(s.listeners, id)
		s.listenersMu.Unlock()
	}
}

// AddItem increments the quantity of an existing (id, kind) entry, leaving its
// stored price and discount untouched, or appends the candidate with quantity 1.
func (s *Store) AddItem(c domain.Candidate) {
	s.mutate(OpAdd, func(items []domain.LineItem) ([]domain.LineItem, bool) {
		for i := range items {
			if items[i].Matches(c.ID, c.Kind) {
				items[i].Quantity++
				return items, true
			}
		}
		return append(items, domain.LineItem{
			ID:              c.ID,
			Kind:            c.Kind,
			Name:            c.Name,
			UnitPrice:       c.UnitPrice,
			DiscountPercent: copyInt(c.DiscountPercent),
			Quantity:        1,
			StockCeiling:    copyInt(c.StockCeiling),
			Image:           c.Image,
		}), true
	})
}

// RemoveItem deletes the matching entry. Absent entries are ignored.
func (s *Store) RemoveItem(id string, kind domain.Kind) {
	s.mutate(OpRemove, func(items []domain.LineItem) ([]domain.LineItem, bool) {
		return removeMatching(items, id, kind)
	})
}

// UpdateQuantity sets the quantity of an entry; quantity <= 0 removes it.
// No stock ceiling is enforced here, callers are expected to respect it.
func (s *Store) UpdateQuantity(id string, kind domain.Kind, quantity int) {
	if quantity <= 0 {
		s.RemoveItem(id, kind)
		return
	}
	s.mutate(OpUpdate, func(items []domain.LineItem) ([]domain.LineItem, bool) {
		for i := range items {
			if items[i].Matches(id, kind) {
				if items[i].Quantity == quantity {
					return items, false
				}
				items[i].Quantity = quantity
				return items, true
			}
		}
		return items, false
	})
}

// Clear empties the cart. Listeners see OpClear, which erases the persisted snapshot.
func (s *Store) Clear() {
	s.mutate(OpClear, func([]domain.LineItem) ([]domain.LineItem, bool) {
		return nil, true
	})
}

// Replace swaps in a loaded list wholesale. Listeners see OpLoad.
func (s *Store) Replace(items []domain.LineItem) {
	s.mutate(OpLoad, func([]domain.LineItem) ([]domain.LineItem, bool) {
		return cloneItems(items), true
	})
}

// Items returns a copy of the line items in insertion order.
func (s *Store) Items() []domain.LineItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneItems(s.items)
}

// Item returns the entry for (id, kind).
func (s *Store) Item(id string, kind domain.Kind) (domain.LineItem, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, li := range s.items {
		if li.Matches(id, kind) {
			return cloneItem(li), true
		}
	}
	return domain.LineItem{}, false
}

// TotalPrice sums effective price times quantity.
func (s *Store) TotalPrice() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	total := decimal.Zero
	for _, li := range s.items {
		total = total.Add(li.Total())
	}
	return total
}

// TotalItems sums quantities.
func (s *Store) TotalItems() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, li := range s.items {
		n += li.Quantity
	}
	return n
}

func (s *Store) mutate(op Op, fn func([]domain.LineItem) ([]domain.LineItem, bool)) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	next, changed := fn(cloneItems(s.items))
	if changed {
		s.items = next
	}
	snapshot := cloneItems(s.items)
	s.mu.Unlock()

	if !changed {
		return
	}
	ev := Event{Op: op, Items: snapshot}
	for _, l := range s.snapshotListeners() {
		l(ev)
	}
}

func (s *Store) snapshotListeners() []func(Event) {
	s.listenersMu.Lock()
	defer s.listenersMu.Unlock()
	ids := make([]int, 0, len(s.listeners))
	for id := range s.listeners {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	out := make([]func(Event), 0, len(ids))
	for _, id := range ids {
		out = append(out, s.listeners[id])
	}
	return out
}

func removeMatching(items []domain.LineItem, id string, kind domain.Kind) ([]domain.LineItem, bool) {
	out := items[:0]
	removed := false
	for _, li := range items {
		if li.Matches(id, kind) {
			removed = true
			continue
		}
		out = append(out, li)
	}
	return out, removed
}

func cloneItems(items []domain.LineItem) []domain.LineItem {
	if len(items) == 0 {
		return nil
	}
	out := make([]domain.LineItem, len(items))
	for i, li := range items {
		out[i] = cloneItem(li)
	}
	return out
}

func cloneItem(li domain.LineItem) domain.LineItem {
	li.DiscountPercent = copyInt(li.DiscountPercent)
	li.StockCeiling = copyInt(li.StockCeiling)
	return li
}

func copyInt(v *int) *int {
	if v == nil {
		return nil
	}
	n := *v
	return &n
}
