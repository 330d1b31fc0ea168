package ledger

import (
	"sync"
)

// Registry is the append-only order history, newest first. It never deletes
// an order; the only permitted mutation is the single status transition out
// of PENDING. Reads are safe concurrently with the engine's writes.
type Registry struct {
	mu     sync.RWMutex
	orders []Order
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Append prepends records so listings read newest first.
func (r *Registry) Append(records ...Order) {
	if len(records) == 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders = append(records, r.orders...)
}

// Orders returns a copy of the full history.
func (r *Registry) Orders() []Order {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Order(nil), r.orders...)
}

// Pending returns the resting limit orders awaiting a fill, oldest first so
// earlier orders match first.
func (r *Registry) Pending() []Order {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Order
	for i := len(r.orders) - 1; i >= 0; i-- {
		if r.orders[i].Status == StatusPending {
			out = append(out, r.orders[i])
		}
	}
	return out
}

// Closed returns the records carrying realized P&L, i.e. the trades the
// analytics aggregate over.
func (r *Registry) Closed() []Order {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Order
	for _, o := range r.orders {
		if o.RealizedPnL != nil {
			out = append(out, o)
		}
	}
	return out
}

// Get returns the order with the given ID.
func (r *Registry) Get(orderID string) (Order, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, o := range r.orders {
		if o.ID == orderID {
			return o, true
		}
	}
	return Order{}, false
}

// Transition moves a PENDING order to a terminal status, keeping its creation
// timestamp. It returns false if the order is missing or already settled,
// which callers treat as a skip.
func (r *Registry) Transition(orderID string, to Status) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.orders {
		if r.orders[i].ID != orderID {
			continue
		}
		if r.orders[i].Status != StatusPending {
			return false
		}
		r.orders[i].Status = to
		return true
	}
	return false
}
