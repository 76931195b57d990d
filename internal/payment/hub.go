package payment

import (
	"context"
	"errors"
	"sync"
)

// ErrUnknownOrder is returned when nothing waits for the order id.
var ErrUnknownOrder = errors.New("payment: no pending checkout for order")

// Hub delivers asynchronously reported outcomes (webhooks, widget close) to the
// checkout waiting on them. Each order resolves at most once.
type Hub struct {
	mu      sync.Mutex
	waiters map[string]chan Result
}

func NewHub() *Hub {
	return &Hub{waiters: make(map[string]chan Result)}
}

// Register prepares a waiter for orderID. Call it before the outcome can arrive.
// The returned wait blocks until Resolve or ctx end; release drops the waiter.
func (h *Hub) Register(orderID string) (wait func(ctx context.Context) (Result, error), release func()) {
	ch := make(chan Result, 1)
	h.mu.Lock()
	h.waiters[orderID] = ch
	h.mu.Unlock()

	wait = func(ctx context.Context) (Result, error) {
		select {
		case res := <-ch:
			return res, nil
		case <-ctx.Done():
			return Result{}, ctx.Err()
		}
	}
	release = func() {
		h.mu.Lock()
		if h.waiters[orderID] == ch {
			delete(h.waiters, orderID)
		}
		h.mu.Unlock()
	}
	return wait, release
}

// Resolve hands res to the waiter of orderID. Later calls for the same order return ErrUnknownOrder.
func (h *Hub) Resolve(orderID string, res Result) error {
	h.mu.Lock()
	ch, ok := h.waiters[orderID]
	if ok {
		delete(h.waiters, orderID)
	}
	h.mu.Unlock()
	if !ok {
		return ErrUnknownOrder
	}
	ch <- res
	return nil
}

// Pending reports whether orderID still awaits an outcome.
func (h *Hub) Pending(orderID string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	_, ok := h.waiters[orderID]
	return ok
}
