package eventbus

import "sync"

// Hub is a synchronous observer fan-out. Registries call Notify after every
// committed mutation; dashboards and mobile clients subscribe to re-render.
type Hub struct {
	mu        sync.RWMutex
	listeners map[int]func()
	next      int
	closed    bool
}

// NewHub creates an empty Hub.
func NewHub() *Hub { return &Hub{listeners: map[int]func(){}} }

// Subscribe registers a listener and returns the function that removes it.
// Unsubscribe is idempotent and safe to call from within a notification.
func (h *Hub) Subscribe(fn func()) (unsubscribe func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed || fn == nil {
		return func() {}
	}
	id := h.next
	h.next++
	h.listeners[id] = fn
	return func() {
		h.mu.Lock()
		delete(h.listeners, id)
		h.mu.Unlock()
	}
}

// Notify invokes every listener registered at the time of the call.
// The listener set is snapshotted before iterating, so subscribing or
// unsubscribing during delivery cannot corrupt the round in flight.
// Delivery is synchronous and best-effort; there is no ordering guarantee
// across listeners.
func (h *Hub) Notify() {
	h.mu.RLock()
	snapshot := make([]func(), 0, len(h.listeners))
	for _, fn := range h.listeners {
		snapshot = append(snapshot, fn)
	}
	h.mu.RUnlock()
	for _, fn := range snapshot {
		fn()
	}
}

// Close drops all listeners. Subsequent Subscribe calls are no-ops.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	h.listeners = map[int]func(){}
	h.mu.Unlock()
}

// Len returns the number of registered listeners.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.listeners)
}
