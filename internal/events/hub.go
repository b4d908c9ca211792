// Package events provides the subscriber registry shared by the stores.
package events

import "sync"

// Hub fans a change signal out to registered listeners. Listeners take no
// arguments; they re-read the owning store's snapshot. Notification order
// across listeners is unspecified.
//
// Go funcs are not comparable, so the registry is handle-based: Subscribe
// returns a cancel func and registering the same callback twice yields two
// registrations, each with its own cancel.
type Hub struct {
	mu   sync.Mutex
	next int
	subs map[int]func()
}

func NewHub() *Hub {
	return &Hub{subs: map[int]func(){}}
}

// Subscribe registers fn and returns its cancel func. Cancel is idempotent.
func (h *Hub) Subscribe(fn func()) (cancel func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.next
	h.next++
	h.subs[id] = fn
	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.subs, id)
	}
}

// Notify invokes every registered listener. Callbacks run outside the
// registry lock so a listener may subscribe or cancel reentrantly.
func (h *Hub) Notify() {
	h.mu.Lock()
	fns := make([]func(), 0, len(h.subs))
	for _, fn := range h.subs {
		fns = append(fns, fn)
	}
	h.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

// Len reports the number of active subscriptions.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
