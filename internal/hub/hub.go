// Package hub implements the broadcaster side of the session protocol: a
// registry of outbound subscriber channels with sequential fan-out. Slow or
// dead subscribers are pruned instead of blocking delivery.
package hub

import (
	"sync"

	"github.com/meetingnexus/backend/pkg/logger"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// sendBufferSize bounds how far a subscriber may fall behind before it is
// dropped.
const sendBufferSize = 256

// Subscriber is one registered outbound channel. The owner reads from Send
// until it is closed, which signals that the subscriber was removed.
type Subscriber struct {
	ID   string
	Send chan []byte
}

// Hub fans published events out to all registered subscribers. Delivery to a
// single subscriber matches publish order; no ordering is guaranteed across
// subscribers.
type Hub struct {
	mu          sync.Mutex
	subscribers map[string]*Subscriber
	closed      bool
}

func New() *Hub {
	return &Hub{
		subscribers: make(map[string]*Subscriber),
	}
}

// Subscribe registers a new subscriber and returns it. The caller is
// responsible for draining the Send channel. Returns false after Close.
func (h *Hub) Subscribe() (*Subscriber, bool) {
	id, err := gonanoid.New()
	if err != nil {
		// nanoid only fails when the system entropy source does.
		id = "sub"
	}
	sub := &Subscriber{
		ID:   id,
		Send: make(chan []byte, sendBufferSize),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil, false
	}
	h.subscribers[sub.ID] = sub
	return sub, true
}

// Unsubscribe removes a subscriber and closes its Send channel. Unknown ids
// are a no-op.
func (h *Hub) Unsubscribe(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	sub, ok := h.subscribers[id]
	if !ok {
		return
	}
	delete(h.subscribers, id)
	close(sub.Send)
}

// Publish sends data to every registered subscriber. A subscriber whose
// buffer is full is pruned rather than blocking the publisher.
func (h *Hub) Publish(data []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, sub := range h.subscribers {
		select {
		case sub.Send <- data:
		default:
			logger.Warn("[Hub] Subscriber buffer full, dropping connection", "id", id)
			delete(h.subscribers, id)
			close(sub.Send)
		}
	}
}

// Send queues data to a single subscriber. Returns false if the subscriber
// is gone or backed up; it is never pruned here.
func (h *Hub) Send(id string, data []byte) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	sub, ok := h.subscribers[id]
	if !ok {
		return false
	}
	select {
	case sub.Send <- data:
		return true
	default:
		return false
	}
}

// Count returns the number of registered subscribers.
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subscribers)
}

// Close removes all subscribers and rejects future subscriptions.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for id, sub := range h.subscribers {
		delete(h.subscribers, id)
		close(sub.Send)
	}
}
