// Package realtime fans feed change events out to every connected live
// client. Delivery is fire-and-forget, at most once: no acknowledgment, no
// retry, no persistence. A client that cannot keep up simply misses events.
package realtime

import (
	"sync"

	"github.com/google/uuid"

	"github.com/feedpulse/feedpulse/models"
)

// Actions carried by change events.
const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// Event is one feed change pushed to live clients.
type Event struct {
	Action  string           `json:"action"`
	Post    *models.FeedItem `json:"post,omitempty"`
	PostID  uint             `json:"postId,omitempty"`
	Creator *models.Author   `json:"creator,omitempty"`
}

// Hub is the process-wide broadcast channel. One instance is created at
// startup and handed to the feed service; connect and disconnect of a single
// client never affects delivery to the others.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]chan Event
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[string]chan Event)}
}

// Subscribe registers a live client and returns its id plus the channel the
// client drains. The buffer absorbs short bursts; once full, further events
// for this client are dropped.
func (h *Hub) Subscribe() (string, <-chan Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := uuid.New().String()
	ch := make(chan Event, 32)
	h.clients[id] = ch
	return id, ch
}

// Unsubscribe removes a client and closes its channel.
func (h *Hub) Unsubscribe(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if ch, ok := h.clients[id]; ok {
		close(ch)
		delete(h.clients, id)
	}
}

// Emit pushes the event to every connected client without blocking the
// caller. The triggering request completes regardless of delivery.
func (h *Hub) Emit(ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, ch := range h.clients {
		select {
		case ch <- ev:
		default:
			// client buffer full, drop for this client only
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
