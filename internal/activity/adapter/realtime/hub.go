// Package realtime fans account events out to the owner's open connections.
package realtime

import (
	"context"
	"sync"
	"time"

	"lifeops/internal/shared/eventbus"
	"lifeops/internal/shared/logger"

	"github.com/google/uuid"
)

// DefaultBufferSize is the number of undelivered messages a client may hold
const DefaultBufferSize = 16

// Message is one frame pushed to a client
type Message struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data"`
	Timestamp time.Time   `json:"timestamp"`
}

// Client is one registered connection
type Client struct {
	ID     string
	UserID string
	send   chan Message
}

// Messages is closed when the client is unregistered or the hub closes
func (c *Client) Messages() <-chan Message {
	return c.send
}

// Hub keeps the open connections of every user
type Hub struct {
	mu         sync.RWMutex
	clients    map[string]map[*Client]struct{}
	bufferSize int
	closed     bool
	log        logger.Logger
}

// NewHub creates an empty hub
func NewHub(log logger.Logger, bufferSize int) *Hub {
	if log == nil {
		log = logger.NewNop()
	}
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	return &Hub{
		clients:    make(map[string]map[*Client]struct{}),
		bufferSize: bufferSize,
		log:        log.WithComponent("realtime"),
	}
}

// Register adds a connection for userID. On a closed hub the returned
// client's channel is already closed.
func (h *Hub) Register(userID string) *Client {
	client := &Client{
		ID:     uuid.NewString(),
		UserID: userID,
		send:   make(chan Message, h.bufferSize),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		close(client.send)
		return client
	}
	if h.clients[userID] == nil {
		h.clients[userID] = make(map[*Client]struct{})
	}
	h.clients[userID][client] = struct{}{}
	h.log.Debugf("client %s registered for user %s", client.ID, userID)
	return client
}

// Unregister removes the client and closes its channel; repeated calls are no-ops
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conns, ok := h.clients[client.UserID]
	if !ok {
		return
	}
	if _, ok := conns[client]; !ok {
		return
	}
	delete(conns, client)
	close(client.send)
	if len(conns) == 0 {
		delete(h.clients, client.UserID)
	}
	h.log.Debugf("client %s unregistered for user %s", client.ID, client.UserID)
}

// Handle delivers account events to the owner's clients. A client whose
// buffer is full misses the message.
func (h *Hub) Handle(_ context.Context, event eventbus.Event) error {
	payload, ok := accountPayload(event)
	if !ok {
		return nil
	}
	msg := Message{Type: event.Type(), Data: payload, Timestamp: event.Timestamp()}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients[payload.UserID] {
		select {
		case client.send <- msg:
		default:
			h.log.Warnf("dropping %s for slow client %s", msg.Type, client.ID)
		}
	}
	return nil
}

// Count returns the number of open connections of userID
func (h *Hub) Count(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

// Close disconnects every client
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for userID, conns := range h.clients {
		for client := range conns {
			close(client.send)
		}
		delete(h.clients, userID)
	}
}

func accountPayload(event eventbus.Event) (eventbus.AccountEvent, bool) {
	switch data := event.Data().(type) {
	case eventbus.AccountEvent:
		return data, data.UserID != ""
	case *eventbus.AccountEvent:
		if data == nil {
			return eventbus.AccountEvent{}, false
		}
		return *data, data.UserID != ""
	default:
		return eventbus.AccountEvent{}, false
	}
}
