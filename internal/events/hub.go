package events

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/strefethen/home-hub-go/internal/api"
)

// Event is one orchestration notification pushed to connected clients.
type Event struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	Timestamp string         `json:"timestamp"`
	Payload   map[string]any `json:"payload,omitempty"`
}

type client struct {
	conn *websocket.Conn
	mu   sync.Mutex // serializes writes to conn
}

func (c *client) writeJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(v)
}

// Hub fans orchestration events out to WebSocket subscribers. A client that
// fails a write is dropped; slow or dead listeners never block publishers.
type Hub struct {
	mu           sync.RWMutex
	clients      map[*client]struct{}
	pingInterval time.Duration
	logger       *log.Logger
}

// NewHub creates an empty hub.
func NewHub(logger *log.Logger) *Hub {
	if logger == nil {
		logger = log.Default()
	}
	return &Hub{
		clients:      make(map[*client]struct{}),
		pingInterval: 30 * time.Second,
		logger:       logger,
	}
}

// Add registers a connection and holds it until it closes.
func (h *Hub) Add(conn *websocket.Conn) {
	c := &client{conn: conn}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	count := len(h.clients)
	h.mu.Unlock()
	h.logger.Printf("event listener connected (%d active)", count)

	go h.pingLoop(c)
	go h.readLoop(c)
}

// Publish broadcasts an event to every connected client.
func (h *Hub) Publish(eventType string, payload map[string]any) {
	event := Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: api.RFC3339Millis(time.Now()),
		Payload:   payload,
	}

	h.mu.RLock()
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		if err := c.writeJSON(event); err != nil {
			h.logger.Printf("dropping event listener: %v", err)
			h.remove(c)
		}
	}
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		c.conn.Close()
		delete(h.clients, c)
	}
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		c.conn.Close()
		delete(h.clients, c)
	}
}

func (h *Hub) pingLoop(c *client) {
	ticker := time.NewTicker(h.pingInterval)
	defer ticker.Stop()

	for range ticker.C {
		h.mu.RLock()
		_, active := h.clients[c]
		h.mu.RUnlock()
		if !active {
			return
		}
		c.mu.Lock()
		err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second))
		c.mu.Unlock()
		if err != nil {
			h.remove(c)
			return
		}
	}
}

// readLoop drains inbound frames so control messages are processed and
// detects the client going away.
func (h *Hub) readLoop(c *client) {
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			h.remove(c)
			return
		}
	}
}
