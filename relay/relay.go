// Package relay fans session state events out to websocket clients. A Hub
// subscribes to sessions through their listener hooks, marshals each event
// once and pushes it to every connected client; clients that cannot keep up
// are disconnected rather than stalling the pipeline.
package relay

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/playforge/playforge/core"
	"github.com/playforge/playforge/logging"
)

// Client is one connected websocket consumer with its own send queue.
type Client struct {
	conn *websocket.Conn
	send chan []byte
}

func newClient(conn *websocket.Conn, buffer int) *Client {
	c := &Client{
		conn: conn,
		send: make(chan []byte, buffer),
	}
	go c.writePump()
	return c
}

func (c *Client) writePump() {
	defer c.conn.Close()
	for msg := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
}

func (c *Client) close() {
	close(c.send)
}

// Options holds construction overrides for NewHub.
type Options struct {
	// SendBuffer is the per-client outbound queue length.
	SendBuffer int
	// Logger receives relay lifecycle messages.
	Logger logging.Logger
}

// Hub relays session events to its connected clients.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]bool

	sendBuffer int
	logger     logging.Logger
}

// NewHub constructs a Hub with optional overrides.
func NewHub(optFns ...func(o *Options)) *Hub {
	opts := Options{
		SendBuffer: 16,
		Logger:     logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	return &Hub{
		clients:    make(map[*Client]bool),
		sendBuffer: opts.SendBuffer,
		logger:     opts.Logger,
	}
}

// Add registers a websocket connection and sends it the session's current
// snapshot so late joiners see the in-flight state immediately.
func (h *Hub) Add(conn *websocket.Conn, sess *core.Session) *Client {
	c := newClient(conn, h.sendBuffer)

	h.mu.Lock()
	h.clients[c] = true
	h.mu.Unlock()

	if sess != nil {
		if data, err := json.Marshal(sess.Snapshot()); err == nil {
			select {
			case c.send <- data:
			default:
			}
		}
	}
	return c
}

// Remove disconnects a client. Idempotent.
func (h *Hub) Remove(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		c.close()
	}
	h.mu.Unlock()
}

// Watch subscribes the hub to sess, relaying every state event to all
// connected clients. The returned handle detaches the subscription.
func (h *Hub) Watch(sess *core.Session) func() {
	return sess.AddListener(func(ev core.Event) {
		h.broadcast(ev)
	})
}

func (h *Hub) broadcast(ev core.Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		h.logger.Error("relay marshal failed: %v", err)
		return
	}

	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		select {
		case c.send <- data:
		default:
			h.logger.Warn("relay client too slow, disconnecting session_id=%s", ev.SessionID)
			h.Remove(c)
		}
	}
}

// ClientCount reports the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
