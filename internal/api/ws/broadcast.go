package ws

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/oshokin/autoclicker/internal/logger"
	"github.com/oshokin/autoclicker/internal/service/status"
)

// clientBuffer is the number of messages queued per client before it is
// considered too slow and disconnected.
const clientBuffer = 64

// client is one connected WebSocket peer.
type client struct {
	conn *websocket.Conn
	// remote is the peer address used in logs.
	remote string
	// send is closed only by the broadcaster while holding its write lock.
	send chan []byte
}

// newClient starts the write pump for conn.
func newClient(conn *websocket.Conn) *client {
	c := &client{
		conn:   conn,
		remote: conn.RemoteAddr().String(),
		send:   make(chan []byte, clientBuffer),
	}

	go c.writePump()

	return c
}

// writePump writes queued messages until send is closed or a write fails.
func (c *client) writePump() {
	defer c.conn.Close()

	for msg := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
}

// Broadcaster fans status events out to WebSocket clients.
type Broadcaster struct {
	ctx context.Context //nolint:containedctx // Carries the logger for the bus handler.

	// mu guards clients.
	mu      sync.RWMutex
	clients map[*client]struct{}
}

// NewBroadcaster creates a broadcaster without clients.
func NewBroadcaster(ctx context.Context) *Broadcaster {
	return &Broadcaster{
		ctx:     logger.WithName(ctx, "ws"),
		clients: make(map[*client]struct{}),
	}
}

// AddClient registers conn and starts writing to it.
func (b *Broadcaster) AddClient(conn *websocket.Conn) *client {
	c := newClient(conn)

	b.mu.Lock()
	b.clients[c] = struct{}{}
	b.mu.Unlock()

	return c
}

// RemoveClient unregisters c and closes its connection.
func (b *Broadcaster) RemoveClient(c *client) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.clients[c]; ok {
		delete(b.clients, c)
		close(c.send)
	}
}

// Handle broadcasts one status event. It is meant to be a status bus handler
// and never blocks on a client.
func (b *Broadcaster) Handle(event status.Event) {
	data, err := json.Marshal(NewMessage(event))
	if err != nil {
		logger.WarnKV(b.ctx, "Failed to marshal status event", "error", err)

		return
	}

	// Sends happen under the read lock so no client can be closed mid-send.
	var slow []*client

	b.mu.RLock()

	for c := range b.clients {
		select {
		case c.send <- data:
		default:
			slow = append(slow, c)
		}
	}

	b.mu.RUnlock()

	for _, c := range slow {
		logger.WarnKV(b.ctx, "Status client too slow, disconnecting", "remote", c.remote)
		b.RemoveClient(c)
	}
}

// ClientCount returns the number of connected clients.
func (b *Broadcaster) ClientCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return len(b.clients)
}

// Close disconnects every client.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for c := range b.clients {
		delete(b.clients, c)
		close(c.send)
	}
}
