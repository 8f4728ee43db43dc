package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/skywatch/skywatch/internal/track"
)

const (
	// writeTimeout is the deadline for a single write to a client.
	writeTimeout = 10 * time.Second

	// pongWait bounds the silence we tolerate from a client before the
	// connection counts as dead.
	pongWait = 60 * time.Second

	// pingPeriod controls how often the server pings each client. Kept
	// under pongWait so a healthy client always answers in time.
	pingPeriod = (pongWait * 9) / 10

	// sendBufSize is the per-client outgoing message buffer depth.
	sendBufSize = 16
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// Allow all origins — callers should apply CORS at the reverse-proxy level.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Message is the JSON envelope sent to clients for every sighting.
type Message struct {
	Event string         `json:"event"`
	Data  track.Sighting `json:"data"`
}

// Hub manages WebSocket client connections and pushes each fired sighting to
// all connected clients as it happens.
type Hub struct {
	mu      sync.RWMutex
	clients map[*client]struct{}
}

// client represents one connected WebSocket client. The send channel is
// never closed: Publish can race a disconnect, and sending on a closed
// channel would panic the publisher. Shutdown is signalled through done,
// which unregister closes exactly once under the hub lock.
type client struct {
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
}

// New creates an empty Hub.
func New() *Hub {
	return &Hub{clients: make(map[*client]struct{})}
}

// Run blocks until ctx is cancelled, then closes all active connections.
func (h *Hub) Run(ctx context.Context) {
	<-ctx.Done()
	h.closeAll()
}

// Publish broadcasts the sighting to every connected client. Clients whose
// outgoing buffer is full are disconnected rather than allowed to stall the
// broadcast. Publish runs on the watch loop's goroutine, so it must never
// panic or block regardless of clients connecting or dropping mid-call.
func (h *Hub) Publish(s track.Sighting) {
	data, err := json.Marshal(Message{Event: "sighting", Data: s})
	if err != nil {
		slog.Error("ws: encode sighting", "err", err)
		return
	}

	h.mu.RLock()
	targets := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	for _, c := range targets {
		select {
		case c.send <- data:
		default:
			h.unregister(c)
		}
	}
}

// ServeHTTP upgrades the HTTP connection to WebSocket and serves the client.
// Blocks until the connection closes.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// upgrader has already written the error response.
		return
	}

	c := &client{
		conn: conn,
		send: make(chan []byte, sendBufSize),
		done: make(chan struct{}),
	}
	h.register(c)
	defer h.unregister(c)

	go c.writePump()
	c.readPump() // blocks until connection closes
}

// Count returns the number of currently connected clients.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// --- internal ---------------------------------------------------------------

func (h *Hub) register(c *client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

// unregister removes the client and signals its writePump to stop. Safe to
// call more than once; only the call that actually removes the client closes
// done.
func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.done)
	}
	h.mu.Unlock()
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		close(c.done)
		delete(h.clients, c)
	}
}

// write sends one frame with the standard write deadline applied.
func (c *client) write(messageType int, payload []byte) error {
	c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.conn.WriteMessage(messageType, payload)
}

// writePump forwards queued messages to the connection and keeps it alive
// with periodic pings. One goroutine per client; exits when the client is
// unregistered or a write fails.
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			c.write(websocket.CloseMessage, []byte{}) //nolint:errcheck
			return

		case msg := <-c.send:
			if err := c.write(websocket.TextMessage, msg); err != nil {
				return
			}

		case <-ticker.C:
			if err := c.write(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump consumes inbound frames so pong and close handling work, and
// unblocks ServeHTTP when the peer goes away. Clients are not expected to
// send anything; the tiny read limit drops any that do.
func (c *client) readPump() {
	defer c.conn.Close()
	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			break
		}
	}
}
