package broadcast

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// TopicSnapshot carries the full auction state, sent once on connect.
	TopicSnapshot = "state:snapshot"

	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 45 * time.Second
	sendBufferSize = 32
)

// Frame is the JSON envelope pushed to spectators.
type Frame struct {
	Topic   string `json:"topic"`
	Payload any    `json:"payload"`
}

// SnapshotFunc produces the full-state payload for newly connected viewers.
type SnapshotFunc func() any

// Hub implements Gateway over WebSocket connections. Delivery is
// fire-and-forget; a viewer that cannot keep up is disconnected and must
// reconnect for a fresh snapshot.
type Hub struct {
	mu       sync.RWMutex
	clients  map[*hubClient]struct{}
	closed   bool
	snapshot SnapshotFunc
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

type hubClient struct {
	conn *websocket.Conn
	send chan Frame
}

// NewHub creates a hub. The snapshot function is called per connection to
// seed the new viewer with current state.
func NewHub(snapshot SnapshotFunc, logger *slog.Logger) *Hub {
	return &Hub{
		clients:  make(map[*hubClient]struct{}),
		snapshot: snapshot,
		logger:   logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

// Emit pushes a frame to every connected viewer. Clients with a full send
// buffer are dropped rather than blocking the auction.
func (h *Hub) Emit(topic string, payload any) {
	frame := Frame{Topic: topic, Payload: payload}

	h.mu.RLock()
	var stale []*hubClient
	for c := range h.clients {
		select {
		case c.send <- frame:
		default:
			stale = append(stale, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range stale {
		h.logger.Warn("dropping slow viewer", slog.String("remote", c.conn.RemoteAddr().String()))
		h.remove(c)
	}
}

// ServeHTTP upgrades the request to a WebSocket and streams frames until the
// viewer disconnects.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", slog.Any("error", err))
		return
	}

	c := &hubClient{conn: conn, send: make(chan Frame, sendBufferSize)}

	// Taken outside the hub lock: the snapshot function reads engine state,
	// and the engine emits into the hub while holding its own lock.
	seed := Frame{Topic: TopicSnapshot, Payload: h.snapshot()}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		conn.Close()
		return
	}
	h.clients[c] = struct{}{}
	n := len(h.clients)
	// Seed the viewer before any incremental frames. The buffered channel
	// cannot block here, the writer has not started yet.
	c.send <- seed
	h.mu.Unlock()

	h.logger.Info("viewer connected",
		slog.String("remote", conn.RemoteAddr().String()),
		slog.Int("viewers", n),
	)

	go h.writeLoop(c)
	go h.readLoop(c)
}

// ViewerCount returns the number of connected viewers.
func (h *Hub) ViewerCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects all viewers and rejects new connections.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	clients := make([]*hubClient, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.clients = make(map[*hubClient]struct{})
	h.mu.Unlock()

	for _, c := range clients {
		close(c.send)
	}
}

func (h *Hub) remove(c *hubClient) {
	h.mu.Lock()
	if _, ok := h.clients[c]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, c)
	h.mu.Unlock()
	close(c.send)
}

// writeLoop drains the client's send channel onto the socket and keeps the
// connection alive with pings.
func (h *Hub) writeLoop(c *hubClient) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(frame); err != nil {
				h.remove(c)
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.remove(c)
				return
			}
		}
	}
}

// readLoop discards inbound messages; viewers are read-only. It exists to
// notice disconnects and answer pongs.
func (h *Hub) readLoop(c *hubClient) {
	defer h.remove(c)
	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
