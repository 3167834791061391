// Package realtime streams manager events to browsers over Server-Sent Events
// and WebSocket connections.
package realtime

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"sitecompare/internal/sites"
)

const (
	// TypeState is the first message every client receives.
	TypeState = "state"

	clientBuffer   = 64
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	keepAlive      = 25 * time.Second
	maxMessageSize = 512
)

// Message is one streamed event.
type Message struct {
	Type      string    `json:"type"`
	SiteID    string    `json:"site_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data,omitempty"`
}

type client struct {
	id   string
	kind string
	send chan Message
}

// Hub fans messages out to connected clients. A client whose buffer is full
// misses the message; publishers never block.
type Hub struct {
	mu       sync.RWMutex
	clients  map[*client]struct{}
	closed   bool
	snapshot func() any
	upgrader websocket.Upgrader
	dropped  atomic.Int64
	log      zerolog.Logger
}

// NewHub returns a hub that greets new clients with snapshot().
func NewHub(snapshot func() any, log *zerolog.Logger) *Hub {
	h := &Hub{
		clients:  make(map[*client]struct{}),
		snapshot: snapshot,
		log:      zerolog.Nop(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
	if log != nil {
		h.log = *log
	}
	return h
}

// Publish implements sites.EventPublisher.
func (h *Hub) Publish(e sites.Event) {
	var data any
	if len(e.Fields) > 0 {
		data = e.Fields
	}
	h.Broadcast(Message{Type: e.Name, SiteID: e.SiteID, Timestamp: time.Now(), Data: data})
}

// Broadcast queues m for every client.
func (h *Hub) Broadcast(m Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		select {
		case c.send <- m:
		default:
			h.dropped.Add(1)
			h.log.Warn().Str("client_id", c.id).Str("type", m.Type).Msg("realtime client buffer full, message dropped")
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Dropped returns how many messages were skipped for slow clients.
func (h *Hub) Dropped() int64 { return h.dropped.Load() }

// Close disconnects every client and rejects new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
}

// register adds a client whose first queued message is the state snapshot.
func (h *Hub) register(kind string) (*client, bool) {
	c := &client{id: uuid.NewString(), kind: kind, send: make(chan Message, clientBuffer)}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil, false
	}
	if h.snapshot != nil {
		c.send <- Message{Type: TypeState, Timestamp: time.Now(), Data: h.snapshot()}
	}
	h.clients[c] = struct{}{}
	h.log.Debug().Str("client_id", c.id).Str("kind", kind).Int("total_clients", len(h.clients)).Msg("realtime client connected")
	return c, true
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
		h.log.Debug().Str("client_id", c.id).Int("total_clients", len(h.clients)).Msg("realtime client disconnected")
	}
}

// ServeSSE streams messages as Server-Sent Events until the request ends.
func (h *Hub) ServeSSE(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}
	c, ok := h.register("sse")
	if !ok {
		http.Error(w, "shutting down", http.StatusServiceUnavailable)
		return
	}
	defer h.unregister(c)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ticker := time.NewTicker(keepAlive)
	defer ticker.Stop()
	for {
		select {
		case m, ok := <-c.send:
			if !ok {
				return
			}
			data, err := json.Marshal(m)
			if err != nil {
				h.log.Error().Err(err).Msg("marshal realtime message")
				continue
			}
			if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", m.Type, data); err != nil {
				return
			}
			flusher.Flush()
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
				return
			}
			flusher.Flush()
		case <-r.Context().Done():
			return
		}
	}
}

// ServeWS upgrades the request and streams messages as JSON text frames.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	c, ok := h.register("ws")
	if !ok {
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"))
		_ = conn.Close()
		return
	}
	go h.readPump(c, conn)
	h.writePump(c, conn)
}

// readPump discards client frames and unregisters on disconnect.
func (h *Hub) readPump(c *client, conn *websocket.Conn) {
	defer func() {
		h.unregister(c)
		_ = conn.Close()
	}()
	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.log.Debug().Err(err).Str("client_id", c.id).Msg("websocket read error")
			}
			return
		}
	}
}

func (h *Hub) writePump(c *client, conn *websocket.Conn) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = conn.Close()
	}()
	for {
		select {
		case m, ok := <-c.send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteJSON(m); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
