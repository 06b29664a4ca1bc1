package obsweb

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Read-only status feed; no credentials flow over it, so any
		// origin may subscribe.
		return true
	},
}

// WSMessage is the envelope broadcast to every connected client.
type WSMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// Hub pushes periodic scan snapshots to connected WebSocket clients. It
// has no inbound command path — messages read from a client are
// discarded, since this surface is observe-only.
type Hub struct {
	store   *Store
	log     *slog.Logger
	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
}

// NewHub returns a Hub broadcasting snapshots from store.
func NewHub(store *Store, log *slog.Logger) *Hub {
	return &Hub{
		store:   store,
		log:     log,
		clients: make(map[*websocket.Conn]struct{}),
	}
}

// Run broadcasts the current snapshot every interval until ctx is done.
func (h *Hub) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.broadcastStats()
		}
	}
}

// ServeHTTP upgrades the connection and registers it as a broadcast
// target until the client disconnects. Frames the client sends are read
// and discarded; draining the read side is what detects the
// connection's close.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", "error", err)
		return
	}

	h.mu.Lock()
	h.clients[conn] = struct{}{}
	h.mu.Unlock()

	go func() {
		defer conn.Close()
		defer func() {
			h.mu.Lock()
			delete(h.clients, conn)
			h.mu.Unlock()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (h *Hub) broadcastStats() {
	h.broadcast(WSMessage{Type: "stats", Payload: h.store.Summary()})
	h.broadcast(WSMessage{Type: "bsses", Payload: h.store.All()})
}

func (h *Hub) broadcast(msg WSMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.log.Error("marshal websocket message", "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			conn.Close()
			delete(h.clients, conn)
		}
	}
}
