package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/rghosal/handlight/internal/app"
	"github.com/rghosal/handlight/internal/gesture"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// EventsHandler pushes gesture events and session snapshots to WebSocket
// clients as they happen.
type EventsHandler struct {
	log     *zap.Logger
	clients map[*websocket.Conn]bool
	mu      sync.RWMutex
}

// NewEventsHandler creates an EventsHandler with no connected clients.
// A nil logger disables logging.
func NewEventsHandler(log *zap.Logger) *EventsHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &EventsHandler{
		log:     log,
		clients: make(map[*websocket.Conn]bool),
	}
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *EventsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
	}()

	// Keep connection alive by reading messages; clients never send any.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

// eventMessage is the wire form of one pipeline outcome.
type eventMessage struct {
	Event     string       `json:"event"`
	Delta     int          `json:"delta,omitempty"`
	State     app.Snapshot `json:"state"`
	Timestamp int64        `json:"timestamp"`
}

// Publish broadcasts one pipeline outcome to every connected client. It is
// registered as a Session event listener.
func (h *EventsHandler) Publish(ev gesture.Event, snap app.Snapshot) {
	if ev.Kind == gesture.NoAction {
		return
	}

	msg, err := json.Marshal(eventMessage{
		Event:     ev.Kind.String(),
		Delta:     ev.Delta,
		State:     snap,
		Timestamp: time.Now().UnixMilli(),
	})
	if err != nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for conn := range h.clients {
		if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			h.log.Debug("websocket write failed", zap.Error(err))
		}
	}
}
