package ws

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// Hub manages WebSocket connections and per-game subscriptions.
// subs: maps gameType to the set of subscribed connections
type Hub struct {
	upgrader websocket.Upgrader
	mu       sync.RWMutex
	// gameType -> set of connections
	subs map[string]map[*websocket.Conn]struct{}
}

func NewHub(allowOrigin func(r *http.Request) bool) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{CheckOrigin: allowOrigin},
		subs:     make(map[string]map[*websocket.Conn]struct{}),
	}
}

// HandleWS runs the lifecycle of one WebSocket connection. Clients can
// subscribe/unsubscribe to game types and send pings; a client may
// follow several games at once.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	for {
		var msg ClientMsg
		if err := conn.ReadJSON(&msg); err != nil {
			break
		}
		switch msg.Type {
		case "subscribe":
			h.mu.Lock()
			if _, ok := h.subs[msg.GameType]; !ok {
				h.subs[msg.GameType] = make(map[*websocket.Conn]struct{})
			}
			h.subs[msg.GameType][conn] = struct{}{}
			h.mu.Unlock()
		case "unsubscribe":
			h.mu.Lock()
			if m, ok := h.subs[msg.GameType]; ok {
				delete(m, conn)
				if len(m) == 0 {
					delete(h.subs, msg.GameType)
				}
			}
			h.mu.Unlock()
		case "ping":
			_ = conn.WriteJSON(map[string]string{"type": "pong"})
		}
	}
	// drop the connection from every subscription on disconnect
	h.mu.Lock()
	for _, set := range h.subs {
		delete(set, conn)
	}
	h.mu.Unlock()
}

// Broadcast pushes a result update to every client subscribed to the
// game. The subscriber set is snapshotted under the lock; writing
// happens outside it so a subscribing client never mutates a map being
// iterated.
func (h *Hub) Broadcast(update ResultUpdate) {
	h.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(h.subs[update.GameType]))
	for c := range h.subs[update.GameType] {
		conns = append(conns, c)
	}
	h.mu.RUnlock()
	if len(conns) == 0 {
		return
	}

	b, _ := json.Marshal(update)
	for _, c := range conns {
		_ = c.WriteMessage(websocket.TextMessage, b)
	}
}
