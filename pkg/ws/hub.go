package ws

import (
	"encoding/json"
	"sync"

	"CrediAgenda/pkg/zlog"
)

// Hub tracks the websocket connections of logged-in staff, keyed by user id.
// One user may hold several connections (browser tabs, mobile app).
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]map[*Client]struct{}),
	}
}

func (h *Hub) Register(c *Client) {
	if c == nil || c.userID == "" {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	set := h.clients[c.userID]
	if set == nil {
		set = make(map[*Client]struct{})
		h.clients[c.userID] = set
	}
	set[c] = struct{}{}
}

func (h *Hub) Unregister(c *Client) {
	if c == nil || c.userID == "" {
		return
	}
	h.mu.Lock()
	set := h.clients[c.userID]
	if set != nil {
		delete(set, c)
		if len(set) == 0 {
			delete(h.clients, c.userID)
		}
	}
	h.mu.Unlock()
	c.Close()
}

// Send delivers payload to every live connection of userID. Returns false
// when the user has no connection, so the caller can fall back to another
// channel.
func (h *Hub) Send(userID string, payload []byte) bool {
	if userID == "" || len(payload) == 0 {
		return false
	}

	h.mu.RLock()
	set := h.clients[userID]
	targets := make([]*Client, 0, len(set))
	for c := range set {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	if len(targets) == 0 {
		return false
	}

	delivered := false
	for _, c := range targets {
		if c.Enqueue(payload) {
			delivered = true
		}
	}
	return delivered
}

// SendJSON marshals v and delivers it to userID.
func (h *Hub) SendJSON(userID string, v interface{}) bool {
	data, err := json.Marshal(v)
	if err != nil {
		zlog.Error("ws payload marshal failed: " + err.Error())
		return false
	}
	return h.Send(userID, data)
}

// Online reports whether userID has at least one live connection.
func (h *Hub) Online(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID]) > 0
}
