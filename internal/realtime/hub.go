package realtime

import (
	"encoding/json"
	"log/slog"
	"sync"
)

// Message is the envelope pushed to websocket clients.
type Message struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// Pusher delivers a message to every live connection of a user.
type Pusher interface {
	SendToUser(userID uint, msg *Message)
}

// Hub tracks open connections per user.
type Hub struct {
	mu        sync.RWMutex
	userConns map[uint]map[*Client]struct{}
	logger    *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		userConns: make(map[uint]map[*Client]struct{}),
		logger:    logger,
	}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.userConns[c.UserID] == nil {
		h.userConns[c.UserID] = make(map[*Client]struct{})
	}
	h.userConns[c.UserID][c] = struct{}{}
}

// Unregister drops the client and closes its send queue. Safe to call more than once.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if conns, ok := h.userConns[c.UserID]; ok {
		delete(conns, c)
		if len(conns) == 0 {
			delete(h.userConns, c.UserID)
		}
	}
	h.mu.Unlock()
	c.close()
}

// SendToUser queues msg for every connection of userID. Slow clients whose queue is full are
// disconnected rather than blocking the caller.
func (h *Hub) SendToUser(userID uint, msg *Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("marshal realtime message", "error", err, "event", msg.Event)
		return
	}

	h.mu.RLock()
	clients := make([]*Client, 0, len(h.userConns[userID]))
	for c := range h.userConns[userID] {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		if !c.enqueue(data) {
			h.Unregister(c)
		}
	}
}

func (h *Hub) IsOnline(userID uint) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.userConns[userID]) > 0
}
