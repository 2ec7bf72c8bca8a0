// Package realtime keeps the registry of live sockets and pushes
// notifications to them.
package realtime

import (
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"saree-api/metrics"
	"saree-api/models"
)

// Hub maps a user id to that user's single live client.
type Hub struct {
	mu      sync.RWMutex
	clients map[uuid.UUID]*Client
}

func NewHub() *Hub {
	return &Hub{clients: make(map[uuid.UUID]*Client)}
}

// Register binds client to userID. The last registration wins; a replaced
// client is left open but is no longer reachable through the hub.
func (h *Hub) Register(userID uuid.UUID, role models.UserRole, client *Client) {
	client.setIdentity(userID, role)

	h.mu.Lock()
	prev, replaced := h.clients[userID]
	h.clients[userID] = client
	h.mu.Unlock()

	if replaced && prev != client {
		_, prevRole := prev.Identity()
		metrics.SocketConnections.WithLabelValues(string(prevRole)).Dec()
	}
	if !replaced || prev != client {
		metrics.SocketConnections.WithLabelValues(string(role)).Inc()
	}
	logrus.WithFields(logrus.Fields{"user_id": userID, "role": role, "replaced": replaced}).Info("ws: client registered")
}

// Unregister removes client only if it is still the registered one for its
// user. Unknown or already replaced clients are ignored.
func (h *Hub) Unregister(client *Client) {
	userID, role := client.Identity()
	if userID == uuid.Nil {
		return
	}
	h.mu.Lock()
	current, ok := h.clients[userID]
	if ok && current == client {
		delete(h.clients, userID)
	}
	h.mu.Unlock()

	if ok && current == client {
		metrics.SocketConnections.WithLabelValues(string(role)).Dec()
		logrus.WithField("user_id", userID).Info("ws: client unregistered")
	}
}

// SendToUser pushes a notification frame to userID. It never blocks and
// reports whether the frame was queued on a live client.
func (h *Hub) SendToUser(userID uuid.UUID, payload interface{}) bool {
	h.mu.RLock()
	client, ok := h.clients[userID]
	h.mu.RUnlock()
	if !ok {
		metrics.NotificationsPushed.WithLabelValues("offline").Inc()
		return false
	}
	return deliver(client, payload)
}

// BroadcastToRole pushes to every live client registered with role and
// returns how many accepted the frame.
func (h *Hub) BroadcastToRole(role models.UserRole, payload interface{}) int {
	targets := h.snapshot(func(r models.UserRole) bool { return r == role })
	sent := 0
	for _, c := range targets {
		if deliver(c, payload) {
			sent++
		}
	}
	return sent
}

// BroadcastAll pushes to every live client.
func (h *Hub) BroadcastAll(payload interface{}) int {
	targets := h.snapshot(func(models.UserRole) bool { return true })
	sent := 0
	for _, c := range targets {
		if deliver(c, payload) {
			sent++
		}
	}
	return sent
}

// Online reports whether userID has a registered client.
func (h *Hub) Online(userID uuid.UUID) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.clients[userID]
	return ok
}

func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) snapshot(match func(models.UserRole) bool) []*Client {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]*Client, 0, len(h.clients))
	for _, c := range h.clients {
		if _, role := c.Identity(); match(role) {
			out = append(out, c)
		}
	}
	return out
}

func deliver(c *Client, payload interface{}) bool {
	if c.Enqueue(Message{Type: "notification", Data: payload}) {
		metrics.NotificationsPushed.WithLabelValues("delivered").Inc()
		return true
	}
	metrics.NotificationsPushed.WithLabelValues("dropped").Inc()
	return false
}
