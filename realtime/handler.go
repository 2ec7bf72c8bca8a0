package realtime

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"saree-api/models"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Identity is the authenticated owner of an upgrade request.
type Identity struct {
	UserID uuid.UUID
	Role   models.UserRole
}

// Authenticator resolves the session behind an upgrade request.
type Authenticator func(c *gin.Context) (Identity, bool)

type inbound struct {
	Type     string `json:"type"`
	UserID   string `json:"userId"`
	UserType string `json:"userType"`
}

// wsConn adapts a gorilla connection to Conn and Pinger.
type wsConn struct {
	conn *websocket.Conn
}

func (w wsConn) WriteJSON(v interface{}) error {
	_ = w.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return w.conn.WriteJSON(v)
}

func (w wsConn) Ping() error {
	return w.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
}

func (w wsConn) Close() error { return w.conn.Close() }

// Handler upgrades an authenticated request and waits for the client's
// auth frame before registering it with the hub.
func (h *Hub) Handler(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := auth(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "authentication required"})
			return
		}
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logrus.WithError(err).Warn("ws: upgrade failed")
			return
		}
		client := NewClient(wsConn{conn: conn})
		client.Start()
		h.readPump(conn, client, id)
	}
}

func (h *Hub) readPump(conn *websocket.Conn, client *Client, id Identity) {
	defer func() {
		h.Unregister(client)
		client.Close()
	}()
	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logrus.WithError(err).Debug("ws: unexpected close")
			}
			return
		}
		var msg inbound
		if err := json.Unmarshal(data, &msg); err != nil {
			logrus.WithError(err).Debug("ws: malformed frame ignored")
			continue
		}
		h.handleInbound(client, id, msg)
	}
}

// handleInbound processes one client frame. Only "auth" is understood.
func (h *Hub) handleInbound(client *Client, id Identity, msg inbound) {
	if msg.Type != "auth" {
		return
	}
	claimed, err := uuid.Parse(msg.UserID)
	if err != nil || claimed != id.UserID || models.UserRole(msg.UserType) != id.Role {
		logrus.WithFields(logrus.Fields{"session_user": id.UserID, "claimed_user": msg.UserID}).Warn("ws: auth frame does not match session")
		client.Enqueue(Message{Type: "auth_error", Data: gin.H{"error": "identity does not match session"}})
		return
	}
	h.Register(id.UserID, id.Role, client)
	client.Enqueue(Message{Type: "auth_ok", Data: gin.H{"userId": id.UserID, "userType": id.Role}})
}
