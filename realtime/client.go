package realtime

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"saree-api/logger"
	"saree-api/models"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4 * 1024
	sendBuffer     = 64
)

// Conn is the write side of a socket. The gorilla connection is wrapped to
// satisfy it in production; tests use in-memory fakes.
type Conn interface {
	WriteJSON(v interface{}) error
	Close() error
}

// Pinger is implemented by connections that need keepalive frames.
type Pinger interface {
	Ping() error
}

// Message is the frame pushed to clients.
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// Client is one live socket. Messages are queued on a buffered channel and
// written by a single goroutine, so a slow socket never blocks the sender.
type Client struct {
	conn Conn
	send chan Message
	done chan struct{}
	once sync.Once

	mu     sync.RWMutex
	userID uuid.UUID
	role   models.UserRole
}

func NewClient(conn Conn) *Client {
	return &Client{
		conn: conn,
		send: make(chan Message, sendBuffer),
		done: make(chan struct{}),
	}
}

// Identity returns who the client registered as. Zero until Register.
func (c *Client) Identity() (uuid.UUID, models.UserRole) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.userID, c.role
}

func (c *Client) setIdentity(userID uuid.UUID, role models.UserRole) {
	c.mu.Lock()
	c.userID, c.role = userID, role
	c.mu.Unlock()
}

// Start launches the writer goroutine.
func (c *Client) Start() {
	logger.Go("ws-writer", c.writePump)
}

// Enqueue queues msg without blocking. It reports false when the client is
// closed or its buffer is full.
func (c *Client) Enqueue(msg Message) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

// Close stops the writer and closes the socket. Safe to call repeatedly.
func (c *Client) Close() {
	c.once.Do(func() { close(c.done) })
}

// Closed reports whether Close has been called.
func (c *Client) Closed() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case msg := <-c.send:
			if err := c.conn.WriteJSON(msg); err != nil {
				logrus.WithError(err).WithField("user_id", c.userIDString()).Debug("ws: write failed")
				c.Close()
				return
			}
		case <-ticker.C:
			if p, ok := c.conn.(Pinger); ok {
				if err := p.Ping(); err != nil {
					c.Close()
					return
				}
			}
		case <-c.done:
			return
		}
	}
}

func (c *Client) userIDString() string {
	id, _ := c.Identity()
	return id.String()
}
