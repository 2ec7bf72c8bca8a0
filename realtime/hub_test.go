package realtime

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"saree-api/models"
)

type fakeConn struct {
	mu      sync.Mutex
	frames  []Message
	closed  bool
	failing bool
	block   chan struct{}
}

func (f *fakeConn) WriteJSON(v interface{}) error {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return errors.New("broken pipe")
	}
	f.frames = append(f.frames, v.(Message))
	return nil
}

func (f *fakeConn) Close() error {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
	return nil
}

func (f *fakeConn) received() []Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Message, len(f.frames))
	copy(out, f.frames)
	return out
}

func startClient(conn *fakeConn) *Client {
	c := NewClient(conn)
	c.Start()
	return c
}

func TestSendToUserDeliversNotificationFrame(t *testing.T) {
	hub := NewHub()
	conn := &fakeConn{}
	client := startClient(conn)
	defer client.Close()
	user := uuid.New()
	hub.Register(user, models.RoleCustomer, client)

	assert.True(t, hub.SendToUser(user, map[string]string{"title": "hi"}))
	require.Eventually(t, func() bool { return len(conn.received()) == 1 }, time.Second, 5*time.Millisecond)

	frame := conn.received()[0]
	assert.Equal(t, "notification", frame.Type)
	assert.Equal(t, map[string]string{"title": "hi"}, frame.Data)
}

func TestSendToUnknownUserIsNoop(t *testing.T) {
	hub := NewHub()
	assert.False(t, hub.SendToUser(uuid.New(), "x"))
}

func TestRegisterLastWins(t *testing.T) {
	hub := NewHub()
	user := uuid.New()
	first, second := &fakeConn{}, &fakeConn{}
	c1, c2 := startClient(first), startClient(second)
	defer c1.Close()
	defer c2.Close()

	hub.Register(user, models.RoleDriver, c1)
	hub.Register(user, models.RoleDriver, c2)
	assert.Equal(t, 1, hub.Count())

	hub.SendToUser(user, "ping")
	require.Eventually(t, func() bool { return len(second.received()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Empty(t, first.received())
	assert.False(t, c1.Closed(), "replaced client stays open")

	// the stale client unregistering must not evict the new one
	hub.Unregister(c1)
	assert.True(t, hub.Online(user))

	hub.Unregister(c2)
	assert.False(t, hub.Online(user))
	hub.Unregister(c2)
	hub.Unregister(NewClient(&fakeConn{}))
}

func TestBroadcastToRoleOnlyReachesThatRole(t *testing.T) {
	hub := NewHub()
	drivers := []*fakeConn{{}, {}}
	customer := &fakeConn{}
	for _, d := range drivers {
		c := startClient(d)
		defer c.Close()
		hub.Register(uuid.New(), models.RoleDriver, c)
	}
	cc := startClient(customer)
	defer cc.Close()
	hub.Register(uuid.New(), models.RoleCustomer, cc)

	assert.Equal(t, 2, hub.BroadcastToRole(models.RoleDriver, "new order"))
	for _, d := range drivers {
		d := d
		require.Eventually(t, func() bool { return len(d.received()) == 1 }, time.Second, 5*time.Millisecond)
	}
	assert.Never(t, func() bool { return len(customer.received()) > 0 }, 50*time.Millisecond, 5*time.Millisecond)
}

func TestBroadcastSurvivesFailingClient(t *testing.T) {
	hub := NewHub()
	bad := &fakeConn{failing: true}
	good := &fakeConn{}
	cb, cg := startClient(bad), startClient(good)
	defer cg.Close()
	hub.Register(uuid.New(), models.RoleDriver, cb)
	hub.Register(uuid.New(), models.RoleDriver, cg)

	hub.BroadcastToRole(models.RoleDriver, "first")
	require.Eventually(t, cb.Closed, time.Second, 5*time.Millisecond)

	hub.BroadcastToRole(models.RoleDriver, "second")
	require.Eventually(t, func() bool { return len(good.received()) == 2 }, time.Second, 5*time.Millisecond)
}

func TestSlowClientDropsInsteadOfBlocking(t *testing.T) {
	hub := NewHub()
	conn := &fakeConn{block: make(chan struct{})}
	client := startClient(conn)
	user := uuid.New()
	hub.Register(user, models.RoleCustomer, client)

	done := make(chan int)
	go func() {
		accepted := 0
		for i := 0; i < sendBuffer*3; i++ {
			if hub.SendToUser(user, i) {
				accepted++
			}
		}
		done <- accepted
	}()

	select {
	case accepted := <-done:
		assert.Less(t, accepted, sendBuffer*3)
	case <-time.After(time.Second):
		t.Fatal("SendToUser blocked on a slow client")
	}
	client.Close()
	close(conn.block)
}

func TestAuthFrameMustMatchSession(t *testing.T) {
	hub := NewHub()
	id := Identity{UserID: uuid.New(), Role: models.RoleDriver}
	conn := &fakeConn{}
	client := startClient(conn)
	defer client.Close()

	hub.handleInbound(client, id, inbound{Type: "auth", UserID: uuid.NewString(), UserType: "driver"})
	assert.False(t, hub.Online(id.UserID))

	hub.handleInbound(client, id, inbound{Type: "auth", UserID: id.UserID.String(), UserType: "admin"})
	assert.False(t, hub.Online(id.UserID))

	hub.handleInbound(client, id, inbound{Type: "subscribe"})
	assert.False(t, hub.Online(id.UserID))

	hub.handleInbound(client, id, inbound{Type: "auth", UserID: id.UserID.String(), UserType: "driver"})
	assert.True(t, hub.Online(id.UserID))

	require.Eventually(t, func() bool { return len(conn.received()) == 3 }, time.Second, 5*time.Millisecond)
	frames := conn.received()
	assert.Equal(t, "auth_error", frames[0].Type)
	assert.Equal(t, "auth_error", frames[1].Type)
	assert.Equal(t, "auth_ok", frames[2].Type)
}
