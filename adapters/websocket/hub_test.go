package websocket

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// Clients built without a connection are enough for the hub bookkeeping:
// nothing here starts their pumps.
func newTestClient(sessionID string) *Client {
	return NewClient(nil, sessionID)
}

func TestHub_RoutesBySession(t *testing.T) {
	h := NewHub()
	a1, a2, b := newTestClient("a"), newTestClient("a"), newTestClient("b")
	h.Register(a1)
	h.Register(a2)
	h.Register(b)

	assert.Equal(t, 3, h.ClientCount())
	assert.Equal(t, 2, h.SessionClientCount("a"))

	assert.Equal(t, 2, h.SendToSession("a", []byte("hello a")))
	assert.Equal(t, "hello a", string(<-a1.send))
	assert.Equal(t, "hello a", string(<-a2.send))
	assert.Empty(t, b.send)

	assert.Zero(t, h.SendToSession("nobody", []byte("x")))
}

func TestHub_Unregister(t *testing.T) {
	h := NewHub()
	c := newTestClient("a")
	h.Register(c)

	h.Unregister(c)
	assert.Zero(t, h.ClientCount())
	assert.True(t, c.IsClosed())
	assert.Zero(t, h.SendToSession("a", []byte("x")))

	// unregistering twice is harmless
	h.Unregister(c)
}

func TestHub_CloseSession(t *testing.T) {
	h := NewHub()
	a, b := newTestClient("a"), newTestClient("b")
	h.Register(a)
	h.Register(b)

	h.CloseSession("a")

	assert.True(t, a.IsClosed())
	assert.False(t, b.IsClosed())
	assert.Equal(t, 1, h.ClientCount())
	assert.Error(t, a.SendMessage([]byte("late")))
}

func TestClient_SlowClientIsDisconnected(t *testing.T) {
	c := newTestClient("a")
	for i := 0; i < sendBuffer; i++ {
		assert.NoError(t, c.SendMessage([]byte("x")))
	}

	assert.Error(t, c.SendMessage([]byte("overflow")))
	assert.True(t, c.IsClosed())
	assert.Error(t, c.Context().Err())
}
