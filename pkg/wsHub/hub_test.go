package ws

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Temutjin2k/vehicle-tracker/pkg/logger"
)

// hubServer upgrades every request and registers it in the hub.
func hubServer(t *testing.T, hub *ConnectionHub) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		conn := NewConn(context.Background(), uuid.New(), raw)
		require.NoError(t, hub.Add(conn))
		_ = conn.Listen(func([]byte) error { return nil })
		_ = hub.Delete(conn.ID())
	}))
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	c, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestHub_Broadcast(t *testing.T) {
	hub := NewConnHub(logger.Discard())
	srv := hubServer(t, hub)

	a := dial(t, srv)
	b := dial(t, srv)
	require.Eventually(t, func() bool { return hub.Len() == 2 }, time.Second, 10*time.Millisecond)

	sent := hub.Broadcast(map[string]any{"type": "pan_to"})
	assert.Equal(t, 2, sent)

	for _, c := range []*websocket.Conn{a, b} {
		var got map[string]any
		require.NoError(t, c.SetReadDeadline(time.Now().Add(time.Second)))
		require.NoError(t, c.ReadJSON(&got))
		assert.Equal(t, "pan_to", got["type"])
	}
}

func TestHub_ClientLeaves(t *testing.T) {
	hub := NewConnHub(logger.Discard())
	srv := hubServer(t, hub)

	c := dial(t, srv)
	require.Eventually(t, func() bool { return hub.Len() == 1 }, time.Second, 10*time.Millisecond)

	c.Close()
	require.Eventually(t, func() bool { return hub.Len() == 0 }, time.Second, 10*time.Millisecond)
}

func TestHub_DeleteUnknown(t *testing.T) {
	hub := NewConnHub(logger.Discard())
	assert.ErrorIs(t, hub.Delete(uuid.New()), ErrConnIsNotFound)
	assert.ErrorIs(t, hub.Add(nil), ErrEmptyConn)
}

func TestHub_Close(t *testing.T) {
	hub := NewConnHub(logger.Discard())
	srv := hubServer(t, hub)

	dial(t, srv)
	require.Eventually(t, func() bool { return hub.Len() == 1 }, time.Second, 10*time.Millisecond)

	hub.Close()
	assert.Zero(t, hub.Len())
}
