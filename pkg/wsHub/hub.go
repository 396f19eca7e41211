package ws

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/Temutjin2k/vehicle-tracker/pkg/logger"
	wrap "github.com/Temutjin2k/vehicle-tracker/pkg/logger/wrapper"
	"github.com/Temutjin2k/vehicle-tracker/pkg/metrics"
)

var (
	ErrEmptyConn      = errors.New("connection is empty")
	ErrConnIsNotFound = errors.New("connection not found")
)

// ConnectionHub keeps the websocket connections of attached map renderers.
type ConnectionHub struct {
	clients map[uuid.UUID]*Conn
	l       logger.Logger
	mu      sync.Mutex
}

func NewConnHub(l logger.Logger) *ConnectionHub {
	return &ConnectionHub{
		clients: make(map[uuid.UUID]*Conn),
		l:       l,
	}
}

// Add registers a connection. An existing connection with the same id is closed.
func (h *ConnectionHub) Add(newConn *Conn) error {
	if newConn == nil {
		return ErrEmptyConn
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	ctx := wrap.WithAction(context.Background(), "add_ws_connection")

	if existing, ok := h.clients[newConn.id]; ok {
		h.l.Warn(ctx, "replacing existing connection", "conn_id", existing.id.String())
		if err := existing.Close(); err != nil {
			h.l.Warn(ctx, "failed to close existing conn", "conn_id", existing.id.String(), "err", err.Error())
		}
	}

	h.clients[newConn.id] = newConn
	metrics.MapSubscribersGauge.Set(float64(len(h.clients)))

	return nil
}

// Delete removes and closes the connection with the given id.
func (h *ConnectionHub) Delete(id uuid.UUID) error {
	h.mu.Lock()
	conn, ok := h.clients[id]
	if ok {
		delete(h.clients, id)
	}
	metrics.MapSubscribersGauge.Set(float64(len(h.clients)))
	h.mu.Unlock()

	if !ok {
		return ErrConnIsNotFound
	}

	if err := conn.Close(); err != nil {
		h.l.Debug(wrap.WithAction(context.Background(), "ws_connection_delete"),
			"failed to close conn", "conn_id", id.String(), "err", err.Error())
	}
	return nil
}

// Broadcast sends msg to every client and drops the ones that fail.
// It returns the number of clients that received it.
func (h *ConnectionHub) Broadcast(msg any) int {
	clients := h.snapshot()

	sent := 0
	for _, conn := range clients {
		if err := conn.Send(msg); err != nil {
			h.l.Debug(wrap.WithAction(context.Background(), "ws_broadcast"),
				"dropping map subscriber", "conn_id", conn.id.String(), "err", err.Error())
			_ = h.Delete(conn.id)
			continue
		}
		sent++
	}
	return sent
}

// SendTo sends a message to one client.
func (h *ConnectionHub) SendTo(id uuid.UUID, msg any) error {
	conn, err := h.GetConn(id)
	if err != nil {
		return err
	}
	return conn.Send(msg)
}

// Close closes every websocket connection.
func (h *ConnectionHub) Close() {
	ctx := wrap.WithAction(context.Background(), "hub_close")

	for _, conn := range h.snapshot() {
		_ = h.Delete(conn.id)
	}

	h.l.Info(ctx, "all websocket connections closed gracefully")
}

// Len returns the number of attached clients.
func (h *ConnectionHub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// GetConn returns the connection by id.
func (h *ConnectionHub) GetConn(id uuid.UUID) (*Conn, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conn, ok := h.clients[id]
	if !ok {
		return nil, ErrConnIsNotFound
	}
	return conn, nil
}

func (h *ConnectionHub) snapshot() []*Conn {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients := make([]*Conn, 0, len(h.clients))
	for _, conn := range h.clients {
		clients = append(clients, conn)
	}
	return clients
}
