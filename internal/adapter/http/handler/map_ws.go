package handler

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/Temutjin2k/vehicle-tracker/internal/domain/models"
	"github.com/Temutjin2k/vehicle-tracker/pkg/logger"
	wrap "github.com/Temutjin2k/vehicle-tracker/pkg/logger/wrapper"
	ws "github.com/Temutjin2k/vehicle-tracker/pkg/wsHub"
)

type (
	SubscriberHub interface {
		Add(conn *ws.Conn) error
		Delete(id uuid.UUID) error
	}

	// Replayer returns the latest command of each kind, so a late renderer starts from the current view.
	Replayer interface {
		Replay() []models.MapCommand
	}
)

type MapSocket struct {
	hub      SubscriberHub
	replay   Replayer
	upgrader websocket.Upgrader
	l        logger.Logger
}

func NewMapSocket(hub SubscriberHub, replay Replayer, l logger.Logger) *MapSocket {
	return &MapSocket{
		hub:    hub,
		replay: replay,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// renderers are served from any origin
			CheckOrigin: func(*http.Request) bool { return true },
		},
		l: l,
	}
}

// Subscribe upgrades the request and streams map commands until the client leaves.
func (h *MapSocket) Subscribe(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "map_subscribe")

	c, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the error response
		h.l.Warn(ctx, "websocket upgrade failed", "error", err.Error())
		return
	}

	// the request context ends once the handler returns
	conn := ws.NewConn(context.WithoutCancel(ctx), uuid.New(), c)
	defer conn.Close()

	if h.replay != nil {
		for _, cmd := range h.replay.Replay() {
			if err := conn.Send(cmd); err != nil {
				h.l.Warn(ctx, "failed to replay map state", "error", err.Error())
				return
			}
		}
	}

	if err := h.hub.Add(conn); err != nil {
		h.l.Error(ctx, "failed to register map subscriber", err)
		return
	}
	defer h.hub.Delete(conn.ID())

	h.l.Info(ctx, "map subscriber attached", "client_id", conn.ID().String())

	// renderers don't talk back; reading keeps control frames flowing
	err = conn.Listen(func([]byte) error { return nil })
	h.l.Info(ctx, "map subscriber left", "client_id", conn.ID().String(), "reason", errString(err))
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
