package render

import (
	"context"

	"github.com/Temutjin2k/vehicle-tracker/internal/domain/models"
)

type Broadcaster interface {
	Broadcast(msg any) int
}

// HubSink writes commands to every websocket renderer attached to the hub.
type HubSink struct {
	hub Broadcaster
}

func NewHubSink(hub Broadcaster) HubSink {
	return HubSink{hub: hub}
}

func (s HubSink) Send(_ context.Context, cmd models.MapCommand) error {
	s.hub.Broadcast(cmd)
	return nil
}
