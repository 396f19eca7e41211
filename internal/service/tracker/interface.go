package tracker

import (
	"context"

	"github.com/Temutjin2k/vehicle-tracker/internal/domain/models"
	"github.com/Temutjin2k/vehicle-tracker/internal/domain/types"
)

type Bootstrapper interface {
	FetchTracking(ctx context.Context, imei string) (models.Bootstrap, error)
}

// Connection is the push socket.
type Connection interface {
	Connect(ctx context.Context) error
	Disconnect()
	State() types.ConnState
	Events() <-chan types.ConnEvent
	Messages() <-chan []byte
}

// Renderer is the map surface. Calls are discrete and idempotent.
type Renderer interface {
	SetMarkerPosition(ctx context.Context, pos models.Coordinate, icon models.IconState) error
	Rotate(ctx context.Context, bearing, delta float64) error
	SetPolyline(ctx context.Context, points []models.Coordinate, style models.PolylineStyle) error
	PanTo(ctx context.Context, pos models.Coordinate) error
	UpdateInfo(ctx context.Context, panel models.InfoPanel) error
	ConnectionState(ctx context.Context, ev types.ConnEvent) error
}

type Geocoder interface {
	Resolve(ctx context.Context, c models.Coordinate) models.Address
}
