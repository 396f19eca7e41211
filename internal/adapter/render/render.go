// Package render turns map calls into MapCommand messages for attached renderers.
package render

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Temutjin2k/vehicle-tracker/internal/domain/models"
	"github.com/Temutjin2k/vehicle-tracker/internal/domain/types"
)

type Sink interface {
	Send(ctx context.Context, cmd models.MapCommand) error
}

type MarkerData struct {
	Position models.Coordinate `json:"position"`
	Icon     models.IconState  `json:"icon"`
}

// RotateData carries the absolute bearing; Delta is the signed arc from the
// previous bearing for animated rotation.
type RotateData struct {
	Bearing float64 `json:"bearing"`
	Delta   float64 `json:"delta"`
}

type PolylineData struct {
	Points []models.Coordinate  `json:"points"`
	Style  models.PolylineStyle `json:"style"`
}

type PanData struct {
	Position models.Coordinate `json:"position"`
}

type ConnectionData struct {
	Event types.ConnEvent `json:"event"`
}

// replayOrder is the order in which a new subscriber receives the current map
var replayOrder = []types.MapCommandType{
	types.CommandConnectionState,
	types.CommandSetPolyline,
	types.CommandSetMarker,
	types.CommandRotate,
	types.CommandPanTo,
	types.CommandUpdateInfo,
}

// Commands is safe for concurrent use.
type Commands struct {
	imei  string
	sinks []Sink
	now   func() time.Time

	mu   sync.Mutex
	last map[types.MapCommandType]models.MapCommand
}

func New(imei string, sinks ...Sink) *Commands {
	return &Commands{
		imei:  imei,
		sinks: sinks,
		now:   time.Now,
		last:  make(map[types.MapCommandType]models.MapCommand),
	}
}

func (c *Commands) SetMarkerPosition(ctx context.Context, pos models.Coordinate, icon models.IconState) error {
	return c.send(ctx, types.CommandSetMarker, MarkerData{Position: pos, Icon: icon})
}

func (c *Commands) Rotate(ctx context.Context, bearing, delta float64) error {
	return c.send(ctx, types.CommandRotate, RotateData{Bearing: bearing, Delta: delta})
}

func (c *Commands) SetPolyline(ctx context.Context, points []models.Coordinate, style models.PolylineStyle) error {
	cp := make([]models.Coordinate, len(points))
	copy(cp, points)
	return c.send(ctx, types.CommandSetPolyline, PolylineData{Points: cp, Style: style})
}

func (c *Commands) PanTo(ctx context.Context, pos models.Coordinate) error {
	return c.send(ctx, types.CommandPanTo, PanData{Position: pos})
}

func (c *Commands) UpdateInfo(ctx context.Context, panel models.InfoPanel) error {
	return c.send(ctx, types.CommandUpdateInfo, panel)
}

func (c *Commands) ConnectionState(ctx context.Context, ev types.ConnEvent) error {
	return c.send(ctx, types.CommandConnectionState, ConnectionData{Event: ev})
}

// Replay returns the latest command of every type, so a renderer attaching
// late can draw the current map.
func (c *Commands) Replay() []models.MapCommand {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]models.MapCommand, 0, len(c.last))
	for _, t := range replayOrder {
		if cmd, ok := c.last[t]; ok {
			if t == types.CommandRotate {
				// a fresh renderer starts north-up, delta is relative to that
				rd := cmd.Data.(RotateData)
				rd.Delta = 0
				cmd.Data = rd
			}
			out = append(out, cmd)
		}
	}
	return out
}

func (c *Commands) send(ctx context.Context, t types.MapCommandType, data any) error {
	cmd := models.MapCommand{
		Type:      t,
		IMEI:      c.imei,
		Timestamp: c.now().UTC(),
		Data:      data,
	}

	c.mu.Lock()
	c.last[t] = cmd
	c.mu.Unlock()

	var errs []error
	for _, s := range c.sinks {
		if err := s.Send(ctx, cmd); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
