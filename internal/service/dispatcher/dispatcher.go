package dispatcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Temutjin2k/vehicle-tracker/internal/domain/models"
	"github.com/Temutjin2k/vehicle-tracker/internal/domain/types"
	"github.com/Temutjin2k/vehicle-tracker/pkg/logger"
	wrap "github.com/Temutjin2k/vehicle-tracker/pkg/logger/wrapper"
	"github.com/Temutjin2k/vehicle-tracker/pkg/metrics"
)

// Handler receives decoded updates for the tracked device.
type Handler interface {
	HandleLocation(ctx context.Context, u LocationUpdate)
	HandleStatus(ctx context.Context, u StatusUpdate)
}

type Dispatcher struct {
	imei    string
	handler Handler
	log     logger.Logger
}

func New(imei string, handler Handler, log logger.Logger) *Dispatcher {
	return &Dispatcher{
		imei:    imei,
		handler: handler,
		log:     log,
	}
}

// entity is the addressing part shared by every payload
type entity struct {
	IMEI     string `json:"imei"`
	DeviceID string `json:"device_id"`
}

func (e entity) id() string {
	if e.IMEI != "" {
		return e.IMEI
	}
	return e.DeviceID
}

// Decode parses a raw frame into an Update addressed to trackedID.
func Decode(raw []byte, trackedID string) (Update, error) {
	var env models.Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrMalformedMessage, err)
	}

	switch env.Type {
	case types.MessageLocationUpdate, types.MessageStatusUpdate:
	default:
		return nil, fmt.Errorf("%w: %q", types.ErrUnknownMessageType, env.Type)
	}

	if len(env.Data) == 0 || string(env.Data) == "null" {
		return nil, fmt.Errorf("%w: empty data", types.ErrMalformedMessage)
	}

	var e entity
	if err := json.Unmarshal(env.Data, &e); err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrMalformedMessage, err)
	}
	if e.id() != trackedID {
		return nil, types.ErrForeignEntity
	}

	switch env.Type {
	case types.MessageLocationUpdate:
		var s models.LocationSample
		if err := json.Unmarshal(env.Data, &s); err != nil {
			return nil, fmt.Errorf("%w: location data: %v", types.ErrMalformedMessage, err)
		}
		return LocationUpdate{Timestamp: env.Timestamp, Sample: s}, nil
	default:
		var s models.StatusSample
		if err := json.Unmarshal(env.Data, &s); err != nil {
			return nil, fmt.Errorf("%w: status data: %v", types.ErrMalformedMessage, err)
		}
		return StatusUpdate{Timestamp: env.Timestamp, Sample: s}, nil
	}
}

// Dispatch decodes one frame and calls the matching handler. Bad frames are
// logged and dropped; frames for other devices are ignored silently.
func (d *Dispatcher) Dispatch(ctx context.Context, raw []byte) {
	ctx = wrap.WithAction(ctx, types.ActionDispatch)

	u, err := Decode(raw, d.imei)
	if err != nil {
		switch {
		case errors.Is(err, types.ErrForeignEntity):
			metrics.RecordPushMessage("unknown", "foreign")
		case errors.Is(err, types.ErrUnknownMessageType):
			metrics.RecordPushMessage("unknown", "ignored")
			d.log.Debug(ctx, "ignoring push message", "reason", err.Error())
		default:
			metrics.RecordPushMessage("unknown", "malformed")
			d.log.Warn(ctx, "dropping malformed push message", "error", err.Error(), "size", len(raw))
		}
		return
	}

	switch u := u.(type) {
	case LocationUpdate:
		metrics.RecordPushMessage(types.MessageLocationUpdate.String(), "applied")
		d.handler.HandleLocation(ctx, u)
	case StatusUpdate:
		metrics.RecordPushMessage(types.MessageStatusUpdate.String(), "applied")
		d.handler.HandleStatus(ctx, u)
	}
}
