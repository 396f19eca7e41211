package models

import (
	"encoding/json"
	"time"

	"github.com/Temutjin2k/vehicle-tracker/internal/domain/types"
)

// Envelope is the push channel frame.
type Envelope struct {
	Type      types.MessageType `json:"type"`
	Timestamp *time.Time        `json:"timestamp,omitempty"`
	Data      json.RawMessage   `json:"data"`
}

func (e *Envelope) UnmarshalJSON(data []byte) error {
	type plain Envelope
	var aux struct {
		plain
		Timestamp json.RawMessage `json:"timestamp"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	*e = Envelope(aux.plain)
	e.Timestamp = ParseTimestamp(aux.Timestamp)
	return nil
}

// MapCommand is one call to the rendering surface in wire form.
type MapCommand struct {
	Type      types.MapCommandType `json:"type"`
	IMEI      string               `json:"imei"`
	Timestamp time.Time            `json:"timestamp"`
	Data      any                  `json:"data"`
}
