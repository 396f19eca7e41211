package models

import (
	"encoding/json"
	"time"
)

type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// LocationSample is a GPS fix as sent by the bootstrap snapshot or a
// location_update message. Nil fields were absent or null on the wire.
type LocationSample struct {
	IMEI          string     `json:"imei,omitempty"`
	Latitude      *float64   `json:"latitude,omitempty"`
	Longitude     *float64   `json:"longitude,omitempty"`
	Speed         *float64   `json:"speed,omitempty"`
	Course        *float64   `json:"course,omitempty"`
	Altitude      *float64   `json:"altitude,omitempty"`
	Timestamp     *time.Time `json:"timestamp,omitempty"`
	LocationValid *bool      `json:"location_valid,omitempty"`
}

// UnmarshalJSON accepts the short lat/lon spelling used by some snapshot
// payloads. An unreadable timestamp is dropped, not fatal.
func (s *LocationSample) UnmarshalJSON(data []byte) error {
	type plain LocationSample
	var aux struct {
		plain
		Timestamp json.RawMessage `json:"timestamp"`
		Lat       *float64        `json:"lat"`
		Lon       *float64        `json:"lon"`
		Lng       *float64        `json:"lng"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	*s = LocationSample(aux.plain)
	s.Timestamp = ParseTimestamp(aux.Timestamp)
	if s.Latitude == nil {
		s.Latitude = aux.Lat
	}
	if s.Longitude == nil {
		s.Longitude = aux.Lon
	}
	if s.Longitude == nil {
		s.Longitude = aux.Lng
	}
	return nil
}

// Coordinate returns the fix position when both axes are present.
func (s LocationSample) Coordinate() (Coordinate, bool) {
	if s.Latitude == nil || s.Longitude == nil {
		return Coordinate{}, false
	}
	return Coordinate{Latitude: *s.Latitude, Longitude: *s.Longitude}, true
}

// Valid reports whether the fix may move the vehicle: coordinates present
// and not explicitly flagged invalid.
func (s LocationSample) Valid() bool {
	if s.LocationValid != nil && !*s.LocationValid {
		return false
	}
	_, ok := s.Coordinate()
	return ok
}
