package models

import (
	"time"

	"github.com/Temutjin2k/vehicle-tracker/internal/domain/types"
)

// LocationState holds the last known fix fields, each retained independently.
type LocationState struct {
	Latitude  *float64   `json:"latitude,omitempty"`
	Longitude *float64   `json:"longitude,omitempty"`
	Course    *float64   `json:"course,omitempty"`
	Altitude  *float64   `json:"altitude,omitempty"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

type StatusState struct {
	Ignition   *types.Ignition         `json:"ignition,omitempty"`
	Battery    Battery                 `json:"battery"`
	Signal     Signal                  `json:"signal"`
	Device     DeviceFlags             `json:"device_status"`
	LastSeen   *time.Time              `json:"last_seen,omitempty"`
	Connection *types.ConnectionStatus `json:"connection_status,omitempty"`
}

// CompositeState is the merged view of one vehicle.
type CompositeState struct {
	Vehicle    TrackedVehicle `json:"vehicle"`
	Location   LocationState  `json:"location"`
	Status     StatusState    `json:"status"`
	Speed      *float64       `json:"speed,omitempty"`
	Historical bool           `json:"location_is_historical"`
}

// Position returns the last known valid coordinates.
func (s CompositeState) Position() (Coordinate, bool) {
	if s.Location.Latitude == nil || s.Location.Longitude == nil {
		return Coordinate{}, false
	}
	return Coordinate{Latitude: *s.Location.Latitude, Longitude: *s.Location.Longitude}, true
}
