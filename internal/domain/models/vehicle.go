package models

import "github.com/Temutjin2k/vehicle-tracker/internal/domain/types"

// TrackedVehicle is the identity of the tracked entity, fixed for a session.
type TrackedVehicle struct {
	IMEI         string                `json:"imei"`
	Name         string                `json:"name"`
	Registration string                `json:"registration"`
	Category     types.VehicleCategory `json:"category"`
}

// Bootstrap is the one-shot snapshot fetched before the socket attaches.
type Bootstrap struct {
	Vehicle              TrackedVehicle  `json:"vehicle"`
	HasLocation          bool            `json:"has_location"`
	HasStatus            bool            `json:"has_status"`
	LocationData         *LocationSample `json:"location_data,omitempty"`
	StatusData           *StatusSample   `json:"status_data,omitempty"`
	LocationIsHistorical bool            `json:"location_is_historical"`
}
