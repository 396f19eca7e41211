package models

import (
	"encoding/json"
	"time"

	"github.com/Temutjin2k/vehicle-tracker/internal/domain/types"
)

type Battery struct {
	Level    *int     `json:"level,omitempty"`
	Voltage  *float64 `json:"voltage,omitempty"`
	Status   *string  `json:"status,omitempty"`
	Charging *bool    `json:"charging,omitempty"`
}

type Signal struct {
	Level      *int    `json:"level,omitempty"`
	Bars       *int    `json:"bars,omitempty"`
	Status     *string `json:"status,omitempty"`
	Percentage *int    `json:"percentage,omitempty"`
}

type DeviceFlags struct {
	Activated            *bool `json:"activated,omitempty"`
	GPSTracking          *bool `json:"gps_tracking,omitempty"`
	OilConnected         *bool `json:"oil_connected,omitempty"`
	ElectricityConnected *bool `json:"electricity_connected,omitempty"`
	Satellites           *int  `json:"satellites,omitempty"`
}

// StatusSample is a device status report. Nil fields were absent or null.
type StatusSample struct {
	IMEI       string                  `json:"imei,omitempty"`
	Ignition   *types.Ignition         `json:"ignition,omitempty"`
	Speed      *float64                `json:"speed,omitempty"`
	Battery    *Battery                `json:"battery,omitempty"`
	Signal     *Signal                 `json:"signal,omitempty"`
	Device     *DeviceFlags            `json:"device_status,omitempty"`
	LastSeen   *time.Time              `json:"last_seen,omitempty"`
	Connection *types.ConnectionStatus `json:"connection_status,omitempty"`
}

// UnmarshalJSON drops an unreadable last_seen instead of failing the report.
func (s *StatusSample) UnmarshalJSON(data []byte) error {
	type plain StatusSample
	var aux struct {
		plain
		LastSeen json.RawMessage `json:"last_seen"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	*s = StatusSample(aux.plain)
	s.LastSeen = ParseTimestamp(aux.LastSeen)
	return nil
}
