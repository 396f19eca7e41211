package models

import "github.com/Temutjin2k/vehicle-tracker/internal/domain/types"

type IconState struct {
	Category   types.VehicleCategory  `json:"category"`
	Motion     types.Motion           `json:"motion"`
	Ignition   types.Ignition         `json:"ignition,omitempty"`
	Connection types.ConnectionStatus `json:"connection_status,omitempty"`
	Historical bool                   `json:"historical"`
}

type PolylineStyle struct {
	Weight  int          `json:"weight"`
	Opacity float64      `json:"opacity"`
	Color   string       `json:"color"`
	Motion  types.Motion `json:"motion"`
}

type Address struct {
	Text     string             `json:"text"`
	State    types.AddressState `json:"state"`
	Provider string             `json:"provider,omitempty"`
}

// InfoPanel is the textual side panel next to the map.
type InfoPanel struct {
	State   CompositeState `json:"state"`
	Address Address        `json:"address"`
	Motion  types.Motion   `json:"motion"`
}

// Snapshot is the full engine view served over HTTP.
type Snapshot struct {
	State      CompositeState  `json:"state"`
	Address    Address         `json:"address"`
	Route      []Coordinate    `json:"route"`
	Style      PolylineStyle   `json:"route_style"`
	Bearing    *float64        `json:"bearing,omitempty"`
	Connection types.ConnState `json:"connection"`
}
