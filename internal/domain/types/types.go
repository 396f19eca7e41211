package types

// ConnState is the push socket state
type ConnState string

const (
	StateDisconnected ConnState = "disconnected"
	StateConnecting   ConnState = "connecting"
	StateConnected    ConnState = "connected"
)

// ConnEvent is emitted by the connection manager for the UI layer
type ConnEvent string

const (
	ConnEventConnecting   ConnEvent = "connecting"
	ConnEventConnected    ConnEvent = "connected"
	ConnEventDisconnected ConnEvent = "disconnected"
	ConnEventFailed       ConnEvent = "failed"
)

// Ignition state reported by the device
type Ignition string

const (
	IgnitionOn  Ignition = "ON"
	IgnitionOff Ignition = "OFF"
)

// ConnectionStatus is the platform's classification of the device link
type ConnectionStatus string

const (
	DeviceConnected ConnectionStatus = "connected"
	DeviceStopped   ConnectionStatus = "stopped"
	DeviceInactive  ConnectionStatus = "inactive"
)

// Motion is derived from the current speed
type Motion string

const (
	MotionMoving Motion = "moving"
	MotionIdle   Motion = "idle"
)

// AddressState tracks the geocoding lifecycle of the displayed address
type AddressState string

const (
	AddressIdle      AddressState = "idle"
	AddressResolving AddressState = "resolving"
	AddressResolved  AddressState = "resolved"
	AddressFallback  AddressState = "fallback"
)

// VehicleCategory drives the marker icon
type VehicleCategory string

const (
	CategoryCar        VehicleCategory = "car"
	CategoryTruck      VehicleCategory = "truck"
	CategoryBus        VehicleCategory = "bus"
	CategoryMotorcycle VehicleCategory = "motorcycle"
)
