package types

// MessageType is the declared type of a push envelope
type MessageType string

func (t MessageType) String() string {
	return string(t)
}

const (
	MessageLocationUpdate MessageType = "location_update"
	MessageStatusUpdate   MessageType = "status_update"
)

// MapCommandType names a command sent to the rendering surface
type MapCommandType string

const (
	CommandSetMarker       MapCommandType = "set_marker_position"
	CommandRotate          MapCommandType = "rotate"
	CommandSetPolyline     MapCommandType = "set_polyline"
	CommandPanTo           MapCommandType = "pan_to"
	CommandUpdateInfo      MapCommandType = "update_info"
	CommandConnectionState MapCommandType = "connection_state"
)
