package reconciler

import "strings"

// Change is a bitmask of composite fields that actually changed value.
type Change uint32

const (
	ChangedPosition Change = 1 << iota
	ChangedCourse
	ChangedAltitude
	ChangedSpeed
	ChangedTimestamp
	ChangedIgnition
	ChangedBattery
	ChangedSignal
	ChangedDevice
	ChangedLastSeen
	ChangedConnection
	ChangedHistorical
)

var changeNames = []struct {
	c    Change
	name string
}{
	{ChangedPosition, "position"},
	{ChangedCourse, "course"},
	{ChangedAltitude, "altitude"},
	{ChangedSpeed, "speed"},
	{ChangedTimestamp, "timestamp"},
	{ChangedIgnition, "ignition"},
	{ChangedBattery, "battery"},
	{ChangedSignal, "signal"},
	{ChangedDevice, "device"},
	{ChangedLastSeen, "last_seen"},
	{ChangedConnection, "connection"},
	{ChangedHistorical, "historical"},
}

// Has reports whether any of the flags in o is set.
func (c Change) Has(o Change) bool {
	return c&o != 0
}

func (c Change) Empty() bool {
	return c == 0
}

// Fields lists changed field names, for logs.
func (c Change) Fields() []string {
	var out []string
	for _, n := range changeNames {
		if c.Has(n.c) {
			out = append(out, n.name)
		}
	}
	return out
}

func (c Change) String() string {
	if c == 0 {
		return "none"
	}
	return strings.Join(c.Fields(), ",")
}
