// Package reconciler holds the authoritative merged view of the tracked
// vehicle. Every field is sticky: a message that omits a field, or sends it
// as null, leaves the previous value in place.
package reconciler

import (
	"github.com/Temutjin2k/vehicle-tracker/internal/domain/models"
	"github.com/Temutjin2k/vehicle-tracker/internal/domain/types"
)

// Reconciler is not safe for concurrent use. It is owned by one engine loop.
type Reconciler struct {
	state models.CompositeState
}

func New(vehicle models.TrackedVehicle) *Reconciler {
	return &Reconciler{
		state: models.CompositeState{Vehicle: vehicle},
	}
}

// Seed applies the bootstrap snapshot.
func (r *Reconciler) Seed(b models.Bootstrap) Change {
	var c Change
	if b.HasLocation && b.LocationData != nil {
		c |= r.ApplyLocation(*b.LocationData)
		if _, ok := r.state.Position(); ok && b.LocationIsHistorical {
			r.state.Historical = true
			c |= ChangedHistorical
		}
	}
	if b.HasStatus && b.StatusData != nil {
		c |= r.ApplyStatus(*b.StatusData)
	}
	return c
}

// ApplyLocation merges a location sample. An invalid fix never moves the
// vehicle but may still refresh speed and timestamp.
func (r *Reconciler) ApplyLocation(s models.LocationSample) Change {
	loc := &r.state.Location

	c := flag(ChangedTimestamp, mergeTime(&loc.Timestamp, s.Timestamp))
	c |= flag(ChangedSpeed, merge(&r.state.Speed, s.Speed))

	if !s.Valid() {
		return c
	}

	lat := merge(&loc.Latitude, s.Latitude)
	lon := merge(&loc.Longitude, s.Longitude)
	c |= flag(ChangedPosition, lat || lon)
	c |= flag(ChangedCourse, merge(&loc.Course, s.Course))
	c |= flag(ChangedAltitude, merge(&loc.Altitude, s.Altitude))

	// a live fix supersedes a historical bootstrap position
	if r.state.Historical {
		r.state.Historical = false
		c |= ChangedHistorical
	}

	return c
}

// ApplyStatus merges a status sample field by field.
func (r *Reconciler) ApplyStatus(s models.StatusSample) Change {
	st := &r.state.Status

	c := flag(ChangedIgnition, merge(&st.Ignition, s.Ignition))
	c |= flag(ChangedSpeed, merge(&r.state.Speed, s.Speed))
	c |= flag(ChangedBattery, mergeBattery(&st.Battery, s.Battery))
	c |= flag(ChangedSignal, mergeSignal(&st.Signal, s.Signal))
	c |= flag(ChangedDevice, mergeDevice(&st.Device, s.Device))
	c |= flag(ChangedLastSeen, mergeTime(&st.LastSeen, s.LastSeen))
	c |= flag(ChangedConnection, merge(&st.Connection, s.Connection))

	return c
}

// Snapshot returns a deep copy of the composite state.
func (r *Reconciler) Snapshot() models.CompositeState {
	return cloneState(r.state)
}

// Position returns the last known valid coordinates.
func (r *Reconciler) Position() (models.Coordinate, bool) {
	return r.state.Position()
}

// Course returns the last known course.
func (r *Reconciler) Course() (float64, bool) {
	if r.state.Location.Course == nil {
		return 0, false
	}
	return *r.state.Location.Course, true
}

// Speed returns the last known speed, zero when never reported.
func (r *Reconciler) Speed() float64 {
	if r.state.Speed == nil {
		return 0
	}
	return *r.state.Speed
}

// Motion classifies the vehicle against a speed threshold (strictly greater means moving).
func (r *Reconciler) Motion(movingAbove float64) types.Motion {
	if r.Speed() > movingAbove {
		return types.MotionMoving
	}
	return types.MotionIdle
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneState(s models.CompositeState) models.CompositeState {
	out := s
	out.Speed = clonePtr(s.Speed)

	out.Location = models.LocationState{
		Latitude:  clonePtr(s.Location.Latitude),
		Longitude: clonePtr(s.Location.Longitude),
		Course:    clonePtr(s.Location.Course),
		Altitude:  clonePtr(s.Location.Altitude),
		Timestamp: clonePtr(s.Location.Timestamp),
	}

	out.Status = models.StatusState{
		Ignition:   clonePtr(s.Status.Ignition),
		LastSeen:   clonePtr(s.Status.LastSeen),
		Connection: clonePtr(s.Status.Connection),
		Battery: models.Battery{
			Level:    clonePtr(s.Status.Battery.Level),
			Voltage:  clonePtr(s.Status.Battery.Voltage),
			Status:   clonePtr(s.Status.Battery.Status),
			Charging: clonePtr(s.Status.Battery.Charging),
		},
		Signal: models.Signal{
			Level:      clonePtr(s.Status.Signal.Level),
			Bars:       clonePtr(s.Status.Signal.Bars),
			Status:     clonePtr(s.Status.Signal.Status),
			Percentage: clonePtr(s.Status.Signal.Percentage),
		},
		Device: models.DeviceFlags{
			Activated:            clonePtr(s.Status.Device.Activated),
			GPSTracking:          clonePtr(s.Status.Device.GPSTracking),
			OilConnected:         clonePtr(s.Status.Device.OilConnected),
			ElectricityConnected: clonePtr(s.Status.Device.ElectricityConnected),
			Satellites:           clonePtr(s.Status.Device.Satellites),
		},
	}
	return out
}
