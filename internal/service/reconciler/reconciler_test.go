package reconciler

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Temutjin2k/vehicle-tracker/internal/domain/models"
	"github.com/Temutjin2k/vehicle-tracker/internal/domain/types"
)

func ptr[T any](v T) *T { return &v }

var vehicle = models.TrackedVehicle{IMEI: "356938035643809", Name: "Van 7", Registration: "BA 2 PA 4411", Category: types.CategoryTruck}

func TestSeed_StatusOnlyKeepsBootstrapLocation(t *testing.T) {
	r := New(vehicle)
	r.Seed(models.Bootstrap{
		Vehicle:      vehicle,
		HasLocation:  true,
		LocationData: &models.LocationSample{Latitude: ptr(27.7), Longitude: ptr(85.3), Course: ptr(90.0)},
	})

	c := r.ApplyStatus(models.StatusSample{Ignition: ptr(types.IgnitionOn)})
	assert.Equal(t, ChangedIgnition, c)

	s := r.Snapshot()
	require.NotNil(t, s.Location.Latitude)
	assert.Equal(t, 27.7, *s.Location.Latitude)
	assert.Equal(t, 85.3, *s.Location.Longitude)
	assert.Equal(t, 90.0, *s.Location.Course)
	assert.Equal(t, types.IgnitionOn, *s.Status.Ignition)
}

func TestApplyLocation_InvalidFixKeepsCoordinates(t *testing.T) {
	r := New(vehicle)
	r.ApplyLocation(models.LocationSample{Latitude: ptr(27.7), Longitude: ptr(85.3), Course: ptr(45.0), Altitude: ptr(1300.0)})

	ts := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	c := r.ApplyLocation(models.LocationSample{
		Latitude:      ptr(0.0),
		Longitude:     ptr(0.0),
		Course:        ptr(180.0),
		Altitude:      ptr(0.0),
		Speed:         ptr(12.0),
		Timestamp:     &ts,
		LocationValid: ptr(false),
	})

	assert.False(t, c.Has(ChangedPosition|ChangedCourse|ChangedAltitude))
	assert.True(t, c.Has(ChangedSpeed))
	assert.True(t, c.Has(ChangedTimestamp))

	pos, ok := r.Position()
	require.True(t, ok)
	assert.Equal(t, models.Coordinate{Latitude: 27.7, Longitude: 85.3}, pos)
	course, _ := r.Course()
	assert.Equal(t, 45.0, course)
	assert.Equal(t, 1300.0, *r.Snapshot().Location.Altitude)
}

func TestApplyLocation_PartialCoordinatesIgnored(t *testing.T) {
	r := New(vehicle)
	r.ApplyLocation(models.LocationSample{Latitude: ptr(27.7), Longitude: ptr(85.3)})

	c := r.ApplyLocation(models.LocationSample{Latitude: ptr(28.0), Course: ptr(10.0)})
	assert.True(t, c.Empty())

	pos, _ := r.Position()
	assert.Equal(t, 27.7, pos.Latitude)
}

func TestApplyLocation_SameValuesReportNoChange(t *testing.T) {
	r := New(vehicle)
	s := models.LocationSample{Latitude: ptr(27.7), Longitude: ptr(85.3), Course: ptr(90.0)}
	assert.True(t, r.ApplyLocation(s).Has(ChangedPosition))
	assert.True(t, r.ApplyLocation(s).Empty())
}

func TestApplyLocation_ClearsHistorical(t *testing.T) {
	r := New(vehicle)
	c := r.Seed(models.Bootstrap{
		HasLocation:          true,
		LocationData:         &models.LocationSample{Latitude: ptr(27.7), Longitude: ptr(85.3)},
		LocationIsHistorical: true,
	})
	assert.True(t, c.Has(ChangedHistorical))
	assert.True(t, r.Snapshot().Historical)

	c = r.ApplyLocation(models.LocationSample{Latitude: ptr(27.71), Longitude: ptr(85.3), LocationValid: ptr(false)})
	assert.True(t, r.Snapshot().Historical, "invalid fix must not count as live")

	c = r.ApplyLocation(models.LocationSample{Latitude: ptr(27.71), Longitude: ptr(85.3)})
	assert.True(t, c.Has(ChangedHistorical))
	assert.False(t, r.Snapshot().Historical)
}

func TestApplyStatus_NestedFieldsSticky(t *testing.T) {
	r := New(vehicle)
	r.ApplyStatus(models.StatusSample{
		Battery: &models.Battery{Level: ptr(80), Voltage: ptr(12.4), Charging: ptr(true)},
		Signal:  &models.Signal{Bars: ptr(4), Percentage: ptr(75)},
		Device:  &models.DeviceFlags{Activated: ptr(true), Satellites: ptr(9)},
	})

	c := r.ApplyStatus(models.StatusSample{
		Battery: &models.Battery{Level: ptr(79)},
		Device:  &models.DeviceFlags{Satellites: ptr(7)},
	})
	assert.True(t, c.Has(ChangedBattery))
	assert.True(t, c.Has(ChangedDevice))
	assert.False(t, c.Has(ChangedSignal))

	s := r.Snapshot()
	assert.Equal(t, 79, *s.Status.Battery.Level)
	assert.Equal(t, 12.4, *s.Status.Battery.Voltage)
	assert.True(t, *s.Status.Battery.Charging)
	assert.Equal(t, 4, *s.Status.Signal.Bars)
	assert.True(t, *s.Status.Device.Activated)
	assert.Equal(t, 7, *s.Status.Device.Satellites)
}

func TestStatusDoesNotTouchLocationAndViceVersa(t *testing.T) {
	r := New(vehicle)
	r.ApplyLocation(models.LocationSample{Latitude: ptr(1.0), Longitude: ptr(2.0), Course: ptr(3.0)})
	r.ApplyStatus(models.StatusSample{Ignition: ptr(types.IgnitionOff), Connection: ptr(types.DeviceStopped)})

	before := r.Snapshot()
	r.ApplyStatus(models.StatusSample{Speed: ptr(40.0)})
	r.ApplyLocation(models.LocationSample{Speed: ptr(41.0)})
	after := r.Snapshot()

	assert.Equal(t, before.Location.Latitude, after.Location.Latitude)
	assert.Equal(t, before.Location.Course, after.Location.Course)
	assert.Equal(t, before.Status.Ignition, after.Status.Ignition)
	assert.Equal(t, before.Status.Connection, after.Status.Connection)
	assert.Equal(t, 41.0, *after.Speed)
}

func TestSnapshot_IsDeepCopy(t *testing.T) {
	r := New(vehicle)
	r.ApplyLocation(models.LocationSample{Latitude: ptr(1.0), Longitude: ptr(2.0)})

	s := r.Snapshot()
	*s.Location.Latitude = 99

	pos, _ := r.Position()
	assert.Equal(t, 1.0, pos.Latitude)
}

func TestMotion(t *testing.T) {
	r := New(vehicle)
	assert.Equal(t, types.MotionIdle, r.Motion(5))

	r.ApplyStatus(models.StatusSample{Speed: ptr(5.0)})
	assert.Equal(t, types.MotionIdle, r.Motion(5))

	r.ApplyStatus(models.StatusSample{Speed: ptr(5.1)})
	assert.Equal(t, types.MotionMoving, r.Motion(5))
}

// Random interleavings of partial messages: every field equals the newest
// explicitly supplied value, or its previous value when omitted.
func TestStickiness_RandomSequences(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))

	maybe := func(v float64) *float64 {
		if rng.IntN(2) == 0 {
			return nil
		}
		return &v
	}

	for range 200 {
		r := New(vehicle)
		var lat, lon, course, speed *float64
		var ign *types.Ignition
		var level *int

		for range 30 {
			if rng.IntN(2) == 0 {
				s := models.LocationSample{
					Latitude:  maybe(rng.Float64()*180 - 90),
					Longitude: maybe(rng.Float64()*360 - 180),
					Course:    maybe(rng.Float64() * 360),
					Speed:     maybe(rng.Float64() * 120),
				}
				if rng.IntN(4) == 0 {
					s.LocationValid = ptr(false)
				}
				r.ApplyLocation(s)

				if s.Speed != nil {
					speed = s.Speed
				}
				if s.Valid() {
					lat, lon = s.Latitude, s.Longitude
					if s.Course != nil {
						course = s.Course
					}
				}
			} else {
				s := models.StatusSample{Speed: maybe(rng.Float64() * 120)}
				if rng.IntN(2) == 0 {
					s.Ignition = ptr(types.IgnitionOn)
					if rng.IntN(2) == 0 {
						s.Ignition = ptr(types.IgnitionOff)
					}
				}
				if rng.IntN(2) == 0 {
					s.Battery = &models.Battery{Level: ptr(rng.IntN(100))}
				}
				r.ApplyStatus(s)

				if s.Speed != nil {
					speed = s.Speed
				}
				if s.Ignition != nil {
					ign = s.Ignition
				}
				if s.Battery != nil {
					level = s.Battery.Level
				}
			}

			got := r.Snapshot()
			assert.Equal(t, lat, got.Location.Latitude)
			assert.Equal(t, lon, got.Location.Longitude)
			assert.Equal(t, course, got.Location.Course)
			assert.Equal(t, speed, got.Speed)
			assert.Equal(t, ign, got.Status.Ignition)
			assert.Equal(t, level, got.Status.Battery.Level)
		}
	}
}

func TestChange_String(t *testing.T) {
	assert.Equal(t, "none", Change(0).String())
	assert.Equal(t, "position,speed", (ChangedPosition | ChangedSpeed).String())
}
