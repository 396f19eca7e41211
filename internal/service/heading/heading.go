// Package heading rotates the map to follow the vehicle course.
package heading

import (
	"context"
	"math"
)

// epsilon below which two bearings are considered equal, degrees
const epsilon = 0.5

// Rotator applies a rotation keeping the current center and zoom. delta is
// the signed shortest arc from the previous bearing.
type Rotator interface {
	Rotate(ctx context.Context, bearing, delta float64) error
}

// Controller is owned by one goroutine.
type Controller struct {
	rotator Rotator
	bearing float64
	known   bool
}

func New(rotator Rotator) *Controller {
	return &Controller{rotator: rotator}
}

// Normalize maps any angle into [0, 360).
func Normalize(deg float64) float64 {
	d := math.Mod(deg, 360)
	if d < 0 {
		d += 360
	}
	return d
}

// ShortestDelta returns the signed rotation in (-180, 180] taking from to to.
func ShortestDelta(from, to float64) float64 {
	d := math.Mod(Normalize(to)-Normalize(from)+540, 360) - 180
	if d == -180 {
		return 180
	}
	return d
}

// RotateTo turns the map to bearing along the shortest arc. It reports
// whether a rotation command was issued; an unchanged bearing is a no-op.
func (c *Controller) RotateTo(ctx context.Context, bearing float64) (bool, error) {
	if math.IsNaN(bearing) || math.IsInf(bearing, 0) {
		return false, nil
	}
	target := Normalize(bearing)

	// an unknown bearing means the map is still north-up
	delta := ShortestDelta(c.bearing, target)
	if c.known && math.Abs(delta) < epsilon {
		return false, nil
	}

	if err := c.rotator.Rotate(ctx, target, delta); err != nil {
		return false, err
	}
	c.bearing = target
	c.known = true
	return true, nil
}

// Reapply re-issues the current bearing. This backs the rotation toggle
// in the UI, which never disables rotation.
func (c *Controller) Reapply(ctx context.Context) (bool, error) {
	if !c.known {
		return false, nil
	}
	if err := c.rotator.Rotate(ctx, c.bearing, 0); err != nil {
		return false, err
	}
	return true, nil
}

// Bearing returns the last applied bearing.
func (c *Controller) Bearing() (float64, bool) {
	return c.bearing, c.known
}
