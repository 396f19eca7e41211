package route

import (
	"github.com/Temutjin2k/vehicle-tracker/internal/domain/models"
	"github.com/Temutjin2k/vehicle-tracker/internal/domain/types"
)

var (
	movingStyle = models.PolylineStyle{Weight: 5, Opacity: 0.9, Color: "#2563eb", Motion: types.MotionMoving}
	idleStyle   = models.PolylineStyle{Weight: 3, Opacity: 0.6, Color: "#64748b", Motion: types.MotionIdle}
)

// Style returns the trail style for m.
func Style(m types.Motion) models.PolylineStyle {
	if m == types.MotionMoving {
		return movingStyle
	}
	return idleStyle
}
