package reconciler

import (
	"time"

	"github.com/Temutjin2k/vehicle-tracker/internal/domain/models"
)

// merge copies src into *dst when src is set. Absent values never clear dst.
// It reports whether the stored value changed.
func merge[T comparable](dst **T, src *T) bool {
	if src == nil {
		return false
	}
	if *dst != nil && **dst == *src {
		return false
	}
	v := *src
	*dst = &v
	return true
}

func mergeTime(dst **time.Time, src *time.Time) bool {
	if src == nil {
		return false
	}
	if *dst != nil && (*dst).Equal(*src) {
		return false
	}
	v := *src
	*dst = &v
	return true
}

func mergeBattery(dst *models.Battery, src *models.Battery) bool {
	if src == nil {
		return false
	}
	changed := merge(&dst.Level, src.Level)
	changed = merge(&dst.Voltage, src.Voltage) || changed
	changed = merge(&dst.Status, src.Status) || changed
	changed = merge(&dst.Charging, src.Charging) || changed
	return changed
}

func mergeSignal(dst *models.Signal, src *models.Signal) bool {
	if src == nil {
		return false
	}
	changed := merge(&dst.Level, src.Level)
	changed = merge(&dst.Bars, src.Bars) || changed
	changed = merge(&dst.Status, src.Status) || changed
	changed = merge(&dst.Percentage, src.Percentage) || changed
	return changed
}

func mergeDevice(dst *models.DeviceFlags, src *models.DeviceFlags) bool {
	if src == nil {
		return false
	}
	changed := merge(&dst.Activated, src.Activated)
	changed = merge(&dst.GPSTracking, src.GPSTracking) || changed
	changed = merge(&dst.OilConnected, src.OilConnected) || changed
	changed = merge(&dst.ElectricityConnected, src.ElectricityConnected) || changed
	changed = merge(&dst.Satellites, src.Satellites) || changed
	return changed
}

func flag(c Change, ok bool) Change {
	if ok {
		return c
	}
	return 0
}
