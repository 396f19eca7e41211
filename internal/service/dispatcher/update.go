package dispatcher

import (
	"time"

	"github.com/Temutjin2k/vehicle-tracker/internal/domain/models"
)

// Update is the decoded push message: LocationUpdate or StatusUpdate.
type Update interface {
	isUpdate()
}

type LocationUpdate struct {
	Timestamp *time.Time
	Sample    models.LocationSample
}

type StatusUpdate struct {
	Timestamp *time.Time
	Sample    models.StatusSample
}

func (LocationUpdate) isUpdate() {}
func (StatusUpdate) isUpdate()   {}
