package route

import (
	"math"

	"github.com/Temutjin2k/vehicle-tracker/internal/domain/models"
)

const EarthRadiusMeters = 6371000.0

func degreesToRadians(degrees float64) float64 {
	return degrees * math.Pi / 180
}

// HaversineDistance calculates the great-circle distance in meters between two points.
func HaversineDistance(a, b models.Coordinate) float64 {
	lat1Rad := degreesToRadians(a.Latitude)
	lon1Rad := degreesToRadians(a.Longitude)
	lat2Rad := degreesToRadians(b.Latitude)
	lon2Rad := degreesToRadians(b.Longitude)

	deltaLat := lat2Rad - lat1Rad
	deltaLon := lon2Rad - lon1Rad

	h := math.Pow(math.Sin(deltaLat/2), 2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Pow(math.Sin(deltaLon/2), 2)

	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return EarthRadiusMeters * c
}
