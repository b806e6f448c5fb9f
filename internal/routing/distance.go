package routing

import (
	"context"
	"math"

	"github.com/chriskamgang/MyINSAM-Resto/internal/models"
)

const earthRadiusMeters = 6371000.0

// DefaultSpeedKmh is an average urban moto-taxi speed.
const DefaultSpeedKmh = 20.0

// Haversine returns the great-circle distance between two points in meters.
func Haversine(from, to models.Coordinates) float64 {
	lat1 := float64(from.Latitude) * math.Pi / 180
	lat2 := float64(to.Latitude) * math.Pi / 180
	dLat := float64(to.Latitude-from.Latitude) * math.Pi / 180
	dLng := float64(to.Longitude-from.Longitude) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMeters * c
}

// EstimateMinutes converts a distance into travel minutes at speedKmh,
// rounded up.
func EstimateMinutes(distanceMeters, speedKmh float64) int {
	if speedKmh <= 0 {
		speedKmh = DefaultSpeedKmh
	}
	mps := speedKmh * 1000 / 3600
	return int(math.Ceil(distanceMeters / mps / 60))
}

// Interpolate returns the point a fraction f of the way from a to b, with f
// clamped to [0, 1].
func Interpolate(a, b models.Coordinates, f float64) models.Coordinates {
	f = math.Max(0, math.Min(1, f))
	return models.Coordinates{
		Latitude:  a.Latitude + models.Float(f)*(b.Latitude-a.Latitude),
		Longitude: a.Longitude + models.Float(f)*(b.Longitude-a.Longitude),
	}
}

// Straight estimates with Haversine distance; it satisfies the same
// DeliveryMinutes contract as OSRM and never fails.
type Straight struct {
	SpeedKmh float64
}

func (s Straight) DeliveryMinutes(_ context.Context, from, to models.Coordinates) (int, bool) {
	return EstimateMinutes(Haversine(from, to), s.SpeedKmh), true
}
