package geo

import (
	"math"
	"strconv"

	"github.com/SurplusYard/SurplusYard/internal/pkg/env"
)

// Browse results are filtered by distance from a fixed town center
// (Southport by default).
const (
	DefaultCenterLat        = 53.6458
	DefaultCenterLng        = -3.0050
	DefaultMaxDistanceMiles = 15.0
)

const earthRadiusMiles = 3958.8

// Center is the reference point distances are measured from.
type Center struct {
	Lat float64
	Lng float64
}

// CenterFromEnv reads the configured town center, falling back to Southport.
func CenterFromEnv() Center {
	return Center{
		Lat: envFloat("TOWN_CENTER_LAT", DefaultCenterLat),
		Lng: envFloat("TOWN_CENTER_LNG", DefaultCenterLng),
	}
}

// MaxDistanceMilesFromEnv reads the configured browse radius.
func MaxDistanceMilesFromEnv() float64 {
	return envFloat("MAX_DISTANCE_MILES", DefaultMaxDistanceMiles)
}

// MilesBetween returns the haversine distance in miles between two points.
func MilesBetween(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := toRad(lat2 - lat1)
	dLng := toRad(lng2 - lng1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusMiles * c
}

// MilesFrom returns the distance from the center to a point.
func (c Center) MilesFrom(lat, lng float64) float64 {
	return MilesBetween(c.Lat, c.Lng, lat, lng)
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}

func envFloat(key string, def float64) float64 {
	v, err := strconv.ParseFloat(env.GetEnv(key, ""), 64)
	if err != nil {
		return def
	}
	return v
}
