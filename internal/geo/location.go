package geo

import "math"

const (
	// EarthRadius is the mean Earth radius in metres.
	EarthRadius = 6371000.0
	// Travelling is the label reported when no known location is near.
	Travelling = "TRAVELLING"
)

// Location is a named point on a sphere. Radius is the radius of that sphere
// used in DistanceTo, not a proximity threshold.
type Location struct {
	Name   string
	Lat    float64
	Lon    float64
	Radius float64
}

// NewLocation creates a Location on a sphere of EarthRadius.
func NewLocation(name string, lat, lon float64) Location {
	return Location{Name: name, Lat: lat, Lon: lon, Radius: EarthRadius}
}

// DistanceTo returns the great-circle distance to other in metres, measured
// on the receiver's sphere. It uses the chord-length form so results stay
// comparable with deployments that already rely on it.
func (l Location) DistanceTo(other Location) float64 {
	radius := l.Radius
	if radius == 0 {
		radius = EarthRadius
	}

	dLon := radians(l.Lon - other.Lon)
	lat1 := radians(l.Lat)
	lat2 := radians(other.Lat)

	dx := math.Pow(math.Cos(dLon)*math.Cos(lat1)-math.Cos(lat2), 2)
	dy := math.Pow(math.Sin(dLon)*math.Cos(lat1), 2)
	dz := math.Pow(math.Sin(lat1)-math.Sin(lat2), 2)

	return math.Asin(math.Sqrt(dx+dy+dz)/2) * (2 * radius)
}

// IsNear reports whether other lies within threshold metres.
func (l Location) IsNear(other Location, threshold float64) bool {
	return l.DistanceTo(other) <= threshold
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
