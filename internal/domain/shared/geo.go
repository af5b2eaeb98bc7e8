package shared

import "math"

// earthRadiusMeters is the mean radius of the WGS-84 reference ellipsoid,
// used for great-circle distance approximation throughout the pipeline.
const earthRadiusMeters = 6371008.8

// Point is an immutable geographic coordinate.
type Point struct {
	Lat float64
	Lon float64
}

// NewPoint creates a validated geographic point.
func NewPoint(lat, lon float64) (Point, error) {
	if lat < -90 || lat > 90 {
		return Point{}, NewValidationError("lat", "must be within [-90, 90]")
	}
	if lon < -180 || lon > 180 {
		return Point{}, NewValidationError("lon", "must be within [-180, 180]")
	}
	return Point{Lat: lat, Lon: lon}, nil
}

// DistanceMeters returns the great-circle distance between two points using
// the haversine formula against a spherical approximation of WGS-84.
func (p Point) DistanceMeters(other Point) float64 {
	lat1 := p.Lat * math.Pi / 180
	lat2 := other.Lat * math.Pi / 180
	dLat := (other.Lat - p.Lat) * math.Pi / 180
	dLon := (other.Lon - p.Lon) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusMeters * c
}

// Centroid returns the arithmetic mean position of a non-empty slice of points.
// It is an adequate approximation for the small, localized chunks precision
// strategies operate over (tens to low hundreds of meters).
func Centroid(points []Point) Point {
	if len(points) == 0 {
		return Point{}
	}
	var sumLat, sumLon float64
	for _, p := range points {
		sumLat += p.Lat
		sumLon += p.Lon
	}
	n := float64(len(points))
	return Point{Lat: sumLat / n, Lon: sumLon / n}
}
