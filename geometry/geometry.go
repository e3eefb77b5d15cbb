// Package geometry derives distances, elevation statistics and simplified routes from
// sequences of coordinates.
package geometry

import (
	"math"

	"github.com/paulmach/orb"
)

// EarthRadius is the mean Earth radius, in metres, used for haversine distances.
const EarthRadius = 6371000.0

// WalkingSpeed is the flat walking speed, in km/h, used to estimate route durations.
const WalkingSpeed = 4.0

// MaxRoutePoints is the target number of points kept when simplifying a route.
const MaxRoutePoints = 100

// MetropolitanFrance is the coarse bounding box used to reject records outside metropolitan France.
var MetropolitanFrance = orb.Bound{
	Min: orb.Point{-5.0, 41.0},
	Max: orb.Point{10.0, 51.0},
}

// Haversine returns the great-circle distance in metres between 'a' and 'b'. Points are
// [longitude, latitude] pairs.
func Haversine(a orb.Point, b orb.Point) float64 {

	lat1 := deg2rad(a.Lat())
	lat2 := deg2rad(b.Lat())
	dlat := deg2rad(b.Lat() - a.Lat())
	dlng := deg2rad(b.Lon() - a.Lon())

	h := math.Sin(dlat/2)*math.Sin(dlat/2) + math.Cos(lat1)*math.Cos(lat2)*math.Sin(dlng/2)*math.Sin(dlng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return EarthRadius * c
}

// PathLength returns the summed haversine distance, in metres, of consecutive points.
// Sequences with fewer than two points have a length of 0.
func PathLength(points []orb.Point) float64 {

	total := 0.0

	for i := 1; i < len(points); i++ {
		total += Haversine(points[i-1], points[i])
	}

	return total
}

// ElevationChange returns the cumulative positive and negative elevation deltas of 'samples'.
func ElevationChange(samples []float64) (float64, float64) {

	gain := 0.0
	loss := 0.0

	for i := 1; i < len(samples); i++ {

		d := samples[i] - samples[i-1]

		if d > 0 {
			gain += d
		} else {
			loss += -d
		}
	}

	return gain, loss
}

// EstimateDuration returns the estimated route duration in hours: distance at walking
// speed plus ten minutes per 100 m of positive elevation.
func EstimateDuration(distance_km float64, elevation_gain float64) float64 {
	return distance_km/WalkingSpeed + (elevation_gain/100)*(10.0/60.0)
}

// Downsample keeps every n-th point of 'points', where n is len(points)/max (minimum 1).
// The first point is always kept and order is preserved.
func Downsample(points []orb.Point, max int) []orb.Point {

	if max <= 0 {
		max = MaxRoutePoints
	}

	step := len(points) / max

	if step < 1 {
		step = 1
	}

	simplified := make([]orb.Point, 0, len(points)/step+1)

	for i := 0; i < len(points); i += step {
		simplified = append(simplified, points[i])
	}

	return simplified
}

// IsValid reports whether 'pt' is within the valid latitude and longitude ranges.
func IsValid(pt orb.Point) bool {

	lat := pt.Lat()
	lng := pt.Lon()

	if math.IsNaN(lat) || math.IsNaN(lng) {
		return false
	}

	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}

// Round rounds 'v' to 'places' decimals.
func Round(v float64, places int) float64 {

	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

func deg2rad(d float64) float64 {
	return d * math.Pi / 180
}
