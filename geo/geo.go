// Package geo provides great-circle distance and leg-progress math for
// trolley position fixes.
package geo

import (
	"errors"
	"math"
)

// EarthRadius in meters, as used by the haversine formula.
const EarthRadius = 6371000.0

// ErrDegenerateGeometry is returned when a fix is equidistant-zero from
// both leg endpoints (origin and destination coincide with the fix), so
// leg progress is undefined.
var ErrDegenerateGeometry = errors.New("geo: degenerate leg geometry")

// Coord is a WGS84 latitude/longitude pair in decimal degrees.
type Coord struct {
	Lat float64 `json:"latitude" yaml:"latitude"`
	Lon float64 `json:"longitude" yaml:"longitude"`
}

// Progress describes how far along a leg a fix sits.
type Progress struct {
	FractionComplete  float64
	FractionRemaining float64
	ToOrigin          float64 // meters
	ToDestination     float64 // meters
}

// Distance returns the great-circle distance in meters between a and b.
func Distance(a, b Coord) float64 {
	lat1 := a.Lat * math.Pi / 180
	lon1 := a.Lon * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	lon2 := b.Lon * math.Pi / 180

	dlat := lat2 - lat1
	dlon := lon2 - lon1

	h := math.Sin(dlat/2)*math.Sin(dlat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dlon/2)*math.Sin(dlon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return EarthRadius * c
}

// LegProgress locates fix between origin and destination by distance.
// The denominator toOrigin+toDestination is zero only when the fix sits
// exactly on both endpoints (origin == destination == fix), which has no
// meaningful progress value.
func LegProgress(origin, destination, fix Coord) (Progress, error) {
	toOrigin := Distance(origin, fix)
	toDest := Distance(destination, fix)

	total := toOrigin + toDest
	if total == 0 {
		return Progress{}, ErrDegenerateGeometry
	}

	remaining := toDest / total
	return Progress{
		FractionComplete:  1 - remaining,
		FractionRemaining: remaining,
		ToOrigin:          toOrigin,
		ToDestination:     toDest,
	}, nil
}

// RemainingTime scales a planned leg duration by the fraction of the leg
// still ahead of the fix.
func RemainingTime(planned float64, p Progress) float64 {
	return planned * p.FractionRemaining
}
