// Package oracle provides the distance/time oracle (C1): a pure function from two
// coordinates to a straight-line distance, plus the "HH:MM" pickup-time parser.
package oracle

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"dispatchsim/internal/dispatch/geo"
)

const earthRadiusKm = 6371.0

// Oracle is the distance dependency the core treats as a required, non-optional
// collaborator. It never fails: a degenerate pair of identical points yields 0.
type Oracle interface {
	DistanceKm(a, b geo.LatLng) float64
}

// Haversine is the default oracle: great-circle distance between two points.
type Haversine struct{}

func (Haversine) DistanceKm(a, b geo.LatLng) float64 {
	if a.Equal(b) {
		return 0
	}
	lat1, lng1 := degToRad(a.Lat), degToRad(a.Lng)
	lat2, lng2 := degToRad(b.Lat), degToRad(b.Lng)
	dLat := lat2 - lat1
	dLng := lng2 - lng1
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return earthRadiusKm * c
}

func degToRad(d float64) float64 {
	return d * math.Pi / 180
}

// ParsePickupMinutes parses "HH:MM" into minutes since midnight.
func ParsePickupMinutes(s string) (int, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("oracle: malformed pickup time %q", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("oracle: malformed pickup time %q: %w", s, err)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("oracle: malformed pickup time %q: %w", s, err)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("oracle: pickup time %q out of range", s)
	}
	return h*60 + m, nil
}
