// README: Maps-backed oracle, adapted from the trip planner's route-estimate client.
package oracle

import (
	"context"
	"log"

	gmaps "googlemaps.github.io/maps"

	"dispatchsim/internal/dispatch/geo"
)

// MapsOracle calls the Google Maps Directions API for road distance instead of
// straight-line distance. It is an alternate implementation of Oracle, selected
// explicitly at startup via configuration; it is never substituted silently
// inside DistanceKm, only constructed with an explicit fallback the operator
// opted into.
type MapsOracle struct {
	client   *gmaps.Client
	fallback Oracle
}

// NewMapsOracle builds a Maps-backed oracle. fallback is used when the Directions
// API call fails; pass nil to have DistanceKm return 0 and log instead.
func NewMapsOracle(apiKey string, fallback Oracle) (*MapsOracle, error) {
	c, err := gmaps.NewClient(gmaps.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	return &MapsOracle{client: c, fallback: fallback}, nil
}

func (m *MapsOracle) DistanceKm(a, b geo.LatLng) float64 {
	if a.Equal(b) {
		return 0
	}
	req := &gmaps.DirectionsRequest{
		Origin:      formatLatLng(a),
		Destination: formatLatLng(b),
	}
	routes, _, err := m.client.Directions(context.Background(), req)
	if err != nil || len(routes) == 0 || len(routes[0].Legs) == 0 {
		log.Printf("oracle: maps directions lookup failed, using fallback: %v", err)
		if m.fallback != nil {
			return m.fallback.DistanceKm(a, b)
		}
		return 0
	}
	return float64(routes[0].Legs[0].Distance.Meters) / 1000.0
}

func formatLatLng(p geo.LatLng) string {
	ll := gmaps.LatLng{Lat: p.Lat, Lng: p.Lng}
	return ll.String()
}
