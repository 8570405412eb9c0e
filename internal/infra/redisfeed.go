// README: Redis GEO feed publishing live vehicle positions, adapted from the
// matching store's driver-candidate GEO set.
package infra

import (
	"context"
	"strconv"

	"github.com/redis/go-redis/v9"

	"dispatchsim/internal/dispatch/geo"
)

const vehicleGeoKey = "dispatch:vehicles"

// VehicleFeed publishes vehicle positions to a Redis GEO set so an external
// dashboard can query nearby vehicles without touching the registry directly.
type VehicleFeed struct {
	redis *redis.Client
}

func NewVehicleFeed(redis *redis.Client) *VehicleFeed {
	return &VehicleFeed{redis: redis}
}

// PublishPosition upserts a vehicle's current location. Errors are the
// caller's to log-and-continue; a feed outage never blocks a tick.
func (f *VehicleFeed) PublishPosition(ctx context.Context, vehicleID int, pos geo.LatLng) error {
	return f.redis.GeoAdd(ctx, vehicleGeoKey, &redis.GeoLocation{
		Name:      strconv.Itoa(vehicleID),
		Longitude: pos.Lng,
		Latitude:  pos.Lat,
	}).Err()
}

// NearbyVehicles returns vehicle IDs within radiusKm of p, nearest first.
func (f *VehicleFeed) NearbyVehicles(ctx context.Context, p geo.LatLng, radiusKm float64) ([]string, error) {
	results, err := f.redis.GeoSearch(ctx, vehicleGeoKey, &redis.GeoSearchQuery{
		Longitude:  p.Lng,
		Latitude:   p.Lat,
		Radius:     radiusKm,
		RadiusUnit: "km",
		Sort:       "ASC",
	}).Result()
	if err != nil {
		return nil, err
	}
	return results, nil
}
