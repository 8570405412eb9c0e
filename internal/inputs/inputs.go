// Package inputs parses the JSON file inputs (vehicles, scheduled bookings,
// instant bookings) into the dispatch core's domain types. Any malformed input
// here is fatal at startup, per the error-handling design.
package inputs

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"dispatchsim/internal/dispatch/booking"
	"dispatchsim/internal/dispatch/geo"
	"dispatchsim/internal/dispatch/oracle"
	"dispatchsim/internal/dispatch/vehicle"
)

type vehicleRecord struct {
	VehicleID int     `json:"vehicle_id"`
	VehicleType string `json:"vehicle_type"`
	HomeLat   float64 `json:"home_lat"`
	HomeLng   float64 `json:"home_lng"`
}

type bookingRecord struct {
	BookingID   int     `json:"booking_id"`
	VehicleType string  `json:"vehicle_type"`
	PickupLat   float64 `json:"pickup_lat"`
	PickupLon   float64 `json:"pickup_lon"`
	DropLat     float64 `json:"drop_lat"`
	DropLon     float64 `json:"drop_lon"`
	PickupTime  string  `json:"pickup_time"`
	DistanceKm  float64 `json:"distance_km"`
	TravelTime  *int    `json:"travel_time,omitempty"`
}

// LoadVehicles reads vehicles.json: [{vehicle_id, vehicle_type: "classN", home_lat, home_lng}].
func LoadVehicles(path string) (*vehicle.Registry, error) {
	var records []vehicleRecord
	if err := readJSON(path, &records); err != nil {
		return nil, fmt.Errorf("inputs: loading vehicles from %s: %w", path, err)
	}
	reg := &vehicle.Registry{Vehicles: make([]*vehicle.Vehicle, 0, len(records))}
	for _, r := range records {
		class, err := parseClass(r.VehicleType)
		if err != nil {
			return nil, fmt.Errorf("inputs: vehicle %d: %w", r.VehicleID, err)
		}
		reg.Vehicles = append(reg.Vehicles, &vehicle.Vehicle{
			ID: r.VehicleID, Class: class, Home: geo.LatLng{Lat: r.HomeLat, Lng: r.HomeLng},
		})
	}
	return reg, nil
}

// LoadBookings reads a bookings file in the shared bookings.json/instant_bookings.json
// shape and tags every record with origin.
func LoadBookings(path string, origin booking.Origin) ([]*booking.Booking, error) {
	var records []bookingRecord
	if err := readJSON(path, &records); err != nil {
		return nil, fmt.Errorf("inputs: loading bookings from %s: %w", path, err)
	}
	out := make([]*booking.Booking, 0, len(records))
	for _, r := range records {
		class, err := parseClass(r.VehicleType)
		if err != nil {
			return nil, fmt.Errorf("inputs: booking %d: %w", r.BookingID, err)
		}
		pickupMinutes, err := oracle.ParsePickupMinutes(r.PickupTime)
		if err != nil {
			return nil, fmt.Errorf("inputs: booking %d: %w", r.BookingID, err)
		}
		travelTime := booking.DefaultTravelTimeMinutes
		if r.TravelTime != nil && *r.TravelTime > 0 {
			travelTime = *r.TravelTime
		}
		out = append(out, &booking.Booking{
			ID:          r.BookingID,
			Class:       class,
			PickupCoord: geo.LatLng{Lat: r.PickupLat, Lng: r.PickupLon},
			DropCoord:   geo.LatLng{Lat: r.DropLat, Lng: r.DropLon},
			PickupTime:  pickupMinutes,
			DistanceKm:  r.DistanceKm,
			TravelTime:  travelTime,
			Origin:      origin,
		})
	}
	return out, nil
}

// parseClass turns "class1".."class9" into an integer 1..9.
func parseClass(vehicleType string) (int, error) {
	s := strings.TrimPrefix(strings.TrimSpace(vehicleType), "class")
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > 9 {
		return 0, fmt.Errorf("malformed vehicle_type %q", vehicleType)
	}
	return n, nil
}

func readJSON(path string, v any) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	dec := json.NewDecoder(f)
	return dec.Decode(v)
}
