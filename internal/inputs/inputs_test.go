package inputs

import (
	"os"
	"path/filepath"
	"testing"

	"dispatchsim/internal/dispatch/booking"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing temp file: %v", err)
	}
	return path
}

func TestLoadVehicles(t *testing.T) {
	path := writeTemp(t, "vehicles.json", `[
		{"vehicle_id": 1, "vehicle_type": "class2", "home_lat": 1.1, "home_lng": 2.2}
	]`)
	reg, err := LoadVehicles(path)
	if err != nil {
		t.Fatalf("LoadVehicles: %v", err)
	}
	if len(reg.Vehicles) != 1 || reg.Vehicles[0].Class != 2 {
		t.Fatalf("unexpected registry: %+v", reg.Vehicles)
	}
}

func TestLoadVehicles_BadClassIsError(t *testing.T) {
	path := writeTemp(t, "vehicles.json", `[{"vehicle_id": 1, "vehicle_type": "classX"}]`)
	if _, err := LoadVehicles(path); err == nil {
		t.Fatal("expected an error for a malformed vehicle_type")
	}
}

func TestLoadBookings(t *testing.T) {
	path := writeTemp(t, "bookings.json", `[
		{"booking_id": 1, "vehicle_type": "class1", "pickup_lat": 0, "pickup_lon": 0.1,
		 "drop_lat": 0, "drop_lon": 0.2, "pickup_time": "08:00", "distance_km": 11.1}
	]`)
	bookings, err := LoadBookings(path, booking.Scheduled)
	if err != nil {
		t.Fatalf("LoadBookings: %v", err)
	}
	if len(bookings) != 1 {
		t.Fatalf("expected 1 booking, got %d", len(bookings))
	}
	b := bookings[0]
	if b.PickupTime != 480 || b.TravelTime != booking.DefaultTravelTimeMinutes || b.Origin != booking.Scheduled {
		t.Errorf("unexpected booking: %+v", b)
	}
}

func TestLoadBookings_ExplicitTravelTimeOverridesDefault(t *testing.T) {
	path := writeTemp(t, "bookings.json", `[
		{"booking_id": 1, "vehicle_type": "class1", "pickup_time": "08:00", "travel_time": 45}
	]`)
	bookings, err := LoadBookings(path, booking.Instant)
	if err != nil {
		t.Fatalf("LoadBookings: %v", err)
	}
	if bookings[0].TravelTime != 45 {
		t.Errorf("TravelTime = %d, want 45", bookings[0].TravelTime)
	}
}

func TestLoadBookings_MalformedPickupTimeIsError(t *testing.T) {
	path := writeTemp(t, "bookings.json", `[{"booking_id": 1, "vehicle_type": "class1", "pickup_time": "nope"}]`)
	if _, err := LoadBookings(path, booking.Scheduled); err == nil {
		t.Fatal("expected an error for a malformed pickup_time")
	}
}
