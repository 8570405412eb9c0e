package assign

import (
	"testing"

	"dispatchsim/internal/dispatch/booking"
	"dispatchsim/internal/dispatch/geo"
	"dispatchsim/internal/dispatch/oracle"
	"dispatchsim/internal/dispatch/pricing"
	"dispatchsim/internal/dispatch/vehicle"
)

func newVehicle(id, class int, home geo.LatLng) *vehicle.Vehicle {
	return &vehicle.Vehicle{ID: id, Class: class, Home: home}
}

// TestRun_SingleBookingSingleVehicle mirrors scenario S1: one class2 vehicle at
// the origin, one class1 booking nearby; it should be assigned and the
// vehicle's active/dead km should follow the route-cost formulas directly.
func TestRun_SingleBookingSingleVehicle(t *testing.T) {
	h := oracle.Haversine{}
	reg := &vehicle.Registry{Vehicles: []*vehicle.Vehicle{newVehicle(1, 2, geo.LatLng{})}}
	b := &booking.Booking{
		ID: 1, Class: 1,
		PickupCoord: geo.LatLng{Lat: 0, Lng: 0.1},
		DropCoord:   geo.LatLng{Lat: 0, Lng: 0.2},
		PickupTime:  480, DistanceKm: 11.1, TravelTime: 15,
	}
	index := map[int]*booking.Booking{}
	prices := pricing.DefaultTable()
	remaining := Run(reg, []*booking.Booking{b}, index, h, prices, Options{})
	if len(remaining) != 0 {
		t.Fatalf("expected booking to be assigned, got %d remaining", len(remaining))
	}
	v := reg.Vehicles[0]
	if len(v.AssignedIDs) != 1 || v.AssignedIDs[0] != 1 {
		t.Fatalf("expected vehicle to hold booking 1, got %v", v.AssignedIDs)
	}
	wantActive := 11.1
	if v.ActiveKm != wantActive {
		t.Errorf("ActiveKm = %f, want %f", v.ActiveKm, wantActive)
	}
	wantDead := h.DistanceKm(geo.LatLng{}, b.PickupCoord)
	if v.DeadKm != wantDead {
		t.Errorf("DeadKm = %f, want %f", v.DeadKm, wantDead)
	}
}

func TestRun_ClassMismatchLeavesUnassigned(t *testing.T) {
	h := oracle.Haversine{}
	reg := &vehicle.Registry{Vehicles: []*vehicle.Vehicle{newVehicle(1, 1, geo.LatLng{})}}
	b := &booking.Booking{ID: 1, Class: 5, PickupCoord: geo.LatLng{Lat: 1}, DropCoord: geo.LatLng{Lat: 2}, PickupTime: 500}
	remaining := Run(reg, []*booking.Booking{b}, map[int]*booking.Booking{}, h, pricing.DefaultTable(), Options{})
	if len(remaining) != 1 {
		t.Fatalf("expected booking to remain unassigned, got %d remaining", len(remaining))
	}
}

// TestRun_PicksVehicleMinimizingDelta checks the core selection rule: given two
// equally suitable vehicles, the one closer to the pickup (lower dead km) wins.
func TestRun_PicksVehicleMinimizingDelta(t *testing.T) {
	h := oracle.Haversine{}
	near := newVehicle(1, 1, geo.LatLng{Lat: 0, Lng: 0})
	far := newVehicle(2, 1, geo.LatLng{Lat: 0, Lng: 5})
	reg := &vehicle.Registry{Vehicles: []*vehicle.Vehicle{far, near}}
	b := &booking.Booking{ID: 1, Class: 1, PickupCoord: geo.LatLng{Lat: 0, Lng: 0.01}, DropCoord: geo.LatLng{Lat: 0, Lng: 1}, DistanceKm: 100, PickupTime: 1000}
	Run(reg, []*booking.Booking{b}, map[int]*booking.Booking{}, h, pricing.DefaultTable(), Options{})
	if len(near.AssignedIDs) != 1 {
		t.Errorf("expected the nearer vehicle to win, near.AssignedIDs=%v far.AssignedIDs=%v", near.AssignedIDs, far.AssignedIDs)
	}
}

func TestRun_WaiveAvailabilityIgnoresAvailableFrom(t *testing.T) {
	h := oracle.Haversine{}
	v := newVehicle(1, 1, geo.LatLng{})
	v.AvailableFrom = 900 // busy until 15:00
	reg := &vehicle.Registry{Vehicles: []*vehicle.Vehicle{v}}
	b := &booking.Booking{ID: 1, Class: 1, PickupCoord: geo.LatLng{Lat: 0, Lng: 0.1}, DropCoord: geo.LatLng{Lat: 0, Lng: 0.2}, PickupTime: 630}

	remainingNoWaive := Run(reg, []*booking.Booking{b}, map[int]*booking.Booking{}, h, pricing.DefaultTable(), Options{})
	if len(remainingNoWaive) != 1 {
		t.Fatalf("expected booking to be rejected without waiver, got %d remaining", len(remainingNoWaive))
	}

	remainingWaived := Run(reg, []*booking.Booking{b}, map[int]*booking.Booking{}, h, pricing.DefaultTable(), Options{WaiveAvailability: true})
	if len(remainingWaived) != 0 {
		t.Fatalf("expected booking to be assigned with waiver, got %d remaining", len(remainingWaived))
	}
}

func TestRun_ClassOverrideRequiresHigherClass(t *testing.T) {
	h := oracle.Haversine{}
	v1 := newVehicle(1, 1, geo.LatLng{})
	reg := &vehicle.Registry{Vehicles: []*vehicle.Vehicle{v1}}
	b := &booking.Booking{ID: 1, Class: 1, PickupCoord: geo.LatLng{Lat: 0, Lng: 0.1}, DropCoord: geo.LatLng{Lat: 0, Lng: 0.2}, PickupTime: 500}
	remaining := Run(reg, []*booking.Booking{b}, map[int]*booking.Booking{}, h, pricing.DefaultTable(), Options{ClassOverride: 2})
	if len(remaining) != 1 {
		t.Fatalf("expected class-1 vehicle to be rejected under class-2 override, got %d remaining", len(remaining))
	}
}
