package tickdriver

import (
	"context"
	"math"
	"math/rand"
	"testing"

	"dispatchsim/internal/dispatch/booking"
	"dispatchsim/internal/dispatch/geo"
	"dispatchsim/internal/dispatch/loader"
	"dispatchsim/internal/dispatch/oracle"
	"dispatchsim/internal/dispatch/pricing"
	"dispatchsim/internal/dispatch/reassign"
	"dispatchsim/internal/dispatch/vehicle"
)

// TestRun_S1_SingleScheduledSingleVehicle mirrors scenario S1 through the full
// tick driver: one class2 vehicle, one class1 booking; expect it assigned with
// active/dead km following the route-cost formulas and pay at class2 rates.
func TestRun_S1_SingleScheduledSingleVehicle(t *testing.T) {
	h := oracle.Haversine{}
	v := &vehicle.Vehicle{ID: 1, Class: 2, Home: geo.LatLng{}}
	reg := &vehicle.Registry{Vehicles: []*vehicle.Vehicle{v}}
	b := &booking.Booking{ID: 1, Class: 1, PickupCoord: geo.LatLng{Lat: 0, Lng: 0.1}, DropCoord: geo.LatLng{Lat: 0, Lng: 0.2}, PickupTime: 480, DistanceKm: 11.1, TravelTime: 15}
	index := map[int]*booking.Booking{1: b}
	prices := pricing.NewTable(map[int]pricing.Rate{2: {ActivePay: 16, DeadPay: 10, CustomerPrice: 20, DeadRatio: 0.4}})

	cfg := DefaultConfig()
	cfg.RealSleepPerTick = 0
	rcfg := reassign.DefaultConfig()
	ld := loader.New(nil, cfg.DayStartMinutes, rand.New(rand.NewSource(1)))

	// Initial greedy pre-assignment of scheduled bookings, same pipeline the
	// tick driver uses for instants, run once at day start.
	reassign.Run(reg, []*booking.Booking{b}, index, h, prices, cfg.DayStartMinutes, rcfg)

	d := New(reg, index, h, prices, ld, cfg, rcfg)
	final, unassigned, err := d.Run(context.Background())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if len(unassigned) != 0 {
		t.Fatalf("expected booking assigned, got %d unassigned", len(unassigned))
	}
	wantDead := h.DistanceKm(geo.LatLng{}, b.PickupCoord) + h.DistanceKm(b.DropCoord, geo.LatLng{})
	if math.Abs(v.DeadKm-wantDead) > 1e-9 {
		t.Errorf("DeadKm = %f, want %f", v.DeadKm, wantDead)
	}
	wantPay := v.ActiveKm*16 + v.DeadKm*10
	if math.Abs(v.DriverPay-wantPay) > 1e-9 {
		t.Errorf("DriverPay = %f, want %f", v.DriverPay, wantPay)
	}
	if final.Assigned != 1 || final.Unassigned != 0 {
		t.Errorf("final snapshot = %+v, want Assigned=1 Unassigned=0", final)
	}
}

// TestRun_InstantEmittedAndAssignedDuringTicks checks that an instant booking
// revealed mid-day gets picked up by a later tick's reassignment pass.
func TestRun_InstantEmittedAndAssignedDuringTicks(t *testing.T) {
	h := oracle.Haversine{}
	v := &vehicle.Vehicle{ID: 1, Class: 1, Home: geo.LatLng{}}
	reg := &vehicle.Registry{Vehicles: []*vehicle.Vehicle{v}}
	instant := &booking.Booking{ID: 1, Class: 1, PickupCoord: geo.LatLng{Lat: 0, Lng: 0.1}, DropCoord: geo.LatLng{Lat: 0, Lng: 0.2}, PickupTime: 600, DistanceKm: 11.1, TravelTime: 15, Origin: booking.Instant}
	index := map[int]*booking.Booking{1: instant}

	cfg := DefaultConfig()
	cfg.RealSleepPerTick = 0
	rcfg := reassign.DefaultConfig()
	ld := loader.New([]*booking.Booking{instant}, cfg.DayStartMinutes, rand.New(rand.NewSource(1)))

	d := New(reg, index, h, pricing.DefaultTable(), ld, cfg, rcfg)
	ticksWithReassignment := 0
	d.OnTick = func(e TickEvent) {
		if e.Reassigned {
			ticksWithReassignment++
		}
	}
	final, unassigned, err := d.Run(context.Background())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if ticksWithReassignment == 0 {
		t.Fatal("expected at least one tick to run the reassignment pipeline")
	}
	if len(unassigned) != 0 || final.Assigned != 1 {
		t.Fatalf("expected the instant booking assigned by day end, unassigned=%d final=%+v", len(unassigned), final)
	}
}

// TestInvariants_AcrossManyTicks runs a larger randomized fleet/booking set and
// checks invariants 1, 2, 3, and 6 after every tick.
func TestInvariants_AcrossManyTicks(t *testing.T) {
	h := oracle.Haversine{}
	rng := rand.New(rand.NewSource(99))

	var vehicles []*vehicle.Vehicle
	for i := 1; i <= 5; i++ {
		vehicles = append(vehicles, &vehicle.Vehicle{ID: i, Class: 1 + i%3, Home: geo.LatLng{Lat: rng.Float64(), Lng: rng.Float64()}})
	}
	reg := &vehicle.Registry{Vehicles: vehicles}

	index := map[int]*booking.Booking{}
	var scheduled []*booking.Booking
	var instants []*booking.Booking
	for i := 1; i <= 30; i++ {
		b := &booking.Booking{
			ID: i, Class: 1 + i%3,
			PickupCoord: geo.LatLng{Lat: rng.Float64(), Lng: rng.Float64()},
			DropCoord:   geo.LatLng{Lat: rng.Float64(), Lng: rng.Float64()},
			PickupTime:  360 + rng.Intn(780),
			DistanceKm:  rng.Float64() * 20,
			TravelTime:  10 + rng.Intn(30),
		}
		index[i] = b
		if i%2 == 0 {
			b.Origin = booking.Instant
			instants = append(instants, b)
		} else {
			b.Origin = booking.Scheduled
			scheduled = append(scheduled, b)
		}
	}

	cfg := DefaultConfig()
	cfg.RealSleepPerTick = 0
	rcfg := reassign.DefaultConfig()
	ld := loader.New(instants, cfg.DayStartMinutes, rand.New(rand.NewSource(5)))

	reassign.Run(reg, scheduled, index, h, pricing.DefaultTable(), cfg.DayStartMinutes, rcfg)
	checkInvariants(t, reg, index)

	d := New(reg, index, h, pricing.DefaultTable(), ld, cfg, rcfg)
	priorLocked := map[int]bool{}
	d.OnTick = func(e TickEvent) {
		checkInvariants(t, reg, index)
		for id := range priorLocked {
			if !d.locked[id] {
				t.Errorf("booking %d was locked in a prior tick but is no longer in the locked set", id)
			}
		}
		priorLocked = make(map[int]bool, len(d.locked))
		for id := range d.locked {
			priorLocked[id] = true
		}
	}
	if _, _, err := d.Run(context.Background()); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
}

func checkInvariants(t *testing.T, reg *vehicle.Registry, index map[int]*booking.Booking) {
	t.Helper()
	seen := map[int]int{}
	for _, v := range reg.Vehicles {
		for i, id := range v.AssignedIDs {
			seen[id]++
			if seen[id] > 1 {
				t.Errorf("booking %d assigned to more than one vehicle", id)
			}
			if b, ok := index[id]; ok && v.Class < b.Class {
				t.Errorf("vehicle %d class %d holds booking %d requiring class %d", v.ID, v.Class, id, b.Class)
			}
			if i > 0 {
				prev, curr := index[v.AssignedIDs[i-1]], index[id]
				if prev != nil && curr != nil && prev.PickupTime > curr.PickupTime {
					t.Errorf("vehicle %d AssignedIDs not sorted by pickup time: %v", v.ID, v.AssignedIDs)
				}
			}
		}
		wantPay := v.ActiveKm*ratePay(v.Class).ActivePay + v.DeadKm*ratePay(v.Class).DeadPay
		if math.Abs(v.DriverPay-wantPay) > 1e-6 {
			t.Errorf("vehicle %d DriverPay = %f, want %f", v.ID, v.DriverPay, wantPay)
		}
	}
}

func ratePay(class int) pricing.Rate {
	return pricing.DefaultTable().Lookup(class)
}
