// Package metrics implements the fleet metrics aggregator (C10): totals across
// all vehicles, read-only from the vehicle registry.
package metrics

import (
	"dispatchsim/internal/dispatch/booking"
	"dispatchsim/internal/dispatch/pricing"
	"dispatchsim/internal/dispatch/routecost"
	"dispatchsim/internal/dispatch/vehicle"
)

// Snapshot is the fleet-wide aggregate for one tick.
type Snapshot struct {
	ActiveKmTotal    float64
	DeadKmTotal      float64
	DriverPayTotal   float64
	CustomerFareTotal float64
	Profit           float64
	Efficiency       float64
	Assigned         int
	Unassigned       int
}

// PerVehicle is a single vehicle's end-of-day breakdown, used for the
// per-vehicle summary table.
type PerVehicle struct {
	VehicleID  int
	ActiveKm   float64
	DeadKm     float64
	DriverPay  float64
	Efficiency float64
	Bookings   int
}

// Aggregate totals every vehicle in reg and the fares of every booking that is
// assigned to some vehicle. visibleCount is the caller's count of currently
// visible bookings; Unassigned is visibleCount minus the assigned count,
// floored at zero.
func Aggregate(reg *vehicle.Registry, index map[int]*booking.Booking, prices *pricing.Table, visibleCount int) Snapshot {
	var s Snapshot
	assignedIDs := make(map[int]bool)
	for _, v := range reg.Vehicles {
		s.ActiveKmTotal += v.ActiveKm
		s.DeadKmTotal += v.DeadKm
		s.DriverPayTotal += v.DriverPay
		for _, id := range v.AssignedIDs {
			assignedIDs[id] = true
			if b, ok := index[id]; ok {
				s.CustomerFareTotal += routecost.CustomerFare(b.DistanceKm, prices.Lookup(v.Class))
			}
		}
	}
	s.Assigned = len(assignedIDs)
	s.Unassigned = visibleCount - s.Assigned
	if s.Unassigned < 0 {
		s.Unassigned = 0
	}
	s.Profit = s.CustomerFareTotal - s.DriverPayTotal
	s.Efficiency = routecost.Efficiency(s.ActiveKmTotal, s.DeadKmTotal)
	return s
}

// PerVehicleBreakdown returns one PerVehicle entry per vehicle in reg, in the
// registry's own order (entries are not sorted by vehicle id).
func PerVehicleBreakdown(reg *vehicle.Registry) []PerVehicle {
	out := make([]PerVehicle, 0, len(reg.Vehicles))
	for _, v := range reg.Vehicles {
		out = append(out, PerVehicle{
			VehicleID:  v.ID,
			ActiveKm:   v.ActiveKm,
			DeadKm:     v.DeadKm,
			DriverPay:  v.DriverPay,
			Efficiency: routecost.Efficiency(v.ActiveKm, v.DeadKm),
			Bookings:   len(v.AssignedIDs),
		})
	}
	return out
}
