// Package locking implements the locking gate (C6): at every tick, partition each
// vehicle's assigned bookings into locked (near-term, frozen) and unlocked (still
// open to reassignment), and recompute each vehicle's post-locked availability.
package locking

import (
	"sort"

	"dispatchsim/internal/dispatch/booking"
	"dispatchsim/internal/dispatch/oracle"
	"dispatchsim/internal/dispatch/pricing"
	"dispatchsim/internal/dispatch/routecost"
	"dispatchsim/internal/dispatch/vehicle"
)

// LockWindowMinutes is the forward window (120 minutes by default) inside
// which an assigned booking's pickup freezes it in place. A package var, not a
// const, so the tick driver's entry point can override it from configuration
// before the first tick runs.
var LockWindowMinutes = 120

// Result is the outcome of running the gate at one tick.
type Result struct {
	// Locked accumulates every booking id locked across all vehicles so far this run.
	Locked map[int]bool
	// Dropped holds the bookings that were unlocked and removed from a vehicle's
	// plan this tick, destined for the reassignment pool.
	Dropped []*booking.Booking
}

// Run applies the gate to every vehicle in reg at simulated time t. locked is the
// running set of booking ids locked in prior ticks; it is mutated in place and
// only ever grows (invariant: LOCKED is monotonic).
func Run(reg *vehicle.Registry, index map[int]*booking.Booking, o oracle.Oracle, prices *pricing.Table, t int, locked map[int]bool) Result {
	var dropped []*booking.Booking

	for _, v := range reg.Vehicles {
		bookings := bookingsFor(v, index)
		sort.Sort(booking.ByPickupAscending(bookings))

		var lockedHere []*booking.Booking
		var unlockedHere []*booking.Booking
		maxCompletion := -1
		for _, b := range bookings {
			if b.PickupTime <= t+LockWindowMinutes {
				lockedHere = append(lockedHere, b)
				locked[b.ID] = true
				if c := b.CompletionTime(ServiceTimeMinutes); c > maxCompletion {
					maxCompletion = c
				}
			} else {
				unlockedHere = append(unlockedHere, b)
			}
		}

		candidateAvailable := t
		if maxCompletion > candidateAvailable {
			candidateAvailable = maxCompletion
		}
		// A dropped unlocked booking cannot earn the vehicle back unused minutes:
		// available_from never decreases from what the pre-drop state already committed to.
		if candidateAvailable < v.AvailableFrom && len(unlockedHere) > 0 {
			candidateAvailable = v.AvailableFrom
		}
		v.AvailableFrom = candidateAvailable

		dropped = append(dropped, unlockedHere...)

		ids := make([]int, len(lockedHere))
		for i, b := range lockedHere {
			ids[i] = b.ID
		}
		v.AssignedIDs = ids
		v.Route = routecost.Route(lockedHere)
		v.ActiveKm = routecost.ActiveKm(lockedHere)
		v.DeadKm = routecost.DeadKmNonFinal(o, v.Home, lockedHere)
		v.DriverPay = routecost.DriverPay(v.ActiveKm, v.DeadKm, prices.Lookup(v.Class))
	}

	return Result{Locked: locked, Dropped: dropped}
}

// ServiceTimeMinutes mirrors assign.ServiceTimeMinutes; kept as its own package
// var rather than imported, since the locking gate only needs it to compute
// completion times of already-locked bookings and does not otherwise depend on
// the assign package. The tick driver's entry point keeps both vars in sync
// from the same configuration value.
var ServiceTimeMinutes = 30

func bookingsFor(v *vehicle.Vehicle, index map[int]*booking.Booking) []*booking.Booking {
	out := make([]*booking.Booking, 0, len(v.AssignedIDs))
	for _, id := range v.AssignedIDs {
		if b, ok := index[id]; ok {
			out = append(out, b)
		}
	}
	return out
}
