// Package reassign implements the reassignment pipeline (C7): three ordered
// passes over the pool of unlocked/newly-loaded/still-unassigned bookings, the
// once-per-tick home-return finalization, and the end-of-day best-effort sweep.
package reassign

import (
	"sort"

	"dispatchsim/internal/dispatch/assign"
	"dispatchsim/internal/dispatch/booking"
	"dispatchsim/internal/dispatch/oracle"
	"dispatchsim/internal/dispatch/pricing"
	"dispatchsim/internal/dispatch/routecost"
	"dispatchsim/internal/dispatch/vehicle"
)

// Config carries the pipeline's configurable windows and caps.
type Config struct {
	UrgentWindowMinutes int // default 60
	OverloadCap         int // default 8, applies to passes A/B/C
	OverloadCapFinal    int // default 10, applies to the post-simulation sweep
	ClassUpgradeMax     int // default 9, the highest class Pass B may probe up to
}

// DefaultConfig returns the standard urgency window and overload caps.
func DefaultConfig() Config {
	return Config{UrgentWindowMinutes: 60, OverloadCap: 8, OverloadCapFinal: 10, ClassUpgradeMax: 9}
}

// Run executes Pass A (exact class), Pass B (single-class upgrade), and Pass C
// (urgency relaxation) in order over pool, mutating reg, then finalizes every
// nonempty vehicle's home-return leg and driver pay exactly once. It returns the
// bookings still unassigned after all three passes.
func Run(reg *vehicle.Registry, pool []*booking.Booking, index map[int]*booking.Booking, o oracle.Oracle, prices *pricing.Table, t int, cfg Config) []*booking.Booking {
	remaining := passA(reg, pool, index, o, prices, cfg)
	remaining = passB(reg, remaining, index, o, prices, cfg)
	remaining = passC(reg, remaining, index, o, prices, t, cfg)
	Finalize(reg, index, o, prices)
	return remaining
}

// passA runs the match at each booking's own class (any vehicle of that class
// or higher) over the whole pool.
func passA(reg *vehicle.Registry, pool []*booking.Booking, index map[int]*booking.Booking, o oracle.Oracle, prices *pricing.Table, cfg Config) []*booking.Booking {
	return assign.Run(reg, pool, index, o, prices, assign.Options{LoadCap: cfg.OverloadCap})
}

// passB probes each still-unassigned booking, one at a time, one class above its
// own; a successful match keeps the booking at its original class but attaches it
// to the upgraded vehicle.
func passB(reg *vehicle.Registry, pool []*booking.Booking, index map[int]*booking.Booking, o oracle.Oracle, prices *pricing.Table, cfg Config) []*booking.Booking {
	var stillUnassigned []*booking.Booking
	for _, b := range pool {
		upgraded := b.Class + 1
		if upgraded > cfg.ClassUpgradeMax {
			stillUnassigned = append(stillUnassigned, b)
			continue
		}
		left := assign.Run(reg, []*booking.Booking{b}, index, o, prices, assign.Options{ClassOverride: upgraded, LoadCap: cfg.OverloadCap})
		if len(left) != 0 {
			stillUnassigned = append(stillUnassigned, b)
		}
	}
	return stillUnassigned
}

// passC waives the availability predicate for any booking whose pickup falls
// inside the urgent window; class compatibility and the load cap still apply.
func passC(reg *vehicle.Registry, pool []*booking.Booking, index map[int]*booking.Booking, o oracle.Oracle, prices *pricing.Table, t int, cfg Config) []*booking.Booking {
	var urgent, notUrgent []*booking.Booking
	for _, b := range pool {
		if b.PickupTime <= t+cfg.UrgentWindowMinutes {
			urgent = append(urgent, b)
		} else {
			notUrgent = append(notUrgent, b)
		}
	}
	if len(urgent) == 0 {
		return notUrgent
	}
	leftover := assign.Run(reg, urgent, index, o, prices, assign.Options{WaiveAvailability: true, LoadCap: cfg.OverloadCap})
	return append(notUrgent, leftover...)
}

// Finalize rebuilds every vehicle's route, active km, and dead km (finalized
// form, i.e. including the last-drop->home leg) from its current AssignedIDs,
// then recomputes driver pay. Deriving the totals from AssignedIDs rather than
// accumulating onto whatever dead km a vehicle already carried keeps Finalize
// safe to call more than once per tick (the sweep calls it a second time after
// appending best-effort placements) and makes a same-tick re-run idempotent.
func Finalize(reg *vehicle.Registry, index map[int]*booking.Booking, o oracle.Oracle, prices *pricing.Table) {
	for _, v := range reg.Vehicles {
		if len(v.AssignedIDs) == 0 {
			v.ActiveKm, v.DeadKm, v.DriverPay = 0, 0, 0
			continue
		}
		bookings := make([]*booking.Booking, 0, len(v.AssignedIDs))
		for _, id := range v.AssignedIDs {
			if b, ok := index[id]; ok {
				bookings = append(bookings, b)
			}
		}
		sort.Sort(booking.ByPickupAscending(bookings))
		v.Route = routecost.Route(bookings)
		v.ActiveKm = routecost.ActiveKm(bookings)
		nonFinal := routecost.DeadKmNonFinal(o, v.Home, bookings)
		v.DeadKm = routecost.Finalize(o, v.Home, bookings, nonFinal)
		assign.FinalizePay(v, prices.Lookup(v.Class))
	}
}

// Sweep runs once when the tick loop exits: a best-effort placement of any
// still-unassigned booking onto the least-loaded compatible vehicle, with no
// availability test and a softer load cap.
func Sweep(reg *vehicle.Registry, pool []*booking.Booking, index map[int]*booking.Booking, o oracle.Oracle, prices *pricing.Table, cfg Config) []*booking.Booking {
	ordered := append([]*booking.Booking(nil), pool...)
	sort.Sort(booking.ByPickupAscending(ordered))

	var stillUnassigned []*booking.Booking
	for _, b := range ordered {
		target := leastLoadedCompatible(reg, b, cfg.OverloadCapFinal)
		if target == nil {
			stillUnassigned = append(stillUnassigned, b)
			continue
		}
		target.AssignedIDs = append(target.AssignedIDs, b.ID)
		index[b.ID] = b
		resortAssignedIDs(target, index)
	}
	Finalize(reg, index, o, prices)
	return stillUnassigned
}

// resortAssignedIDs restores invariant 1 (assigned ids sorted by pickup time
// ascending) after Sweep appends a booking onto the end of a vehicle's list
// regardless of where its pickup falls relative to what's already there.
func resortAssignedIDs(v *vehicle.Vehicle, index map[int]*booking.Booking) {
	sort.Slice(v.AssignedIDs, func(i, j int) bool {
		bi, bj := index[v.AssignedIDs[i]], index[v.AssignedIDs[j]]
		if bi == nil || bj == nil {
			return false
		}
		return bi.PickupTime < bj.PickupTime
	})
}

func leastLoadedCompatible(reg *vehicle.Registry, b *booking.Booking, capFinal int) *vehicle.Vehicle {
	var best *vehicle.Vehicle
	for _, v := range reg.Vehicles {
		if v.Class < b.Class || len(v.AssignedIDs) >= capFinal {
			continue
		}
		if best == nil || len(v.AssignedIDs) < len(best.AssignedIDs) ||
			(len(v.AssignedIDs) == len(best.AssignedIDs) && v.ID < best.ID) {
			best = v
		}
	}
	return best
}
