// Package assign implements the greedy assigner (C5): for each booking in a pool,
// pick the suitable vehicle minimizing dead_km - active_km, then try to densify
// the chosen vehicle's route with other still-unassigned bookings.
package assign

import (
	"sort"

	"dispatchsim/internal/dispatch/booking"
	"dispatchsim/internal/dispatch/oracle"
	"dispatchsim/internal/dispatch/pricing"
	"dispatchsim/internal/dispatch/routecost"
	"dispatchsim/internal/dispatch/vehicle"
)

// DeadheadSpeedKmh is the assumed average speed used by the deadhead-from-drop
// availability test (a fixed 40 km/h).
const DeadheadSpeedKmh = 40.0

// maxRouteCompletions bounds how many extra bookings the completion scan splices
// into one vehicle's route per placement, to densify without looping forever.
const maxRouteCompletions = 2

// Options configures one run of the assigner.
type Options struct {
	// ClassOverride, when non-zero, requires vehicle.Class >= ClassOverride instead
	// of >= booking.Class. Used by the upgrade pass (C7 Pass B) to probe a shadow
	// class one above the booking's own.
	ClassOverride int
	// WaiveAvailability skips the deadhead-from-drop predicate entirely (C7 Pass C).
	WaiveAvailability bool
	// LoadCap is the maximum bookings a vehicle may hold while this pass runs.
	LoadCap int
}

// Run attempts to place every booking in pool onto a vehicle in reg, mutating reg
// in place. It returns the bookings that remain unassigned after this pass.
func Run(reg *vehicle.Registry, pool []*booking.Booking, index map[int]*booking.Booking, o oracle.Oracle, prices *pricing.Table, opt Options) []*booking.Booking {
	ascending := append([]*booking.Booking(nil), pool...)
	sort.Sort(booking.ByPickupAscending(ascending))
	descending := append([]*booking.Booking(nil), pool...)
	sort.Sort(booking.ByPickupDescending(descending))

	unassignedSet := make(map[int]*booking.Booking, len(pool))
	for _, b := range pool {
		unassignedSet[b.ID] = b
	}

	for _, b := range ascending {
		if _, stillPending := unassignedSet[b.ID]; !stillPending {
			continue // already placed by a route-completion splice
		}
		v := pickVehicle(reg, b, o, prices, opt)
		if v == nil {
			continue
		}
		placeBooking(v, b, index, o, prices)
		delete(unassignedSet, b.ID)
		completeRoute(v, descending, unassignedSet, index, o, prices, opt)
	}

	remaining := make([]*booking.Booking, 0, len(unassignedSet))
	for _, b := range pool {
		if _, ok := unassignedSet[b.ID]; ok {
			remaining = append(remaining, b)
		}
	}
	sort.Sort(booking.ByPickupAscending(remaining))
	return remaining
}

func requiredClass(b *booking.Booking, opt Options) int {
	if opt.ClassOverride > 0 {
		return opt.ClassOverride
	}
	return b.Class
}

// isAvailable applies the deadhead-from-drop test: available_from plus travel
// time from the vehicle's current last stop to the booking's pickup must not
// exceed the booking's pickup time.
func isAvailable(v *vehicle.Vehicle, b *booking.Booking, o oracle.Oracle) bool {
	lastStop := v.LastStop()
	deadheadKm := o.DistanceKm(lastStop, b.PickupCoord)
	travelMinutes := int((deadheadKm / DeadheadSpeedKmh) * 60)
	return v.AvailableFrom+travelMinutes <= b.PickupTime
}

func vehicleBookings(v *vehicle.Vehicle, index map[int]*booking.Booking) []*booking.Booking {
	out := make([]*booking.Booking, 0, len(v.AssignedIDs)+1)
	for _, id := range v.AssignedIDs {
		if b, ok := index[id]; ok {
			out = append(out, b)
		}
	}
	return out
}

func loadCapOf(opt Options) int {
	if opt.LoadCap > 0 {
		return opt.LoadCap
	}
	return 1 << 30
}

// pickVehicle picks, among vehicles matching the class and (unless waived)
// availability predicates, the one minimizing hypotheticalDelta. Ties are broken
// by lower current booking count, then lower vehicle id.
func pickVehicle(reg *vehicle.Registry, b *booking.Booking, o oracle.Oracle, prices *pricing.Table, opt Options) *vehicle.Vehicle {
	maxLoad := loadCapOf(opt)
	class := requiredClass(b, opt)

	var best *vehicle.Vehicle
	var bestDelta float64
	for _, v := range reg.Vehicles {
		if v.Class < class {
			continue
		}
		if len(v.AssignedIDs) >= maxLoad {
			continue
		}
		if !opt.WaiveAvailability && !isAvailable(v, b, o) {
			continue
		}
		delta := hypotheticalDeltaSimple(v, b, o, class, prices)
		if best == nil || delta < bestDelta ||
			(delta == bestDelta && tiebreak(v, best)) {
			best = v
			bestDelta = delta
		}
	}
	return best
}

func tiebreak(candidate, current *vehicle.Vehicle) bool {
	if len(candidate.AssignedIDs) != len(current.AssignedIDs) {
		return len(candidate.AssignedIDs) < len(current.AssignedIDs)
	}
	return candidate.ID < current.ID
}

// hypotheticalDeltaSimple avoids needing the full booking index when only the
// candidate vehicle's already-assigned bookings matter (pickVehicle never needs
// prices, but keeps the same signature shape as the rest of the package for
// symmetry with reassign's shadow-class probes).
func hypotheticalDeltaSimple(v *vehicle.Vehicle, b *booking.Booking, o oracle.Oracle, class int, _ *pricing.Table) float64 {
	// Route is reconstructed from the vehicle's own Route/ActiveKm bookkeeping,
	// so no index lookup is required here: the vehicle stores its polyline, and
	// active/dead km can be derived by extending that polyline directly.
	active := v.ActiveKm + b.DistanceKm
	dead := extendedDeadKm(v, b, o)
	return dead - active
}

// extendedDeadKm recomputes non-final dead km for v's route with b appended at
// the end (bookings are processed in ascending pickup order, so appending keeps
// the route sorted for the common case; route completion re-sorts explicitly).
func extendedDeadKm(v *vehicle.Vehicle, b *booking.Booking, o oracle.Oracle) float64 {
	if len(v.AssignedIDs) == 0 {
		return o.DistanceKm(v.Home, b.PickupCoord)
	}
	lastDrop := v.Route[len(v.Route)-1]
	return v.DeadKm + o.DistanceKm(lastDrop, b.PickupCoord)
}

// placeBooking appends b to v's plan, re-sorts by pickup, and recomputes the
// vehicle's route, active/dead km (non-final), driver pay, and available_from.
func placeBooking(v *vehicle.Vehicle, b *booking.Booking, index map[int]*booking.Booking, o oracle.Oracle, prices *pricing.Table) {
	v.AssignedIDs = append(v.AssignedIDs, b.ID)
	index[b.ID] = b
	recompute(v, index, o)
	v.DriverPay = routecost.DriverPay(v.ActiveKm, v.DeadKm, prices.Lookup(v.Class))
}

// recompute rebuilds a vehicle's route, active/dead km (non-final form), and
// available_from from scratch, the way the data model requires whenever
// assigned_ids is rebuilt. Driver pay is left to the caller (it needs a rate).
func recompute(v *vehicle.Vehicle, index map[int]*booking.Booking, o oracle.Oracle) {
	bookings := vehicleBookings(v, index)
	sort.Sort(booking.ByPickupAscending(bookings))
	newIDs := make([]int, len(bookings))
	for i, b := range bookings {
		newIDs[i] = b.ID
	}
	v.AssignedIDs = newIDs
	v.Route = routecost.Route(bookings)
	v.ActiveKm = routecost.ActiveKm(bookings)
	v.DeadKm = routecost.DeadKmNonFinal(o, v.Home, bookings)
	if len(bookings) > 0 {
		last := bookings[len(bookings)-1]
		v.AvailableFrom = last.CompletionTime(ServiceTimeMinutes)
	}
}

// ServiceTimeMinutes is the fixed per-booking service time added after travel.
var ServiceTimeMinutes = 30

// completeRoute scans the descending list for still-unassigned bookings that fit
// v and are profitable (negative delta), splicing in up to maxRouteCompletions
// of them before moving on to the next booking in the outer pass.
func completeRoute(v *vehicle.Vehicle, descending []*booking.Booking, unassignedSet map[int]*booking.Booking, index map[int]*booking.Booking, o oracle.Oracle, prices *pricing.Table, opt Options) {
	added := 0
	maxLoad := loadCapOf(opt)
	for _, cand := range descending {
		if added >= maxRouteCompletions {
			return
		}
		if len(v.AssignedIDs) >= maxLoad {
			return
		}
		if _, pending := unassignedSet[cand.ID]; !pending {
			continue
		}
		if v.Class < cand.Class {
			continue
		}
		if !opt.WaiveAvailability && !isAvailable(v, cand, o) {
			continue
		}
		delta := hypotheticalDeltaSimple(v, cand, o, cand.Class, prices)
		if delta >= 0 {
			continue // only splice in bookings that are incrementally profitable
		}
		placeBooking(v, cand, index, o, prices)
		delete(unassignedSet, cand.ID)
		added++
	}
}

// FinalizePay recomputes v's driver pay from its current active/dead km using
// rate. Callers finalize dead km (home-return leg) separately, once per tick,
// before calling this, so the pay reflects the finalized dead km.
func FinalizePay(v *vehicle.Vehicle, rate pricing.Rate) {
	v.DriverPay = routecost.DriverPay(v.ActiveKm, v.DeadKm, rate)
}
