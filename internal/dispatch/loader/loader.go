// Package loader implements the instant-booking loader (C8): each instant
// booking gets a deterministic load-time drawn once at dataset load, and is
// emitted into the visible set once the simulated clock reaches that load-time.
package loader

import (
	"math/rand"

	"dispatchsim/internal/dispatch/booking"
)

// entry pairs a booking with its precomputed load-time and emitted state.
type entry struct {
	booking  *booking.Booking
	loadTime int
	emitted  bool
}

// Loader holds the full instant-booking dataset and its load-time schedule.
type Loader struct {
	entries []*entry
}

// New computes a load-time for every booking using rng, which callers must seed
// deterministically so that running the pipeline twice produces identical
// load times and downstream assignments.
func New(bookings []*booking.Booking, dayStart int, rng *rand.Rand) *Loader {
	l := &Loader{entries: make([]*entry, 0, len(bookings))}
	for _, b := range bookings {
		earliest := dayStart
		if b.PickupTime-120 > earliest {
			earliest = b.PickupTime - 120
		}
		latest := b.PickupTime - 60
		var loadTime int
		if latest > earliest {
			loadTime = earliest + rng.Intn(latest-earliest+1)
		} else {
			loadTime = earliest
		}
		l.entries = append(l.entries, &entry{booking: b, loadTime: loadTime})
	}
	return l
}

// Emit returns every booking whose load-time has arrived (<= t) and that has not
// been emitted yet, marking them emitted. Order is the dataset's original order.
func (l *Loader) Emit(t int) []*booking.Booking {
	var out []*booking.Booking
	for _, e := range l.entries {
		if e.emitted || e.loadTime > t {
			continue
		}
		e.emitted = true
		out = append(out, e.booking)
	}
	return out
}

// Pending reports how many bookings have not yet been emitted, useful for the
// tick driver to decide whether the loader still has work left and to compute
// the currently-visible dataset size (total minus pending).
func (l *Loader) Pending() int {
	n := 0
	for _, e := range l.entries {
		if !e.emitted {
			n++
		}
	}
	return n
}

// PendingIDs returns the set of booking ids not yet emitted, so callers can
// filter a currently-visible view of the dataset without reaching into the
// loader's internals.
func (l *Loader) PendingIDs() map[int]bool {
	out := make(map[int]bool)
	for _, e := range l.entries {
		if !e.emitted {
			out[e.booking.ID] = true
		}
	}
	return out
}
