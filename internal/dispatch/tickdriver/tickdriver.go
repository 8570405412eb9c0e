// Package tickdriver implements the tick driver (C9): advances a simulated
// clock from day start to day end in fixed steps, driving the loader, locking
// gate, and reassignment pipeline together each tick.
package tickdriver

import (
	"context"
	"os"
	"sort"
	"time"

	"dispatchsim/internal/dispatch/booking"
	"dispatchsim/internal/dispatch/loader"
	"dispatchsim/internal/dispatch/locking"
	"dispatchsim/internal/dispatch/metrics"
	"dispatchsim/internal/dispatch/oracle"
	"dispatchsim/internal/dispatch/pricing"
	"dispatchsim/internal/dispatch/reassign"
	"dispatchsim/internal/dispatch/vehicle"
	"dispatchsim/internal/report"
)

// Config carries the simulated-clock parameters.
type Config struct {
	DayStartMinutes  int           // default 360 (06:00)
	DayEndMinutes    int           // default 1140 (19:00)
	TickStepMinutes  int           // default 30
	RealSleepPerTick time.Duration // default 6s; cosmetic pacing only
}

// DefaultConfig returns the standard day-start/day-end/tick-step/pacing values.
func DefaultConfig() Config {
	return Config{DayStartMinutes: 360, DayEndMinutes: 1140, TickStepMinutes: 30, RealSleepPerTick: 6 * time.Second}
}

// TickEvent is handed to the driver's observer after every tick, including ticks
// where the reassignment pipeline did not run.
type TickEvent struct {
	SimTime     int
	Reassigned  bool
	NewInstants int
	Dropped     int
	Snapshot    metrics.Snapshot
	Vehicles    []metrics.PerVehicle
	Bookings    []report.BookingLine
}

// Driver owns the simulated clock and the single mutable vehicle registry.
// Nothing outside Run observes a partially-updated vehicle between ticks.
type Driver struct {
	Reg      *vehicle.Registry
	Index    map[int]*booking.Booking
	Oracle   oracle.Oracle
	Prices   *pricing.Table
	Loader   *loader.Loader
	Config   Config
	Reassign reassign.Config

	locked      map[int]bool
	pendingPool []*booking.Booking

	// OnTick, if non-nil, is invoked once per tick with that tick's event
	// instead of the default console report.
	OnTick func(TickEvent)
}

// New wires a driver around a registry, its booking index, and a loader
// carrying the instant-booking schedule. Scheduled bookings must already be
// present in index; callers run the initial greedy assignment (C5, via
// reassign.Run at t=DayStart) themselves before calling Run, since it is a
// one-time pre-pass rather than a per-tick responsibility.
func New(reg *vehicle.Registry, index map[int]*booking.Booking, o oracle.Oracle, prices *pricing.Table, ld *loader.Loader, cfg Config, reassignCfg reassign.Config) *Driver {
	return &Driver{
		Reg: reg, Index: index, Oracle: o, Prices: prices, Loader: ld,
		Config: cfg, Reassign: reassignCfg, locked: make(map[int]bool),
	}
}

// SeedUnassigned primes the pool of visible-but-unassigned bookings the tick
// loop will keep offering to the reassignment pipeline (e.g. any scheduled
// booking the initial greedy pass could not place).
func (d *Driver) SeedUnassigned(bookings []*booking.Booking) {
	d.pendingPool = append(d.pendingPool, bookings...)
}

// Run advances the clock from DayStartMinutes to DayEndMinutes, then runs the
// post-simulation sweep and returns the final fleet-wide snapshot. The stop
// signal in ctx is checked only between ticks, never mid-tick.
func (d *Driver) Run(ctx context.Context) (metrics.Snapshot, []*booking.Booking, error) {
	for t := d.Config.DayStartMinutes; t <= d.Config.DayEndMinutes; t += d.Config.TickStepMinutes {
		if err := ctx.Err(); err != nil {
			return metrics.Snapshot{}, nil, err
		}
		d.runTick(t)
		if d.Config.RealSleepPerTick > 0 {
			select {
			case <-time.After(d.Config.RealSleepPerTick):
			case <-ctx.Done():
				return metrics.Snapshot{}, nil, ctx.Err()
			}
		}
	}

	stillUnassigned := reassign.Sweep(d.Reg, d.pendingPool, d.Index, d.Oracle, d.Prices, d.Reassign)
	visible := len(d.Index) - d.Loader.Pending()
	final := metrics.Aggregate(d.Reg, d.Index, d.Prices, visible)
	return final, stillUnassigned, nil
}

func (d *Driver) runTick(t int) {
	newly := d.Loader.Emit(t)

	lockResult := locking.Run(d.Reg, d.Index, d.Oracle, d.Prices, t, d.locked)
	d.pendingPool = append(d.pendingPool, lockResult.Dropped...)

	reassigned := false
	if len(newly) > 0 {
		d.pendingPool = append(d.pendingPool, newly...)
		d.pendingPool = reassign.Run(d.Reg, d.pendingPool, d.Index, d.Oracle, d.Prices, t, d.Reassign)
		reassigned = true
	}

	// Visible is the currently-revealed dataset: the full index minus whatever
	// instant bookings the loader has not emitted yet, not the whole dataset.
	visible := len(d.Index) - d.Loader.Pending()
	snap := metrics.Aggregate(d.Reg, d.Index, d.Prices, visible)
	event := TickEvent{
		SimTime: t, Reassigned: reassigned, NewInstants: len(newly),
		Dropped: len(lockResult.Dropped), Snapshot: snap,
		Vehicles: metrics.PerVehicleBreakdown(d.Reg),
		Bookings: d.visibleBookingLines(),
	}
	if d.OnTick != nil {
		d.OnTick(event)
	} else {
		report.PrintTick(os.Stdout, event.SimTime, event.Vehicles, event.Bookings, event.Snapshot)
	}
}

// visibleBookingLines builds one report.BookingLine per currently-visible
// booking (every scheduled booking, plus every instant booking the loader has
// already emitted), tagged with its lock state and carrying vehicle.
func (d *Driver) visibleBookingLines() []report.BookingLine {
	pending := d.Loader.PendingIDs()
	ids := make([]int, 0, len(d.Index))
	for id := range d.Index {
		if pending[id] {
			continue
		}
		ids = append(ids, id)
	}
	sort.Ints(ids)

	lines := make([]report.BookingLine, 0, len(ids))
	for _, id := range ids {
		b := d.Index[id]
		vehicleID := 0
		if v := d.Reg.OwnerOf(id); v != nil {
			vehicleID = v.ID
		}
		lines = append(lines, report.BookingLine{
			BookingID: id, Class: b.Class, Origin: b.Origin,
			Locked: d.locked[id], VehicleID: vehicleID,
		})
	}
	return lines
}
