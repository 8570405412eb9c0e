// Package report renders the tick-by-tick and end-of-day console summaries:
// per-vehicle tables, per-booking {locked, unlocked} x {scheduled, instant}
// status, and fleet-wide financial totals.
package report

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"dispatchsim/internal/dispatch/booking"
	"dispatchsim/internal/dispatch/metrics"
)

// BookingLine is one booking's status as of a tick: its origin, lock state,
// and the vehicle carrying it (0 if still unassigned).
type BookingLine struct {
	BookingID int
	Class     int
	Origin    booking.Origin
	Locked    bool
	VehicleID int
}

// PrintTick writes the full human-readable report for one tick: the vehicle
// assignment table, the per-booking status table, and the financial summary.
func PrintTick(w io.Writer, simTime int, vehicles []metrics.PerVehicle, bookings []BookingLine, snap metrics.Snapshot) {
	fmt.Fprintf(w, "\n=== tick %02d:%02d ===\n", simTime/60, simTime%60)
	PrintVehicleTable(w, vehicles)
	PrintBookingStatus(w, bookings)
	PrintSummary(w, snap)
}

// PrintVehicleTable writes one row per vehicle that was assigned at least one
// booking.
func PrintVehicleTable(w io.Writer, rows []metrics.PerVehicle) {
	tw := tabwriter.NewWriter(w, 0, 2, 2, ' ', 0)
	fmt.Fprintln(tw, "VEHICLE\tBOOKINGS\tACTIVE KM\tDEAD KM\tDRIVER PAY\tEFFICIENCY")
	for _, r := range rows {
		if r.Bookings == 0 {
			continue
		}
		fmt.Fprintf(tw, "%d\t%d\t%.2f\t%.2f\t%.2f\t%.1f%%\n",
			r.VehicleID, r.Bookings, r.ActiveKm, r.DeadKm, r.DriverPay, r.Efficiency*100)
	}
	tw.Flush()
}

// PrintBookingStatus writes one row per currently-visible booking: its class,
// origin (scheduled/instant), lock state (locked/unlocked), and carrying
// vehicle (unassigned if none).
func PrintBookingStatus(w io.Writer, bookings []BookingLine) {
	if len(bookings) == 0 {
		return
	}
	tw := tabwriter.NewWriter(w, 0, 2, 2, ' ', 0)
	fmt.Fprintln(tw, "BOOKING\tCLASS\tORIGIN\tLOCK\tVEHICLE")
	for _, b := range bookings {
		origin := "scheduled"
		if b.Origin == booking.Instant {
			origin = "instant"
		}
		lock := "unlocked"
		if b.Locked {
			lock = "locked"
		}
		vehicle := "unassigned"
		if b.VehicleID != 0 {
			vehicle = strconv.Itoa(b.VehicleID)
		}
		fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%s\n", b.BookingID, b.Class, origin, lock, vehicle)
	}
	tw.Flush()
}

// PrintUnassigned lists bookings that were never placed on any vehicle.
func PrintUnassigned(w io.Writer, bookings []*booking.Booking) {
	if len(bookings) == 0 {
		return
	}
	tw := tabwriter.NewWriter(w, 0, 2, 2, ' ', 0)
	fmt.Fprintln(tw, "UNASSIGNED BOOKING\tCLASS\tPICKUP\tDISTANCE KM")
	for _, b := range bookings {
		fmt.Fprintf(tw, "%d\t%d\t%02d:%02d\t%.2f\n", b.ID, b.Class, b.PickupTime/60, b.PickupTime%60, b.DistanceKm)
	}
	tw.Flush()
}

// PrintSummary writes the fleet-wide totals line.
func PrintSummary(w io.Writer, snap metrics.Snapshot) {
	fmt.Fprintf(w, "total profit=%.2f customer_fare=%.2f driver_pay=%.2f active_km=%.2f dead_km=%.2f "+
		"efficiency=%.1f%% assigned=%d unassigned=%d\n",
		snap.Profit, snap.CustomerFareTotal, snap.DriverPayTotal, snap.ActiveKmTotal, snap.DeadKmTotal,
		snap.Efficiency*100, snap.Assigned, snap.Unassigned)
}
