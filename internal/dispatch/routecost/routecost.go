// Package routecost implements the route & cost calculator (C4): active/dead km,
// driver pay, customer fare, and efficiency, given a vehicle's home and an
// ordered sequence of bookings.
package routecost

import (
	"dispatchsim/internal/dispatch/booking"
	"dispatchsim/internal/dispatch/geo"
	"dispatchsim/internal/dispatch/oracle"
	"dispatchsim/internal/dispatch/pricing"
)

// Route builds the polyline (pickup1, drop1, pickup2, drop2, ...) for an ordered
// sequence of bookings.
func Route(bookings []*booking.Booking) []geo.LatLng {
	route := make([]geo.LatLng, 0, len(bookings)*2)
	for _, b := range bookings {
		route = append(route, b.PickupCoord, b.DropCoord)
	}
	return route
}

// ActiveKm sums the per-booking trip distances.
func ActiveKm(bookings []*booking.Booking) float64 {
	var total float64
	for _, b := range bookings {
		total += b.DistanceKm
	}
	return total
}

// DeadKmNonFinal is home->first pickup plus every inter-trip deadhead. It does
// not include the final drop->home leg; it is the form used while the plan is
// still subject to insertion.
func DeadKmNonFinal(o oracle.Oracle, home geo.LatLng, bookings []*booking.Booking) float64 {
	if len(bookings) == 0 {
		return 0
	}
	var total float64
	total += o.DistanceKm(home, bookings[0].PickupCoord)
	for i := 0; i+1 < len(bookings); i++ {
		total += o.DistanceKm(bookings[i].DropCoord, bookings[i+1].PickupCoord)
	}
	return total
}

// Finalize adds the last-drop->home leg exactly once, turning a non-final dead-km
// total into the finalized form booked at the end of a reassignment tick.
func Finalize(o oracle.Oracle, home geo.LatLng, bookings []*booking.Booking, deadKmNonFinal float64) float64 {
	if len(bookings) == 0 {
		return 0
	}
	last := bookings[len(bookings)-1]
	return deadKmNonFinal + o.DistanceKm(last.DropCoord, home)
}

// DriverPay is active_km*active_pay + dead_km*dead_pay for one vehicle's rate.
func DriverPay(activeKm, deadKm float64, rate pricing.Rate) float64 {
	return activeKm*rate.ActivePay + deadKm*rate.DeadPay
}

// CustomerFare is the aggregated (not per-vehicle-stored) customer price for a
// single booking: (distance + distance*dead_ratio) * customer_price.
func CustomerFare(distanceKm float64, rate pricing.Rate) float64 {
	return (distanceKm + distanceKm*rate.DeadRatio) * rate.CustomerPrice
}

// Efficiency is active/(active+dead); 0 when the vehicle has driven nothing.
func Efficiency(activeKm, deadKm float64) float64 {
	if activeKm+deadKm == 0 {
		return 0
	}
	return activeKm / (activeKm + deadKm)
}
