// Package booking holds the immutable Booking record shared by the dispatch pipeline.
package booking

import "dispatchsim/internal/dispatch/geo"

// Origin distinguishes a booking known at day start from one revealed during the day.
type Origin string

const (
	Scheduled Origin = "scheduled"
	Instant   Origin = "instant"
)

// DefaultTravelTimeMinutes is substituted when an input booking omits travel_time.
const DefaultTravelTimeMinutes = 30

// Booking is immutable once loaded; only a vehicle's assigned_ids references it.
type Booking struct {
	ID          int
	Class       int
	PickupCoord geo.LatLng
	DropCoord   geo.LatLng
	PickupTime  int // minutes since midnight
	DistanceKm  float64
	TravelTime  int // minutes
	Origin      Origin
}

// CompletionTime is pickup_time + travel_time + serviceTimeMinutes.
func (b *Booking) CompletionTime(serviceTimeMinutes int) int {
	return b.PickupTime + b.TravelTime + serviceTimeMinutes
}

// ByPickupAscending sorts bookings by pickup time ascending, ties broken by id.
type ByPickupAscending []*Booking

func (s ByPickupAscending) Len() int      { return len(s) }
func (s ByPickupAscending) Swap(i, j int) { s[i], s[j] = s[j], s[i] }
func (s ByPickupAscending) Less(i, j int) bool {
	if s[i].PickupTime != s[j].PickupTime {
		return s[i].PickupTime < s[j].PickupTime
	}
	return s[i].ID < s[j].ID
}

// ByPickupDescending is the reverse ordering used by the route-completion scan.
type ByPickupDescending []*Booking

func (s ByPickupDescending) Len() int      { return len(s) }
func (s ByPickupDescending) Swap(i, j int) { s[i], s[j] = s[j], s[i] }
func (s ByPickupDescending) Less(i, j int) bool {
	if s[i].PickupTime != s[j].PickupTime {
		return s[i].PickupTime > s[j].PickupTime
	}
	return s[i].ID > s[j].ID
}
