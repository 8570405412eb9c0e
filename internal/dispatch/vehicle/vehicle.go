// Package vehicle implements the vehicle registry (C3): the one piece of mutable
// state in the simulation, confined to the tick driver and its collaborators.
package vehicle

import (
	"errors"

	"dispatchsim/internal/dispatch/geo"
)

// ErrNotFound is returned by lookups for a vehicle id absent from the registry.
var ErrNotFound = errors.New("vehicle: not found")

// Vehicle is a mutable aggregate. All mutation happens inside the assigner,
// locking gate, and reassignment pipeline; nothing else may alias a *Vehicle
// across a pool iteration.
type Vehicle struct {
	ID             int
	Class          int
	Home           geo.LatLng
	AssignedIDs    []int // ordered by pickup time ascending
	Route          []geo.LatLng // (pickup1, drop1, pickup2, drop2, ...)
	ActiveKm       float64
	DeadKm         float64
	DriverPay      float64
	AvailableFrom  int // minutes since midnight
}

// LastStop returns the vehicle's current position: the last drop on its route,
// or home if it holds no bookings.
func (v *Vehicle) LastStop() geo.LatLng {
	if len(v.Route) == 0 {
		return v.Home
	}
	return v.Route[len(v.Route)-1]
}

// Clone returns a deep copy so speculative passes can mutate a shadow registry
// without leaking partial state back into the real one on failure.
func (v *Vehicle) Clone() *Vehicle {
	cp := *v
	cp.AssignedIDs = append([]int(nil), v.AssignedIDs...)
	cp.Route = append([]geo.LatLng(nil), v.Route...)
	return &cp
}

// Registry is the full fleet. It is confined to the tick driver.
type Registry struct {
	Vehicles []*Vehicle
}

// ByID returns the vehicle with the given id, or nil if absent.
func (r *Registry) ByID(id int) *Vehicle {
	for _, v := range r.Vehicles {
		if v.ID == id {
			return v
		}
	}
	return nil
}

// Clone returns a structural deep copy of the whole registry, for running a
// speculative assignment attempt that can be discarded on failure. The
// reassignment passes do not call it; they mutate the live registry.
func (r *Registry) Clone() *Registry {
	cp := &Registry{Vehicles: make([]*Vehicle, len(r.Vehicles))}
	for i, v := range r.Vehicles {
		cp.Vehicles[i] = v.Clone()
	}
	return cp
}

// HasBooking reports whether id is assigned to any vehicle in the registry.
func (r *Registry) HasBooking(id int) bool {
	for _, v := range r.Vehicles {
		for _, bid := range v.AssignedIDs {
			if bid == id {
				return true
			}
		}
	}
	return false
}

// OwnerOf returns the vehicle currently carrying booking id, or nil if no
// vehicle holds it.
func (r *Registry) OwnerOf(id int) *Vehicle {
	for _, v := range r.Vehicles {
		for _, bid := range v.AssignedIDs {
			if bid == id {
				return v
			}
		}
	}
	return nil
}
