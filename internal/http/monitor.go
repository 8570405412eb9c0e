// README: Monitor holds the latest tick snapshot for the read-only monitoring
// API. The tick driver pushes updates; HTTP handlers only ever read the copy
// held here, never the live registry, so a slow HTTP client can never stall a
// tick.
package http

import (
	"sync"

	"dispatchsim/internal/dispatch/metrics"
	"dispatchsim/internal/dispatch/vehicle"
)

// Monitor is safe for concurrent use: one writer (the tick driver's OnTick
// hook) and many readers (HTTP handlers).
type Monitor struct {
	mu         sync.RWMutex
	simTime    int
	snapshot   metrics.Snapshot
	perVehicle map[int]metrics.PerVehicle
}

func NewMonitor() *Monitor {
	return &Monitor{perVehicle: make(map[int]metrics.PerVehicle)}
}

// Update replaces the held snapshot. Call it once per tick with the current
// fleet-wide aggregate and per-vehicle breakdown.
func (m *Monitor) Update(simTime int, snap metrics.Snapshot, perVehicle []metrics.PerVehicle) {
	byID := make(map[int]metrics.PerVehicle, len(perVehicle))
	for _, pv := range perVehicle {
		byID[pv.VehicleID] = pv
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.simTime = simTime
	m.snapshot = snap
	m.perVehicle = byID
}

// Snapshot returns the sim time of the last update and the fleet-wide aggregate.
func (m *Monitor) Snapshot() (int, metrics.Snapshot) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.simTime, m.snapshot
}

// Vehicle returns the last-known per-vehicle breakdown for id.
func (m *Monitor) Vehicle(id int) (metrics.PerVehicle, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	pv, ok := m.perVehicle[id]
	if !ok {
		return metrics.PerVehicle{}, vehicle.ErrNotFound
	}
	return pv, nil
}
