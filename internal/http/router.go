// README: HTTP router registration for the read-only monitoring API.
package http

import (
	"context"
	"net/http"
	"strconv"

	"dispatchsim/internal/dispatch/geo"
)

// VehicleFeed is the read side of a live-position feed, satisfied by
// *infra.VehicleFeed. Declared here so the monitoring API depends on the
// capability it needs rather than the concrete Redis-backed type.
type VehicleFeed interface {
	NearbyVehicles(ctx context.Context, p geo.LatLng, radiusKm float64) ([]string, error)
}

// NewRouter exposes the monitoring surface: liveness, the current fleet-wide
// snapshot, a single vehicle's last-known breakdown, and (when feed is
// non-nil) nearby-vehicle lookup against the live position feed.
func NewRouter(monitor *Monitor, feed VehicleFeed) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	mux.HandleFunc("GET /snapshot", func(w http.ResponseWriter, r *http.Request) {
		simTime, snap := monitor.Snapshot()
		writeJSON(w, http.StatusOK, struct {
			SimTime  int `json:"sim_time"`
			Snapshot any `json:"snapshot"`
		}{SimTime: simTime, Snapshot: snap})
	})

	mux.HandleFunc("GET /vehicles/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.Atoi(r.PathValue("id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "malformed vehicle id")
			return
		}
		pv, err := monitor.Vehicle(id)
		if err != nil {
			writeVehicleError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, pv)
	})

	mux.HandleFunc("GET /vehicles/nearby", func(w http.ResponseWriter, r *http.Request) {
		if feed == nil {
			writeError(w, http.StatusServiceUnavailable, "vehicle feed not configured")
			return
		}
		lat, errLat := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
		lng, errLng := strconv.ParseFloat(r.URL.Query().Get("lng"), 64)
		if errLat != nil || errLng != nil {
			writeError(w, http.StatusBadRequest, "lat and lng query params are required")
			return
		}
		radiusKm, err := strconv.ParseFloat(r.URL.Query().Get("radius_km"), 64)
		if err != nil || radiusKm <= 0 {
			radiusKm = 5
		}
		ids, err := feed.NearbyVehicles(r.Context(), geo.LatLng{Lat: lat, Lng: lng}, radiusKm)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "vehicle feed lookup failed")
			return
		}
		writeJSON(w, http.StatusOK, struct {
			VehicleIDs []string `json:"vehicle_ids"`
		}{VehicleIDs: ids})
	})

	return mux
}
