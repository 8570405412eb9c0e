// README: HTTP helper utilities for JSON and error mapping.
package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"dispatchsim/internal/dispatch/vehicle"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeVehicleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, vehicle.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
