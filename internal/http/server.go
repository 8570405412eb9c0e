// README: monitoring API gateway; registers HTTP routes and delegates to the Monitor.
package http

import "net/http"

type Server struct {
	monitor *Monitor
	feed    VehicleFeed
}

func NewServer(monitor *Monitor) *Server {
	return &Server{monitor: monitor}
}

// WithVehicleFeed attaches a live-position feed so the monitoring API can also
// serve GET /vehicles/nearby. Callers that run without Redis configured never
// call this, and the route reports itself unavailable.
func (s *Server) WithVehicleFeed(feed VehicleFeed) *Server {
	s.feed = feed
	return s
}

func (s *Server) Routes() http.Handler {
	return NewRouter(s.monitor, s.feed)
}
