package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// setupRoutes - setups http routes
func setupRoutes(mux *http.ServeMux, routes *handlers) {
	// System Health
	mux.HandleFunc("GET /health", routes.health.HealthCheck)
	setupMetricsRoute(mux)

	setupTrackerRoutes(mux, routes)
}

func setupTrackerRoutes(mux *http.ServeMux, routes *handlers) {
	mux.HandleFunc("GET /state", routes.tracker.GetState)                  // Current view state
	mux.HandleFunc("POST /route/clear", routes.tracker.ClearRoute)         // Empty the drawn trail
	mux.HandleFunc("POST /heading/reapply", routes.tracker.ReapplyHeading) // Re-issue the marker rotation
	mux.HandleFunc("GET /ws/map", routes.mapWS.Subscribe)                  // Map command stream
}

// setupMetricsRoute configures the Prometheus metrics endpoint
func setupMetricsRoute(mux *http.ServeMux) {
	mux.Handle("GET /metrics", promhttp.Handler())
}
