// Admin server exposing health and metrics, grounded on
// services/crypto-stream/main.go's serveHealth (which used a bare
// http.ServeMux for a single /health route) generalized to gorilla/mux,
// the router the rest of this codebase's HTTP surfaces use, and wired to
// github.com/prometheus/client_golang/prometheus/promhttp for /metrics.
package telemetry

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// AdminServer serves /healthz and /metrics for operators.
type AdminServer struct {
	httpServer *http.Server
}

// NewAdminServer builds (without starting) an admin HTTP server bound to
// addr, backed by health and the given Prometheus registry.
func NewAdminServer(addr string, health *Health, metrics *Metrics) *AdminServer {
	r := mux.NewRouter()

	r.HandleFunc("/healthz", func(w http.ResponseWriter, req *http.Request) {
		snap := health.Snapshot()
		w.Header().Set("Content-Type", "application/json")
		if snap.Overall != StatusOK {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		_ = json.NewEncoder(w).Encode(snap)
	}).Methods(http.MethodGet)

	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	return &AdminServer{httpServer: &http.Server{Addr: addr, Handler: r}}
}

// ListenAndServe starts serving until the server is closed; it returns
// http.ErrServerClosed on a graceful Close.
func (a *AdminServer) ListenAndServe() error {
	return a.httpServer.ListenAndServe()
}

// Close shuts the admin server down.
func (a *AdminServer) Close() error {
	return a.httpServer.Close()
}
