// Package adminserver runs the auxiliary HTTP surface (health, readiness,
// Prometheus metrics) alongside the IPC connection, grounded on the
// teacher's pkg/api router (chi middleware stack, /health routes).
package adminserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ReadyChecker reports whether the connection engine's receive loop has
// started, per testable property 8.
type ReadyChecker interface {
	Ready() <-chan struct{}
}

// NewRouter builds the admin HTTP surface. registry may be nil, in which
// case /metrics responds 404 (metrics disabled).
func NewRouter(ready ReadyChecker, registry *prometheus.Registry) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(10 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, req *http.Request) {
		select {
		case <-ready.Ready():
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ready"))
		default:
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("not ready"))
		}
	})

	if registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	} else {
		r.Get("/metrics", func(w http.ResponseWriter, req *http.Request) {
			http.Error(w, "metrics disabled", http.StatusNotFound)
		})
	}

	return r
}
