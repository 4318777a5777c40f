// Package metrics defines the runtime's optional metrics interface,
// mirroring the teacher's pkg/metrics pattern (NFSMetrics in
// pkg/metrics/nfs.go): a small interface any collector can implement, with
// a nil value disabling collection at zero cost to every call site.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/thinknode/thinknode-provider-ipc-net/internal/wire"
)

// ProviderMetrics records lifecycle and per-message observability for one
// provider connection. Implementations must be safe for concurrent use.
// Passing a nil ProviderMetrics disables metrics; every recording call in
// the engine and dispatcher nil-checks before calling through.
type ProviderMetrics interface {
	RecordFrameSent(action wire.Action)
	RecordFrameReceived(action wire.Action)
	RecordFunctionStart(name string)
	RecordFunctionEnd(name string, outcome string, duration time.Duration)
	SetConnected(connected bool)
}

var (
	mu       sync.RWMutex
	registry *prometheus.Registry
	enabled  bool
)

// Init activates package-level metrics collection against a fresh
// registry, or deactivates it (leaving GetRegistry returning nil) when
// enable is false.
func Init(enable bool) *prometheus.Registry {
	mu.Lock()
	defer mu.Unlock()

	enabled = enable
	if !enable {
		registry = nil
		return nil
	}
	registry = prometheus.NewRegistry()
	return registry
}

// IsEnabled reports whether metrics collection is active.
func IsEnabled() bool {
	mu.RLock()
	defer mu.RUnlock()
	return enabled
}

// GetRegistry returns the active Prometheus registry, or nil if metrics
// are disabled.
func GetRegistry() *prometheus.Registry {
	mu.RLock()
	defer mu.RUnlock()
	return registry
}
