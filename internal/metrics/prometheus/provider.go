// Package prometheus implements metrics.ProviderMetrics on top of
// client_golang, following the teacher's promauto.With(registry) idiom
// (pkg/metrics/prometheus/badger.go).
package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/thinknode/thinknode-provider-ipc-net/internal/metrics"
	"github.com/thinknode/thinknode-provider-ipc-net/internal/wire"
)

type providerMetrics struct {
	framesSent     *prometheus.CounterVec
	framesReceived *prometheus.CounterVec
	functionsStart *prometheus.CounterVec
	functionEnd    *prometheus.HistogramVec
	connected      prometheus.Gauge
}

// NewProviderMetrics builds a metrics.ProviderMetrics registered against
// the package-level registry. Returns nil if metrics.IsEnabled() is false,
// so callers can pass the result straight through to dispatch.New and
// engine.New without an extra nil check of their own.
func NewProviderMetrics() metrics.ProviderMetrics {
	if !metrics.IsEnabled() {
		return nil
	}

	reg := metrics.GetRegistry()

	return &providerMetrics{
		framesSent: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "calcprovider_frames_sent_total",
				Help: "Total frames written to the supervisor connection, by action.",
			},
			[]string{"action"},
		),
		framesReceived: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "calcprovider_frames_received_total",
				Help: "Total frames read from the supervisor connection, by action.",
			},
			[]string{"action"},
		),
		functionsStart: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "calcprovider_function_starts_total",
				Help: "Total Function requests dispatched, by registered name.",
			},
			[]string{"name"},
		),
		functionEnd: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "calcprovider_function_duration_seconds",
				Help:    "Function dispatch duration in seconds, by name and outcome.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"name", "outcome"},
		),
		connected: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "calcprovider_connected",
				Help: "1 if the supervisor connection is currently established, else 0.",
			},
		),
	}
}

func (m *providerMetrics) RecordFrameSent(action wire.Action) {
	m.framesSent.WithLabelValues(action.String()).Inc()
}

func (m *providerMetrics) RecordFrameReceived(action wire.Action) {
	m.framesReceived.WithLabelValues(action.String()).Inc()
}

func (m *providerMetrics) RecordFunctionStart(name string) {
	m.functionsStart.WithLabelValues(name).Inc()
}

func (m *providerMetrics) RecordFunctionEnd(name string, outcome string, duration time.Duration) {
	m.functionEnd.WithLabelValues(name, outcome).Observe(duration.Seconds())
}

func (m *providerMetrics) SetConnected(connected bool) {
	if connected {
		m.connected.Set(1)
		return
	}
	m.connected.Set(0)
}
