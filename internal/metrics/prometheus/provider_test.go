package prometheus

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thinknode/thinknode-provider-ipc-net/internal/metrics"
	"github.com/thinknode/thinknode-provider-ipc-net/internal/wire"
)

func TestNewProviderMetricsDisabled(t *testing.T) {
	metrics.Init(false)
	m := NewProviderMetrics()
	assert.Nil(t, m)
}

func TestNewProviderMetricsRecordsFrames(t *testing.T) {
	metrics.Init(true)
	t.Cleanup(func() { metrics.Init(false) })

	m := NewProviderMetrics()
	require.NotNil(t, m)

	m.RecordFrameSent(wire.ActionResult)
	m.RecordFrameReceived(wire.ActionFunction)
	m.RecordFunctionStart("add")
	m.RecordFunctionEnd("add", "result", 10*time.Millisecond)
	m.SetConnected(true)

	impl := m.(*providerMetrics)
	assert.Equal(t, float64(1), testutil.ToFloat64(impl.framesSent.WithLabelValues("Result")))
	assert.Equal(t, float64(1), testutil.ToFloat64(impl.framesReceived.WithLabelValues("Function")))
	assert.Equal(t, float64(1), testutil.ToFloat64(impl.functionsStart.WithLabelValues("add")))
	assert.Equal(t, float64(1), testutil.ToFloat64(impl.connected))
}
