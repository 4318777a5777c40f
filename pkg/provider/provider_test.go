package provider

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func echoInvoker(_ context.Context, args []interface{}, _ ProgressFunc, _ FailureFunc) (interface{}, error) {
	return args[0], nil
}

func TestRegisterBeforeStartSucceeds(t *testing.T) {
	p := New()
	err := p.Register("echo", []Kind{KindString}, KindString, CapabilityNone, echoInvoker)
	require.NoError(t, err)
}

func TestRegisterAfterSealFails(t *testing.T) {
	p := New()
	p.registry.Seal()

	err := p.Register("echo", []Kind{KindString}, KindString, CapabilityNone, echoInvoker)
	assert.Error(t, err)
}

func TestNewTimestampRoundTrips(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	ts := NewTimestamp(now)
	assert.Equal(t, now.UnixMilli(), ts.Time().UnixMilli())
}
