package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureOutput(t *testing.T, level, format string) *bytes.Buffer {
	t.Helper()
	buf := new(bytes.Buffer)
	require.NoError(t, Init(Config{Level: level, Format: format, Output: buf}))
	t.Cleanup(func() {
		require.NoError(t, Init(Config{Level: "INFO", Format: "text"}))
	})
	return buf
}

func TestLevelFiltering(t *testing.T) {
	buf := captureOutput(t, "WARN", "text")

	Debug("debug message")
	Info("info message")
	Warn("warn message")
	Error("error message")

	out := buf.String()
	assert.NotContains(t, out, "debug message")
	assert.NotContains(t, out, "info message")
	assert.Contains(t, out, "warn message")
	assert.Contains(t, out, "error message")
}

func TestJSONFormat(t *testing.T) {
	buf := captureOutput(t, "DEBUG", "json")

	Info("hello", "key", "value")

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &decoded))
	assert.Equal(t, "hello", decoded["msg"])
	assert.Equal(t, "value", decoded["key"])
}

func TestContextFieldsArePrepended(t *testing.T) {
	buf := captureOutput(t, "DEBUG", "text")

	lc := NewLogContext("req-1").WithFunction("Add").WithTrace("trace-1", "span-1")
	ctx := WithContext(context.Background(), lc)

	InfoCtx(ctx, "dispatching")

	out := buf.String()
	assert.True(t, strings.Contains(out, "trace_id=trace-1"))
	assert.True(t, strings.Contains(out, "function=Add"))
	assert.True(t, strings.Contains(out, "request_id=req-1"))
}

func TestFromContextNil(t *testing.T) {
	assert.Nil(t, FromContext(context.Background()))
	assert.Nil(t, FromContext(nil))
}

func TestLogContextDurationMs(t *testing.T) {
	var lc *LogContext
	assert.Equal(t, float64(0), lc.DurationMs())

	lc = NewLogContext("req-1")
	assert.GreaterOrEqual(t, lc.DurationMs(), float64(0))
}
