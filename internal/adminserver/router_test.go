package adminserver

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
)

type fakeReady struct {
	ch chan struct{}
}

func (f fakeReady) Ready() <-chan struct{} { return f.ch }

func TestHealthzAlwaysOK(t *testing.T) {
	router := NewRouter(fakeReady{ch: make(chan struct{})}, nil)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyzBeforeAndAfterReady(t *testing.T) {
	ch := make(chan struct{})
	router := NewRouter(fakeReady{ch: ch}, nil)

	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	close(ch)

	req = httptest.NewRequest(http.MethodGet, "/readyz", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMetricsDisabledReturns404(t *testing.T) {
	router := NewRouter(fakeReady{ch: make(chan struct{})}, nil)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMetricsEnabledServesPrometheusFormat(t *testing.T) {
	reg := prometheus.NewRegistry()
	router := NewRouter(fakeReady{ch: make(chan struct{})}, reg)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
