package server_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jacentio/ddbsink/internal/metrics"
	"github.com/jacentio/ddbsink/internal/server"
	"github.com/jacentio/ddbsink/internal/testutil"
)

func TestRouter_Healthz(t *testing.T) {
	r := server.NewRouter(prometheus.NewRegistry(), testutil.NewTestLogger())

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestRouter_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	require.NoError(t, metrics.Register(reg))
	metrics.Throttles.Inc()

	srv := httptest.NewServer(server.NewRouter(reg, testutil.NewTestLogger()))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "ddbsink_throttles_total")
}

func TestRouter_MethodNotAllowed(t *testing.T) {
	r := server.NewRouter(prometheus.NewRegistry(), testutil.NewTestLogger())

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/healthz", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
