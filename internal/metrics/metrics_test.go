package metrics_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jacentio/ddbsink/internal/metrics"
)

func TestRegister_Idempotent(t *testing.T) {
	reg := prometheus.NewRegistry()

	require.NoError(t, metrics.Register(reg))
	require.NoError(t, metrics.Register(reg))
}

func TestCollectors(t *testing.T) {
	before := testutil.ToFloat64(metrics.RecordsDropped.WithLabelValues(metrics.ReasonExhausted))
	metrics.RecordsDropped.WithLabelValues(metrics.ReasonExhausted).Add(3)

	assert.InDelta(t, before+3, testutil.ToFloat64(metrics.RecordsDropped.WithLabelValues(metrics.ReasonExhausted)), 0)
}
