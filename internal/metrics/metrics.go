// Package metrics holds the Prometheus collectors recorded by the sink.
package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "ddbsink"

var (
	ItemsWritten = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "items_written_total",
			Help:      "Items acknowledged by DynamoDB per table.",
		},
		[]string{"table"},
	)
	WriteFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "write_failures_total",
			Help:      "Invocations that failed to write, by write mode.",
		},
		[]string{"mode"},
	)
	Throttles = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "throttles_total",
			Help:      "Invocations throttled by DynamoDB.",
		},
	)
	Retries = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "retries_total",
			Help:      "Redeliveries requested against the retry budget.",
		},
	)
	RecordsDropped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_dropped_total",
			Help:      "Records that were not written, by reason.",
		},
		[]string{"reason"},
	)
	WriteLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "write_latency_seconds",
			Help:      "Latency of PutItem and BatchWriteItem calls.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"mode"},
	)
)

// Drop reasons.
const (
	ReasonConversion    = "conversion"
	ReasonConfiguration = "configuration"
	ReasonUnknown       = "unknown"
	ReasonExhausted     = "retries_exhausted"
)

// Write modes.
const (
	ModeSingle = "single"
	ModeBatch  = "batch"
)

// Register adds every collector to reg. Collectors that are already
// registered are left in place.
func Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{
		ItemsWritten, WriteFailures, Throttles, Retries, RecordsDropped, WriteLatency,
	} {
		if err := reg.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				continue
			}
			return err
		}
	}
	return nil
}
