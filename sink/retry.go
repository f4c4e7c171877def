package sink

import (
	"log/slog"
	"time"

	"github.com/jacentio/ddbsink/internal/metrics"
)

// retryState is the retry budget of one Task. Invocations of a Task are
// serialized by the host, so it needs no locking.
type retryState struct {
	max       int
	remaining int
	backoff   time.Duration
}

func newRetryState(max int, backoff time.Duration) *retryState {
	return &retryState{max: max, remaining: max, backoff: backoff}
}

func (s *retryState) reset() {
	s.remaining = s.max
}

// resolve applies the retry policy to an invocation outcome. A non-nil
// error is fatal and must not be retried.
func (s *retryState) resolve(log *slog.Logger, o outcome, records []Record) (Result, error) {
	switch o.kind {
	case outcomeSuccess:
		s.reset()
		return Result{Status: StatusDone, Written: o.written, Skipped: o.skipped}, nil

	case outcomeFatal:
		return Result{Written: o.written, Skipped: o.skipped}, o.err

	case outcomeThrottled:
		log.Debug("write failed with limit/throughput exceeded; backing off", "backoff", s.backoff, "error", o.err)
		metrics.Throttles.Inc()
		return s.retriable(o), nil
	}

	// outcomeFailed, outcomePartialFailure
	log.Warn("write failed", "remainingRetries", s.remaining, "error", o.err)
	if s.remaining == 0 {
		dropped := len(records) - o.written - o.skipped
		log.Error("unable to process record range; dropping",
			"from", records[0],
			"to", records[len(records)-1],
			"dropped", dropped,
			"error", o.err,
		)
		metrics.RecordsDropped.WithLabelValues(metrics.ReasonExhausted).Add(float64(dropped))
		return Result{Status: StatusDone, Written: o.written, Skipped: o.skipped, Dropped: dropped}, nil
	}

	s.remaining--
	metrics.Retries.Inc()
	return s.retriable(o), nil
}

func (s *retryState) retriable(o outcome) Result {
	return Result{Status: StatusRetriable, Backoff: s.backoff, Written: o.written, Skipped: o.skipped}
}
