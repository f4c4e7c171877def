// Package runner drives a sink task from a polling source, redelivering
// records until the task acknowledges them.
package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/jacentio/ddbsink/sink"
)

// Source supplies records and commits them once acknowledged.
type Source interface {
	Poll(ctx context.Context) ([]sink.Record, error)
	Commit(ctx context.Context) error
}

// Putter writes records. sink.Task implements it.
type Putter interface {
	Put(ctx context.Context, records []sink.Record) (sink.Result, error)
}

// retriableError marks a delivery the task asked to repeat.
type retriableError struct {
	backoff time.Duration
}

func (e *retriableError) Error() string {
	return fmt.Sprintf("write not completed, redeliver after %s", e.backoff)
}

type Runner struct {
	source Source
	task   Putter
	log    *slog.Logger

	commitAttempts uint
	commitDelay    time.Duration
}

func New(source Source, task Putter, log *slog.Logger) *Runner {
	return &Runner{
		source:         source,
		task:           task,
		log:            log,
		commitAttempts: 3,
		commitDelay:    time.Second,
	}
}

// Run polls, delivers and commits until ctx is done or the task returns a
// fatal error. Records are committed only after the task reports them done,
// so a stopped runner leaves them for redelivery.
func (r *Runner) Run(ctx context.Context) error {
	for {
		records, err := r.source.Poll(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("poll records: %w", err)
		}

		if err := r.deliver(ctx, records); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("deliver records: %w", err)
		}

		if err := r.commit(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
	}
}

// deliver hands records to the task until it returns StatusDone, waiting the
// task's backoff between attempts.
func (r *Runner) deliver(ctx context.Context, records []sink.Record) error {
	return retry.Do(
		func() error {
			res, err := r.task.Put(ctx, records)
			if err != nil {
				return retry.Unrecoverable(err)
			}
			if res.Retriable() {
				return &retriableError{backoff: res.Backoff}
			}
			if len(records) > 0 {
				r.log.Debug("records delivered",
					slog.Int("records", len(records)),
					slog.Int("written", res.Written),
					slog.Int("skipped", res.Skipped),
					slog.Int("dropped", res.Dropped))
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(0),
		retry.LastErrorOnly(true),
		retry.DelayType(func(_ uint, err error, _ *retry.Config) time.Duration {
			var re *retriableError
			if errors.As(err, &re) {
				return re.backoff
			}
			return 0
		}),
		retry.OnRetry(func(n uint, err error) {
			r.log.Info("redelivering records",
				slog.Int("records", len(records)),
				slog.Uint64("attempt", uint64(n)+1),
				slog.Any("reason", err))
		}),
	)
}

func (r *Runner) commit(ctx context.Context) error {
	err := retry.Do(
		func() error {
			return r.source.Commit(ctx)
		},
		retry.Context(ctx),
		retry.Attempts(r.commitAttempts),
		retry.Delay(r.commitDelay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return fmt.Errorf("commit records: %w", err)
	}
	return nil
}
