package sink

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/jacentio/ddbsink/internal/awsclient"
)

// Task writes records to DynamoDB. A Task is not safe for concurrent use;
// hosts must serialize calls to Put.
type Task struct {
	config Config
	client Client
	writer *writer
	retry  *retryState
	logger *slog.Logger

	// injected is set when the client was supplied with WithClient.
	injected Client
}

// Option configures a Task.
type Option func(*Task)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(t *Task) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// WithClient makes Start use client instead of building one from Config.
func WithClient(client Client) Option {
	return func(t *Task) {
		t.injected = client
	}
}

// NewTask creates a stopped Task.
func NewTask(opts ...Option) *Task {
	t := &Task{logger: slog.Default()}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Start validates config, creates the DynamoDB client and initializes the
// retry budget.
func (t *Task) Start(ctx context.Context, config Config) error {
	config.validate()

	client := t.injected
	if client == nil {
		opts := awsclient.Options{
			Region:      config.Region,
			Endpoint:    config.Endpoint,
			AccessKeyID: config.AccessKeyID,
			SecretKey:   config.SecretKey,
		}
		ddb, err := awsclient.NewDynamoDB(ctx, opts)
		if err != nil {
			return fmt.Errorf("create dynamodb client: %w", err)
		}
		client = ddb
		if opts.StaticCredentials() {
			t.logger.Debug("dynamodb client created with credentials from connector configuration")
		} else {
			t.logger.Debug("dynamodb client created with default credential chain")
		}
	}

	t.config = config
	t.client = client
	t.writer = &writer{client: client, config: config}
	t.retry = newRetryState(config.MaxRetries, config.RetryBackoff)

	t.logger.Info("dynamodb sink task started",
		"tableFormat", config.TableFormat,
		"batchSize", config.BatchSize,
		"maxRetries", config.MaxRetries,
		"retryBackoff", config.RetryBackoff,
	)
	return nil
}

// Put writes one invocation's records.
//
// A StatusRetriable result asks the caller to wait Result.Backoff and hand
// the same records to Put again. A StatusDone result acknowledges every
// record, including any that were logged and dropped. A non-nil error is
// fatal: the records can never be written under the current configuration.
// The Result returned with it still counts the records written or skipped
// before the failure.
func (t *Task) Put(ctx context.Context, records []Record) (Result, error) {
	if t.writer == nil {
		return Result{}, ErrNotStarted
	}
	if len(records) == 0 {
		t.retry.reset()
		return Result{Status: StatusDone}, nil
	}

	log := t.logger.With("invocation", uuid.NewString(), "records", len(records))

	var o outcome
	if len(records) == 1 || t.config.BatchSize == 1 {
		o = t.writer.writeSingle(ctx, log, records)
	} else {
		o = t.writer.writeBatches(ctx, log, records)
	}

	res, err := t.retry.resolve(log, o, records)
	if err != nil {
		log.Error("write failed with non-retriable error", "error", err)
		return res, err
	}
	log.Debug("put completed",
		"status", res.Status,
		"written", res.Written,
		"skipped", res.Skipped,
		"dropped", res.Dropped,
	)
	return res, nil
}

// Stop releases the DynamoDB client. It is safe to call more than once.
func (t *Task) Stop() {
	if t.client == nil {
		return
	}
	t.client = nil
	t.writer = nil
	t.logger.Info("dynamodb sink task stopped")
}

// Config returns the validated configuration the Task was started with.
func (t *Task) Config() Config {
	return t.config
}
