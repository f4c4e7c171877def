// Package stream provides AWS Lambda handlers that feed Kafka event source
// batches into a sink.Task.
package stream

import (
	"cmp"
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/aws/aws-lambda-go/events"

	"github.com/jacentio/ddbsink/internal/convert"
	"github.com/jacentio/ddbsink/sink"
)

// Putter is the part of sink.Task used by the handler.
type Putter interface {
	Put(ctx context.Context, records []sink.Record) (sink.Result, error)
}

// RetryError asks Lambda to redeliver the batch. The handler has already
// waited Backoff, or as much of it as the invocation deadline allowed.
type RetryError struct {
	Backoff time.Duration
}

func (e *RetryError) Error() string {
	return fmt.Sprintf("ddbsink: batch not written, redeliver after %s", e.Backoff)
}

// Handler processes Kafka events from an MSK or self-managed Kafka event
// source mapping.
type Handler struct {
	task        Putter
	keyFormat   convert.Format
	valueFormat convert.Format
	logger      *slog.Logger
}

// NewHandler creates a new Kafka event handler.
func NewHandler(task Putter, keyFormat, valueFormat convert.Format, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		task:        task,
		keyFormat:   keyFormat,
		valueFormat: valueFormat,
		logger:      logger,
	}
}

// HandleKafkaEvent writes the records of one event. It is designed to be used
// as an AWS Lambda handler.
func (h *Handler) HandleKafkaEvent(ctx context.Context, event events.KafkaEvent) error {
	records, err := h.records(event)
	if err != nil {
		h.logger.Error("failed to decode kafka event", "source", event.EventSourceARN, "error", err)
		return err
	}

	res, err := h.task.Put(ctx, records)
	if err != nil {
		h.logger.Error("failed to write records", "records", len(records), "error", err)
		return err // Will retry, eventually DLQ
	}

	if res.Retriable() {
		h.logger.Warn("write not completed; requesting redelivery", "records", len(records), "backoff", res.Backoff)
		wait(ctx, res.Backoff)
		return &RetryError{Backoff: res.Backoff}
	}

	h.logger.Info("kafka event processed",
		"records", len(records),
		"written", res.Written,
		"skipped", res.Skipped,
		"dropped", res.Dropped,
	)
	return nil
}

// records flattens the per-partition record lists of an event, ordered by
// topic, partition and offset.
func (h *Handler) records(event events.KafkaEvent) ([]sink.Record, error) {
	var out []sink.Record
	for _, batch := range event.Records {
		for _, kr := range batch {
			r, err := h.toRecord(kr)
			if err != nil {
				return nil, err
			}
			out = append(out, r)
		}
	}
	slices.SortFunc(out, func(a, b sink.Record) int {
		return cmp.Or(
			cmp.Compare(a.Topic, b.Topic),
			cmp.Compare(a.Partition, b.Partition),
			cmp.Compare(a.Offset, b.Offset),
		)
	})
	return out, nil
}

func (h *Handler) toRecord(kr events.KafkaRecord) (sink.Record, error) {
	key, err := decodePayload(kr.Key)
	if err != nil {
		return sink.Record{}, fmt.Errorf("record %s-%d@%d key: %w", kr.Topic, kr.Partition, kr.Offset, err)
	}
	value, err := decodePayload(kr.Value)
	if err != nil {
		return sink.Record{}, fmt.Errorf("record %s-%d@%d value: %w", kr.Topic, kr.Partition, kr.Offset, err)
	}
	return sink.Record{
		Topic:     kr.Topic,
		Partition: int32(kr.Partition),
		Offset:    kr.Offset,
		Key:       convert.Decode(h.keyFormat, key),
		Value:     convert.Decode(h.valueFormat, value),
	}, nil
}

// decodePayload decodes a base64 payload. An absent payload decodes to nil.
func decodePayload(s string) ([]byte, error) {
	if s == "" {
		return nil, nil
	}
	return base64.StdEncoding.DecodeString(s)
}

// wait sleeps for d or until ctx is done.
func wait(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
