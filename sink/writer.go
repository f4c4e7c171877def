package sink

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/jacentio/ddbsink/internal/metrics"
)

// Client is the subset of the DynamoDB API used by the sink.
type Client interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	BatchWriteItem(ctx context.Context, params *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error)
}

var _ Client = (*dynamodb.Client)(nil)

type outcomeKind int

const (
	outcomeSuccess outcomeKind = iota
	outcomePartialFailure
	outcomeThrottled
	outcomeFailed
	outcomeFatal
)

// outcome is the result of one invocation's writes, before retry policy.
type outcome struct {
	kind    outcomeKind
	err     error
	written int
	skipped int
}

// writer issues the DynamoDB calls for one invocation.
type writer struct {
	client Client
	config Config
}

// writeSingle writes each record with PutItem. Records that cannot be turned
// into an item are logged and skipped; backend errors end the invocation.
func (w *writer) writeSingle(ctx context.Context, log *slog.Logger, records []Record) outcome {
	var o outcome
	for _, r := range records {
		table := w.config.TableName(r.Topic)
		item, err := buildItem(w.config, r)
		if err == nil && table == "" {
			err = ErrEmptyTableName
		}

		var convErr *ConversionError
		var cfgErr *ConfigurationError
		switch {
		case errors.As(err, &cfgErr):
			log.Error("record cannot be represented as an item; skipping", "record", r, "error", err)
			metrics.RecordsDropped.WithLabelValues(metrics.ReasonConfiguration).Inc()
			o.skipped++
			continue
		case errors.As(err, &convErr):
			log.Error("failed to convert record; skipping", "record", r, "error", err)
			metrics.RecordsDropped.WithLabelValues(metrics.ReasonConversion).Inc()
			o.skipped++
			continue
		case err != nil:
			log.Error("unknown error while building item; skipping", "record", r, "error", err)
			metrics.RecordsDropped.WithLabelValues(metrics.ReasonUnknown).Inc()
			o.skipped++
			continue
		}

		start := time.Now()
		_, err = w.client.PutItem(ctx, &dynamodb.PutItemInput{
			TableName: aws.String(table),
			Item:      item,
		})
		metrics.WriteLatency.WithLabelValues(metrics.ModeSingle).Observe(time.Since(start).Seconds())
		if err != nil {
			log.Error("failed to write item", "record", r, "table", table, "error", err)
			return w.failure(ctx, metrics.ModeSingle, &WriteError{Table: table, Err: err}, o)
		}

		log.Debug("item written", "record", r, "table", table)
		metrics.ItemsWritten.WithLabelValues(table).Inc()
		o.written++
	}
	return o
}

// writeBatches partitions the records and issues one BatchWriteItem per
// partition. Unprocessed items abandon the remaining partitions.
func (w *writer) writeBatches(ctx context.Context, log *slog.Logger, records []Record) outcome {
	var o outcome
	c := &cursor{records: records}
	for !c.done() {
		batch, err := nextBatch(w.config, c)
		if err != nil {
			log.Error("failed to build batch", "error", err)
			return outcome{kind: outcomeFatal, err: err, written: o.written}
		}

		start := time.Now()
		resp, err := w.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
			RequestItems: batch.requestItems(),
		})
		metrics.WriteLatency.WithLabelValues(metrics.ModeBatch).Observe(time.Since(start).Seconds())
		if err != nil {
			log.Error("failed to write batch", "items", batch.Len(), "tables", batch.Tables(), "error", err)
			return w.failure(ctx, metrics.ModeBatch, &WriteError{Err: err}, o)
		}

		if len(resp.UnprocessedItems) > 0 {
			uerr := &UnprocessedItemsError{Unprocessed: resp.UnprocessedItems}
			log.Warn("batch write left unprocessed items", "items", batch.Len(), "error", uerr)
			metrics.WriteFailures.WithLabelValues(metrics.ModeBatch).Inc()
			return outcome{kind: outcomePartialFailure, err: uerr, written: o.written}
		}

		log.Debug("batch written", "items", batch.Len(), "tables", batch.Tables())
		for _, table := range batch.Tables() {
			metrics.ItemsWritten.WithLabelValues(table).Add(float64(len(batch.Items(table))))
		}
		o.written += batch.Len()
	}
	return o
}

func (w *writer) failure(ctx context.Context, mode string, err error, o outcome) outcome {
	o.err = err
	switch {
	case ctx.Err() != nil:
		o.kind = outcomeFatal
		o.err = errors.Join(ctx.Err(), err)
	case isThrottlingError(err):
		o.kind = outcomeThrottled
	default:
		o.kind = outcomeFailed
		metrics.WriteFailures.WithLabelValues(mode).Inc()
	}
	return o
}
