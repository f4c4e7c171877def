// Package kafka reads records for the sink from a Kafka consumer group.
package kafka

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/jacentio/ddbsink/internal/convert"
	"github.com/jacentio/ddbsink/sink"
)

// ErrClosed is returned by Poll after Close.
var ErrClosed = errors.New("kafka: consumer closed")

// Config configures a Consumer.
type Config struct {
	Brokers        []string
	Topics         []string
	Group          string
	MaxPollRecords int
	SessionTimeout time.Duration
	KeyFormat      convert.Format
	ValueFormat    convert.Format
}

// Consumer polls a consumer group with auto-commit disabled. Offsets are only
// committed by Commit, and group rebalances are held off between Poll and
// Commit so that a polled collection is never split across members.
type Consumer struct {
	client *kgo.Client
	config Config
	log    *slog.Logger
}

func NewConsumer(cfg Config, log *slog.Logger) (*Consumer, error) {
	opts := []kgo.Opt{
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.ConsumerGroup(cfg.Group),
		kgo.ConsumeTopics(cfg.Topics...),
		kgo.DisableAutoCommit(),
		kgo.BlockRebalanceOnPoll(),
		kgo.ClientID("ddbsink"),
	}
	if cfg.SessionTimeout > 0 {
		opts = append(opts, kgo.SessionTimeout(cfg.SessionTimeout))
	}

	client, err := kgo.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka client: %w", err)
	}

	return &Consumer{
		client: client,
		config: cfg,
		log:    log,
	}, nil
}

// Poll blocks until records are available or ctx is done. Every Poll must be
// followed by Commit.
func (c *Consumer) Poll(ctx context.Context) ([]sink.Record, error) {
	fetches := c.client.PollRecords(ctx, c.config.MaxPollRecords)
	if fetches.IsClientClosed() {
		return nil, ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return recordsFrom(fetches, c.config.KeyFormat, c.config.ValueFormat, c.log), nil
}

// Commit commits the offsets of everything polled so far and allows the group
// to rebalance.
func (c *Consumer) Commit(ctx context.Context) error {
	defer c.client.AllowRebalance()

	if err := c.client.CommitUncommittedOffsets(ctx); err != nil {
		return fmt.Errorf("commit offsets: %w", err)
	}
	return nil
}

// Close leaves the group without committing.
func (c *Consumer) Close() {
	c.client.AllowRebalance()
	c.client.Close()
}

// recordsFrom converts fetched records. Partition errors are logged; the
// client retries them internally.
func recordsFrom(fetches kgo.Fetches, keyFormat, valueFormat convert.Format, log *slog.Logger) []sink.Record {
	fetches.EachError(func(topic string, partition int32, err error) {
		log.Warn("fetch error",
			slog.String("topic", topic),
			slog.Int("partition", int(partition)),
			slog.Any("error", err))
	})

	records := make([]sink.Record, 0, fetches.NumRecords())
	fetches.EachRecord(func(r *kgo.Record) {
		records = append(records, toRecord(r, keyFormat, valueFormat))
	})
	return records
}

func toRecord(r *kgo.Record, keyFormat, valueFormat convert.Format) sink.Record {
	return sink.Record{
		Topic:     r.Topic,
		Partition: r.Partition,
		Offset:    r.Offset,
		Key:       convert.Decode(keyFormat, r.Key),
		Value:     convert.Decode(valueFormat, r.Value),
	}
}
