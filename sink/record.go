package sink

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/jacentio/ddbsink/internal/convert"
)

// Record is one message handed to Task.Put. Records are never mutated.
type Record struct {
	// Topic, Partition and Offset locate the record in its source log.
	Topic     string
	Partition int32
	Offset    int64

	// Key and Value are the payloads. A nil schema selects schemaless
	// conversion.
	Key         any
	KeySchema   *convert.Schema
	Value       any
	ValueSchema *convert.Schema
}

func (r Record) String() string {
	return fmt.Sprintf("%s-%d@%d", r.Topic, r.Partition, r.Offset)
}

// LogValue logs the record coordinates, never the payload.
func (r Record) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("topic", r.Topic),
		slog.Int("partition", int(r.Partition)),
		slog.Int64("offset", r.Offset),
	)
}

// Item is one DynamoDB item.
type Item = map[string]types.AttributeValue

// Result is the caller-visible outcome of Task.Put.
type Result struct {
	// Status tells the caller whether to redeliver.
	Status Status

	// Backoff is the delay to wait before redelivering. Only set when
	// Status is StatusRetriable.
	Backoff time.Duration

	// Written counts items acknowledged by DynamoDB.
	Written int

	// Skipped counts records dropped because they could not be converted.
	Skipped int

	// Dropped counts records given up on after the retry budget ran out.
	Dropped int
}

// Retriable reports whether the caller should redeliver the same records.
func (r Result) Retriable() bool {
	return r.Status == StatusRetriable
}

// Status is the kind of a Result.
type Status int

const (
	// StatusDone acknowledges the records; they must not be redelivered.
	StatusDone Status = iota

	// StatusRetriable asks the caller to wait Backoff and redeliver.
	StatusRetriable
)

func (s Status) String() string {
	switch s {
	case StatusDone:
		return "done"
	case StatusRetriable:
		return "retriable"
	}
	return fmt.Sprintf("status(%d)", int(s))
}
