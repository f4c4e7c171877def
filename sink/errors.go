package sink

import (
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

var (
	// ErrNotStarted is returned by Put before Start or after Stop.
	ErrNotStarted = errors.New("ddbsink: task is not started")

	// ErrEmptyTableName is returned when the table format resolves to an empty name.
	ErrEmptyTableName = errors.New("ddbsink: resolved table name is empty")

	// ErrUnprocessedItems is matched by UnprocessedItemsError.
	ErrUnprocessedItems = errors.New("ddbsink: batch write returned unprocessed items")
)

// ConversionError is returned when a record key or value cannot be converted
// to an attribute value. It is never retried.
type ConversionError struct {
	Record Record
	Source string
	Err    error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("ddbsink: convert record %s %s: %v", e.Record, e.Source, e.Err)
}

func (e *ConversionError) Unwrap() error {
	return e.Err
}

// ConfigurationError is returned when a record cannot be represented under
// the current configuration. It is never retried.
type ConfigurationError struct {
	Source string
	Value  types.AttributeValue
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("ddbsink: no top attribute name configured for %s, and it could not be converted to a map: %T", e.Source, e.Value)
}

// WriteError is returned when DynamoDB rejects a write.
type WriteError struct {
	Table string
	Err   error
}

func (e *WriteError) Error() string {
	if e.Table == "" {
		return fmt.Sprintf("ddbsink: batch write: %v", e.Err)
	}
	return fmt.Sprintf("ddbsink: write to %s: %v", e.Table, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// UnprocessedItemsError carries the write requests a BatchWriteItem call
// left unprocessed.
type UnprocessedItemsError struct {
	Unprocessed map[string][]types.WriteRequest
}

func (e *UnprocessedItemsError) Error() string {
	n := 0
	for _, reqs := range e.Unprocessed {
		n += len(reqs)
	}
	return fmt.Sprintf("ddbsink: %d unprocessed items across %d tables", n, len(e.Unprocessed))
}

func (e *UnprocessedItemsError) Is(target error) bool {
	return target == ErrUnprocessedItems
}
