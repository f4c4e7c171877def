// Package sink writes Kafka-style records to DynamoDB.
//
// A [Task] receives a bounded collection of records per invocation, converts
// each record into a DynamoDB item and writes the items with PutItem or
// BatchWriteItem. Failed invocations are redelivered by the host, up to a
// retry budget, with an explicit backoff hint.
//
// # Lifecycle
//
//	task := sink.NewTask(sink.WithLogger(logger))
//	if err := task.Start(ctx, cfg); err != nil {
//	    return err
//	}
//	defer task.Stop()
//
//	res, err := task.Put(ctx, records)
//	switch {
//	case err != nil:
//	    // fatal: the records cannot be written under this configuration
//	case res.Retriable():
//	    // wait res.Backoff, then call Put again with the same records
//	default:
//	    // acknowledged; commit offsets
//	}
//
// # Items
//
// The record value and key are converted with [convert.ToAttributeValue].
// When [Config.TopValueAttribute] or [Config.TopKeyAttribute] is set the
// converted payload is nested under that attribute; otherwise it must be a
// map and its entries become top-level attributes. The record coordinates
// are stored under [Config.TopicAttribute], [Config.PartitionAttribute] and
// [Config.OffsetAttribute].
//
// # Write modes
//
// An invocation with a single record, or a Task with BatchSize 1, writes
// each item with PutItem. Otherwise records are grouped into batches of at
// most BatchSize items, each addressed to the table resolved from
// [Config.TableFormat]. Any unprocessed item fails the whole invocation.
//
// # Retries
//
// Throttling always yields a retriable result and does not consume the
// budget. Other write failures consume one retry each; once the budget is
// spent the invocation's record range is logged and the records dropped.
// An invocation that completes without exhausting the budget restores it.
//
// # Errors
//
//   - [ConversionError] - a payload does not match its schema or is malformed
//   - [ConfigurationError] - a payload is not a map and has no top attribute
//   - [WriteError] - DynamoDB rejected a write
//   - [UnprocessedItemsError] - a batch write left items unprocessed
//   - [ErrEmptyTableName] - the table format resolved to an empty name
//   - [ErrNotStarted] - Put was called on a stopped Task
package sink
