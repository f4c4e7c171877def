package sink

import (
	"strings"
	"time"
)

// TopicPlaceholder is replaced by the record topic in Config.TableFormat.
const TopicPlaceholder = "${topic}"

// MaxBatchSize is the BatchWriteItem request limit.
const MaxBatchSize = 25

// Config holds configuration for a Task.
type Config struct {
	// Region is the AWS region of the DynamoDB endpoint.
	Region string

	// Endpoint overrides the DynamoDB endpoint (e.g. DynamoDB Local).
	Endpoint string

	// AccessKeyID and SecretKey select static credentials. When either is
	// empty the default credential chain is used.
	AccessKeyID string
	SecretKey   string

	// TableFormat is the destination table name template.
	// Default: "${topic}"
	TableFormat string

	// BatchSize is the maximum number of items per BatchWriteItem request.
	// A value of 1 disables batching and writes each record with PutItem.
	// Default: 1
	// Max: 25
	BatchSize int

	// MaxRetries is the number of redeliveries requested for a failed write
	// before the records are logged and dropped.
	// Default: 10
	MaxRetries int

	// RetryBackoff is the delay the caller is asked to wait before
	// redelivering after a throttled or failed write.
	// Default: 3s
	RetryBackoff time.Duration

	// IgnoreRecordKey and IgnoreRecordValue exclude the record key or value
	// from the written item.
	IgnoreRecordKey   bool
	IgnoreRecordValue bool

	// TopKeyAttribute nests the converted key under a single attribute.
	// When empty the key must convert to a map whose entries are merged
	// into the item.
	TopKeyAttribute string

	// TopValueAttribute nests the converted value under a single attribute.
	// When empty the value must convert to a map whose entries are merged
	// into the item.
	TopValueAttribute string

	// TopicAttribute, PartitionAttribute and OffsetAttribute name the
	// attributes that store the record coordinates. Empty names are skipped.
	// Defaults: "kafka_topic", "kafka_partition", "kafka_offset"
	TopicAttribute     string
	PartitionAttribute string
	OffsetAttribute    string
}

// DefaultConfig returns the connector defaults.
func DefaultConfig() Config {
	return Config{
		TableFormat:        TopicPlaceholder,
		BatchSize:          1,
		MaxRetries:         10,
		RetryBackoff:       3 * time.Second,
		TopicAttribute:     "kafka_topic",
		PartitionAttribute: "kafka_partition",
		OffsetAttribute:    "kafka_offset",
	}
}

// TableName resolves the destination table for a topic.
func (c Config) TableName(topic string) string {
	return strings.ReplaceAll(c.TableFormat, TopicPlaceholder, topic)
}

// validate ensures config values are within acceptable bounds.
func (c *Config) validate() {
	if c.TableFormat == "" {
		c.TableFormat = TopicPlaceholder
	}
	if c.BatchSize < 1 {
		c.BatchSize = 1
	}
	if c.BatchSize > MaxBatchSize {
		c.BatchSize = MaxBatchSize
	}
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}
	if c.RetryBackoff < 0 {
		c.RetryBackoff = 0
	}
}
