package sink

import (
	"strconv"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/jacentio/ddbsink/internal/convert"
)

// valueSource selects which half of a record is being inserted.
type valueSource int

const (
	sourceValue valueSource = iota
	sourceKey
)

func (s valueSource) String() string {
	if s == sourceKey {
		return "record key"
	}
	return "record value"
}

// topAttributeName returns the configured nesting attribute for a source.
func topAttributeName(cfg Config, s valueSource) string {
	if s == sourceKey {
		return cfg.TopKeyAttribute
	}
	return cfg.TopValueAttribute
}

// buildItem assembles the item written for a record. The value is applied
// before the key, so a key attribute wins a name collision.
func buildItem(cfg Config, r Record) (Item, error) {
	item := make(Item)

	if !cfg.IgnoreRecordValue {
		if err := insert(cfg, sourceValue, r, r.ValueSchema, r.Value, item); err != nil {
			return nil, err
		}
	}
	if !cfg.IgnoreRecordKey {
		if err := insert(cfg, sourceKey, r, r.KeySchema, r.Key, item); err != nil {
			return nil, err
		}
	}

	if cfg.TopicAttribute != "" {
		item[cfg.TopicAttribute] = &types.AttributeValueMemberS{Value: r.Topic}
	}
	if cfg.PartitionAttribute != "" {
		item[cfg.PartitionAttribute] = &types.AttributeValueMemberN{Value: strconv.FormatInt(int64(r.Partition), 10)}
	}
	if cfg.OffsetAttribute != "" {
		item[cfg.OffsetAttribute] = &types.AttributeValueMemberN{Value: strconv.FormatInt(r.Offset, 10)}
	}

	return item, nil
}

func insert(cfg Config, s valueSource, r Record, schema *convert.Schema, value any, item Item) error {
	av, err := convert.ToAttributeValue(schema, value)
	if err != nil {
		return &ConversionError{Record: r, Source: s.String(), Err: err}
	}

	if name := topAttributeName(cfg, s); name != "" {
		item[name] = av
		return nil
	}

	m, ok := av.(*types.AttributeValueMemberM)
	if !ok {
		return &ConfigurationError{Source: s.String(), Value: av}
	}
	for k, v := range m.Value {
		item[k] = v
	}
	return nil
}
