// Package config loads process configuration from the environment.
package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"

	"github.com/jacentio/ddbsink/internal/convert"
	"github.com/jacentio/ddbsink/sink"
)

// Prefix is the environment variable prefix, e.g. DDBSINK_BATCH_SIZE.
const Prefix = "ddbsink"

// Config is shared by every host.
type Config struct {
	LogFormat    string     `default:"json" split_words:"true" validate:"oneof=json text"`
	LogLevel     slog.Level `default:"info" split_words:"true"`
	LogAddSource bool       `default:"true" split_words:"true"`

	AWSRegion    string `envconfig:"AWS_REGION"`
	AWSEndpoint  string `envconfig:"AWS_ENDPOINT" validate:"omitempty,url"`
	AWSAccessKey string `envconfig:"AWS_ACCESS_KEY_ID"`
	AWSSecretKey string `envconfig:"AWS_SECRET_ACCESS_KEY"`

	TableFormat       string        `default:"${topic}" split_words:"true" validate:"required"`
	BatchSize         int           `default:"1" split_words:"true" validate:"min=1,max=25"`
	MaxRetries        int           `default:"10" split_words:"true" validate:"min=0"`
	RetryBackoff      time.Duration `default:"3s" split_words:"true" validate:"min=0"`
	IgnoreRecordKey   bool          `split_words:"true"`
	IgnoreRecordValue bool          `split_words:"true"`
	TopKeyAttribute   string        `split_words:"true"`
	TopValueAttribute string        `split_words:"true"`

	TopicAttribute     string `default:"kafka_topic" split_words:"true"`
	PartitionAttribute string `default:"kafka_partition" split_words:"true"`
	OffsetAttribute    string `default:"kafka_offset" split_words:"true"`

	KeyFormat   string `default:"string" split_words:"true" validate:"oneof=json string bytes"`
	ValueFormat string `default:"json" split_words:"true" validate:"oneof=json string bytes"`
}

// ConsumerConfig configures the Kafka consumer host.
type ConsumerConfig struct {
	Config

	KafkaBrokers        []string      `split_words:"true" validate:"required,min=1,dive,hostname_port"`
	KafkaTopics         []string      `split_words:"true" validate:"required,min=1,dive,required"`
	KafkaGroup          string        `default:"ddbsink" split_words:"true" validate:"required"`
	KafkaMaxPollRecords int           `default:"500" split_words:"true" validate:"min=1"`
	KafkaSessionTimeout time.Duration `default:"45s" split_words:"true"`

	ServerAddr            string        `default:":8080" split_words:"true"`
	ServerWriteTimeout    time.Duration `default:"15s" split_words:"true"`
	ServerReadTimeout     time.Duration `default:"15s" split_words:"true"`
	ServerIdleTimeout     time.Duration `default:"5m" split_words:"true"`
	ServerShutdownTimeout time.Duration `default:"30s" split_words:"true"`
}

// Load populates cfg from the environment and validates it. cfg must be a
// pointer to Config or ConsumerConfig.
func Load(cfg any) error {
	if err := envconfig.Process(Prefix, cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}
	return nil
}

// SinkConfig returns the sink.Config described by c.
func (c Config) SinkConfig() sink.Config {
	return sink.Config{
		Region:             c.AWSRegion,
		Endpoint:           c.AWSEndpoint,
		AccessKeyID:        c.AWSAccessKey,
		SecretKey:          c.AWSSecretKey,
		TableFormat:        c.TableFormat,
		BatchSize:          c.BatchSize,
		MaxRetries:         c.MaxRetries,
		RetryBackoff:       c.RetryBackoff,
		IgnoreRecordKey:    c.IgnoreRecordKey,
		IgnoreRecordValue:  c.IgnoreRecordValue,
		TopKeyAttribute:    c.TopKeyAttribute,
		TopValueAttribute:  c.TopValueAttribute,
		TopicAttribute:     c.TopicAttribute,
		PartitionAttribute: c.PartitionAttribute,
		OffsetAttribute:    c.OffsetAttribute,
	}
}

// Formats returns the key and value payload formats.
func (c Config) Formats() (key, value convert.Format, err error) {
	if key, err = convert.ParseFormat(c.KeyFormat); err != nil {
		return "", "", err
	}
	if value, err = convert.ParseFormat(c.ValueFormat); err != nil {
		return "", "", err
	}
	return key, value, nil
}
