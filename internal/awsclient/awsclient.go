// Package awsclient builds DynamoDB clients from connector settings.
package awsclient

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

// Options selects the region, endpoint and credentials of a client.
type Options struct {
	Region   string
	Endpoint string

	// AccessKeyID and SecretKey select static credentials. When either is
	// empty the default credential chain is used (environment, shared
	// config, instance or task role).
	AccessKeyID string
	SecretKey   string
}

// StaticCredentials reports whether o carries its own credentials.
func (o Options) StaticCredentials() bool {
	return o.AccessKeyID != "" && o.SecretKey != ""
}

// NewDynamoDB returns a DynamoDB client for o.
func NewDynamoDB(ctx context.Context, o Options) (*dynamodb.Client, error) {
	var loadOpts []func(*config.LoadOptions) error
	if o.Region != "" {
		loadOpts = append(loadOpts, config.WithRegion(o.Region))
	}
	if o.StaticCredentials() {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(o.AccessKeyID, o.SecretKey, ""),
		))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return dynamodb.NewFromConfig(cfg, func(opts *dynamodb.Options) {
		if o.Endpoint != "" {
			opts.BaseEndpoint = aws.String(o.Endpoint)
		}
	}), nil
}
