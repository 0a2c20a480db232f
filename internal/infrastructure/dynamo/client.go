package dynamo

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/contoso-notify/internal/config"
	"github.com/contoso-notify/internal/infrastructure/awsinfra"
)

// NewClient creates a DynamoDB client. When cfg.AWSEndpointURL is set (LocalStack),
// it overrides the endpoint so all traffic goes to the local instance.
func NewClient(ctx context.Context, cfg *config.Config) (*dynamodb.Client, error) {
	awsCfg, err := awsinfra.Load(ctx, cfg)
	if err != nil {
		return nil, err
	}

	clientOpts := []func(*dynamodb.Options){}
	if endpoint := awsinfra.BaseEndpoint(cfg); endpoint != nil {
		clientOpts = append(clientOpts, func(o *dynamodb.Options) {
			o.BaseEndpoint = endpoint
		})
	}

	return dynamodb.NewFromConfig(awsCfg, clientOpts...), nil
}
