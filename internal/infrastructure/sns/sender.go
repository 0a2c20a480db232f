package sns

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
	"github.com/contoso-notify/internal/config"
	"github.com/contoso-notify/internal/infrastructure/awsinfra"
)

// API is the subset of the SNS client the publisher uses.
type API interface {
	Publish(ctx context.Context, in *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// Publisher pushes notification bodies to a topic whose subscribed SQS queue
// is read by the sqs transport.
type Publisher struct {
	client   API
	topicARN string
}

func NewClient(ctx context.Context, cfg *config.Config) (*sns.Client, error) {
	awsCfg, err := awsinfra.Load(ctx, cfg)
	if err != nil {
		return nil, err
	}
	endpoint := awsinfra.BaseEndpoint(cfg)
	return sns.NewFromConfig(awsCfg, func(o *sns.Options) {
		if endpoint != nil {
			o.BaseEndpoint = endpoint
		}
	}), nil
}

func NewPublisher(client API, topicARN string) *Publisher {
	return &Publisher{client: client, topicARN: topicARN}
}

// Publish sends body with a label attribute. groupID and dedupID are only
// set for FIFO topics and may be empty.
func (p *Publisher) Publish(ctx context.Context, body, label, groupID, dedupID string) error {
	in := &sns.PublishInput{
		TopicArn: aws.String(p.topicARN),
		Message:  aws.String(body),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"label": {DataType: aws.String("String"), StringValue: aws.String(label)},
		},
	}
	if groupID != "" {
		in.MessageGroupId = aws.String(groupID)
		in.MessageDeduplicationId = aws.String(dedupID)
	}
	if _, err := p.client.Publish(ctx, in); err != nil {
		return fmt.Errorf("sns publish: %w", err)
	}
	return nil
}
