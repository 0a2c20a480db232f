// Package sqsinfra is the durable notification transport backed by an SQS
// queue. Messages carry the notification as JSON so any process can read them.
package sqsinfra

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/contoso-notify/internal/config"
	"github.com/contoso-notify/internal/domain"
	"github.com/contoso-notify/internal/infrastructure/awsinfra"
	"github.com/contoso-notify/internal/pkg/id"
)

const (
	// receiveWaitSeconds is the long-poll window that separates "momentarily
	// empty" from a fault.
	receiveWaitSeconds = 1
	messageGroupID     = "notifications"
	labelAttribute     = "label"
)

// API is the subset of the SQS client the transport uses.
type API interface {
	SendMessage(ctx context.Context, in *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
	ReceiveMessage(ctx context.Context, in *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, in *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

// Publisher is an alternative enqueue path (an SNS topic feeding the queue).
type Publisher interface {
	Publish(ctx context.Context, body, label, groupID, dedupID string) error
}

// Queue implements the notification transport contract over SQS.
type Queue struct {
	client    API
	queueURL  string
	fifo      bool
	publisher Publisher
}

type Option func(*Queue)

// WithPublisher routes Enqueue through p instead of SendMessage.
func WithPublisher(p Publisher) Option {
	return func(q *Queue) { q.publisher = p }
}

// NewClient creates an SQS client. When cfg.AWSEndpointURL is set (LocalStack),
// it overrides the endpoint so all traffic goes to the local instance.
func NewClient(ctx context.Context, cfg *config.Config) (*sqs.Client, error) {
	awsCfg, err := awsinfra.Load(ctx, cfg)
	if err != nil {
		return nil, err
	}
	endpoint := awsinfra.BaseEndpoint(cfg)
	return sqs.NewFromConfig(awsCfg, func(o *sqs.Options) {
		if endpoint != nil {
			o.BaseEndpoint = endpoint
		}
	}), nil
}

// CheckFIFO rejects a standard queue URL or SNS topic ARN. Delivery order is
// only guaranteed end to end when both legs are FIFO.
func CheckFIFO(queueURL, topicARN string) error {
	if !strings.HasSuffix(queueURL, ".fifo") {
		return fmt.Errorf("%w: sqs queue %q is not a FIFO queue", domain.ErrBadRequest, queueURL)
	}
	if topicARN != "" && !strings.HasSuffix(topicARN, ".fifo") {
		return fmt.Errorf("%w: sns topic %q is not a FIFO topic", domain.ErrBadRequest, topicARN)
	}
	return nil
}

func NewQueue(client API, queueURL string, opts ...Option) *Queue {
	q := &Queue{
		client:   client,
		queueURL: queueURL,
		fifo:     strings.HasSuffix(queueURL, ".fifo"),
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

func (q *Queue) Enqueue(ctx context.Context, n *domain.Notification) error {
	if n == nil {
		return fmt.Errorf("%w: nil notification", domain.ErrBadRequest)
	}
	body, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	label := fmt.Sprintf("%s %s", n.EntityType, n.Operation)

	var groupID, dedupID string
	if q.fifo {
		groupID, dedupID = messageGroupID, id.New()
	}

	if q.publisher != nil {
		if err := q.publisher.Publish(ctx, string(body), label, groupID, dedupID); err != nil {
			return fmt.Errorf("%w: %w", domain.ErrTransport, err)
		}
		return nil
	}

	in := &sqs.SendMessageInput{
		QueueUrl:    aws.String(q.queueURL),
		MessageBody: aws.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			labelAttribute: {DataType: aws.String("String"), StringValue: aws.String(label)},
		},
	}
	if q.fifo {
		in.MessageGroupId = aws.String(groupID)
		in.MessageDeduplicationId = aws.String(dedupID)
	}
	if _, err := q.client.SendMessage(ctx, in); err != nil {
		return fmt.Errorf("%w: sqs send message: %w", domain.ErrTransport, err)
	}
	return nil
}

// TryDequeue waits up to receiveWaitSeconds for one message. A message is
// deleted as soon as it is read, so delivery is at most once.
func (q *Queue) TryDequeue(ctx context.Context) (*domain.Notification, error) {
	out, err := q.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:            aws.String(q.queueURL),
		MaxNumberOfMessages: 1,
		WaitTimeSeconds:     receiveWaitSeconds,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: sqs receive message: %w", domain.ErrTransport, err)
	}
	if len(out.Messages) == 0 {
		return nil, nil
	}
	msg := out.Messages[0]

	if _, err := q.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(q.queueURL),
		ReceiptHandle: msg.ReceiptHandle,
	}); err != nil {
		slog.Warn("sqs delete message failed; message may be redelivered",
			"message_id", aws.ToString(msg.MessageId), "err", err)
	}

	var n domain.Notification
	if err := json.Unmarshal([]byte(aws.ToString(msg.Body)), &n); err != nil {
		return nil, fmt.Errorf("%w: unmarshal message %s: %w", domain.ErrTransport, aws.ToString(msg.MessageId), err)
	}
	return &n, nil
}
