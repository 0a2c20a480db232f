package dynamo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/contoso-notify/internal/domain"
	"github.com/contoso-notify/internal/pkg/id"
)

// claimAttempts bounds how often TryDequeue retries after losing a race for
// the head item to another consumer.
const claimAttempts = 3

// API is the subset of the DynamoDB client the queue uses.
type API interface {
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, in *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	DeleteItem(ctx context.Context, in *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

// queueItem is one pending notification. Seq is a ULID, so sort order is
// enqueue order for a single producer.
type queueItem struct {
	Queue     string `dynamodbav:"queue"`
	Seq       string `dynamodbav:"seq"`
	Body      string `dynamodbav:"body"`
	ExpiresAt int64  `dynamodbav:"expires_at"`
}

// Queue is a notification transport on a DynamoDB table: one partition per
// queue, items ordered by sort key. A consumer claims the head item with a
// conditional delete so each item is handed out once.
type Queue struct {
	client    API
	table     string
	partition string
	retention time.Duration
	now       func() time.Time
}

// NewQueue returns a queue in partition of table. Items not consumed within
// retention are removed by the table's TTL.
func NewQueue(client API, table, partition string, retention time.Duration) *Queue {
	return &Queue{
		client:    client,
		table:     table,
		partition: partition,
		retention: retention,
		now:       time.Now,
	}
}

func (q *Queue) Enqueue(ctx context.Context, n *domain.Notification) error {
	if n == nil {
		return fmt.Errorf("%w: nil notification", domain.ErrBadRequest)
	}
	body, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	item, err := attributevalue.MarshalMap(queueItem{
		Queue:     q.partition,
		Seq:       id.New(),
		Body:      string(body),
		ExpiresAt: q.now().Add(q.retention).Unix(),
	})
	if err != nil {
		return fmt.Errorf("marshal queue item: %w", err)
	}
	_, err = q.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(q.table),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(#seq)"),
		ExpressionAttributeNames: map[string]string{
			"#seq": attrSeq,
		},
	})
	if err != nil {
		return fmt.Errorf("%w: put item: %v", domain.ErrTransport, err)
	}
	return nil
}

// TryDequeue claims the oldest item. It returns (nil, nil) when the queue is
// empty or every claim attempt lost to another consumer.
func (q *Queue) TryDequeue(ctx context.Context) (*domain.Notification, error) {
	for attempt := 0; attempt < claimAttempts; attempt++ {
		head, err := q.head(ctx)
		if err != nil || head == nil {
			return nil, err
		}

		claimed, err := q.claim(ctx, head.Seq)
		if err != nil {
			return nil, err
		}
		if claimed == nil {
			continue
		}

		var n domain.Notification
		if err := json.Unmarshal([]byte(claimed.Body), &n); err != nil {
			return nil, fmt.Errorf("%w: decode item %s: %v", domain.ErrTransport, claimed.Seq, err)
		}
		return &n, nil
	}
	return nil, nil
}

func (q *Queue) head(ctx context.Context) (*queueItem, error) {
	out, err := q.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(q.table),
		KeyConditionExpression: aws.String("#q = :q"),
		ExpressionAttributeNames: map[string]string{
			"#q": attrQueue,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":q": &types.AttributeValueMemberS{Value: q.partition},
		},
		ScanIndexForward: aws.Bool(true),
		ConsistentRead:   aws.Bool(true),
		Limit:            aws.Int32(1),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: query head: %v", domain.ErrTransport, err)
	}
	if len(out.Items) == 0 {
		return nil, nil
	}
	var item queueItem
	if err := attributevalue.UnmarshalMap(out.Items[0], &item); err != nil {
		return nil, fmt.Errorf("%w: unmarshal head: %v", domain.ErrTransport, err)
	}
	return &item, nil
}

// claim deletes the item and returns its old image, or nil if another
// consumer deleted it first.
func (q *Queue) claim(ctx context.Context, seq string) (*queueItem, error) {
	out, err := q.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:           aws.String(q.table),
		Key:                 itemKey(q.partition, seq),
		ConditionExpression: aws.String("attribute_exists(#seq)"),
		ExpressionAttributeNames: map[string]string{
			"#seq": attrSeq,
		},
		ReturnValues: types.ReturnValueAllOld,
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: delete item %s: %v", domain.ErrTransport, seq, err)
	}
	if len(out.Attributes) == 0 {
		return nil, nil
	}
	var item queueItem
	if err := attributevalue.UnmarshalMap(out.Attributes, &item); err != nil {
		return nil, fmt.Errorf("%w: unmarshal claimed item: %v", domain.ErrTransport, err)
	}
	return &item, nil
}
