package dynamo

import (
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Attribute names of a queue item. Using constants prevents silent runtime
// bugs caused by key typos in expressions.
const (
	attrQueue     = "queue"
	attrSeq       = "seq"
	attrExpiresAt = "expires_at"
)

// compositeKey builds a DynamoDB primary key with two string attributes (PK + SK).
func compositeKey(pkName, pkValue, skName, skValue string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		pkName: &types.AttributeValueMemberS{Value: pkValue},
		skName: &types.AttributeValueMemberS{Value: skValue},
	}
}

func itemKey(queue, seq string) map[string]types.AttributeValue {
	return compositeKey(attrQueue, queue, attrSeq, seq)
}
