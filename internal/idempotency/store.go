package idempotency

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"github.com/abcretailers/orderflow/internal/aws"
)

// Store encapsulates receipt operations against DynamoDB.
type Store struct {
	client    aws.DynamoDBAPI
	tableName string
	ttlWindow time.Duration // default TTL window when creating entries
	nowFunc   func() time.Time
}

// NewStore returns a configured Store.
// tableName: DynamoDB table name for receipts.
// ttlWindow: default TTL window (e.g., 48*time.Hour)
func NewStore(client aws.DynamoDBAPI, tableName string, ttlWindow time.Duration) *Store {
	return &Store{
		client:    client,
		tableName: tableName,
		ttlWindow: ttlWindow,
		nowFunc:   time.Now,
	}
}

// NewReceipt builds a receipt for the given message/order pair, stamped with
// the store's clock and TTL window. Used by the consumer to feed the
// transactional insert without reaching into receipt internals.
func (s *Store) NewReceipt(messageID, orderID, status string) Receipt {
	now := s.nowFunc()
	return Receipt{
		MessageID: messageID,
		Status:    status,
		OrderID:   orderID,
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: now.Add(s.ttlWindow).Unix(),
	}
}

// ErrConditionFailed indicates a conditional write failed (e.g., attribute_not_exists)
var ErrConditionFailed = errors.New("conditional check failed")

// CreateIfNotExists creates a receipt with status IN_PROGRESS if the message
// id has not been seen.
// Returns (created=true, nil) if successfully created.
// Returns (created=false, nil) if the receipt already exists (caller should Get to inspect).
// Returns (created=false, err) on other errors.
func (s *Store) CreateIfNotExists(ctx context.Context, messageID, orderID string) (bool, error) {
	rec := s.NewReceipt(messageID, orderID, StatusInProgress)

	item, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return false, fmt.Errorf("marshal receipt: %w", err)
	}

	input := &dyn.PutItemInput{
		TableName: &s.tableName,
		Item:      item,
		// Only create when attribute_not_exists(message_id)
		ConditionExpression: awsString("attribute_not_exists(message_id)"),
	}

	_, err = s.client.PutItem(ctx, input)
	if err != nil {
		// detect conditional check failure
		var sc smithy.APIError
		if errors.As(err, &sc) && sc.ErrorCode() == "ConditionalCheckFailedException" {
			return false, nil
		}
		return false, fmt.Errorf("put item: %w", err)
	}

	return true, nil
}

// Get retrieves a receipt by message id. If not found, returns (nil, nil).
func (s *Store) Get(ctx context.Context, messageID string) (*Receipt, error) {
	input := &dyn.GetItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"message_id": &types.AttributeValueMemberS{Value: messageID},
		},
	}
	out, err := s.client.GetItem(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	var rec Receipt
	if err := attributevalue.UnmarshalMap(out.Item, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal item: %w", err)
	}
	return &rec, nil
}

// MarkFailed marks the receipt as FAILED and optionally stores a note.
func (s *Store) MarkFailed(ctx context.Context, messageID, note string) error {
	now := s.nowFunc()
	input := &dyn.UpdateItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"message_id": &types.AttributeValueMemberS{Value: messageID},
		},
		UpdateExpression: awsString("SET #s = :failed, note = :n, updated_at = :ua"),
		ExpressionAttributeNames: map[string]string{
			"#s": "status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":failed": &types.AttributeValueMemberS{Value: StatusFailed},
			":n":      &types.AttributeValueMemberS{Value: note},
			":ua":     &types.AttributeValueMemberS{Value: now.Format(time.RFC3339)},
		},
		ReturnValues: types.ReturnValueUpdatedNew,
	}
	_, err := s.client.UpdateItem(ctx, input)
	if err != nil {
		return fmt.Errorf("update item (mark failed): %w", err)
	}
	return nil
}

// Helper
func awsString(s string) *string { return &s }
