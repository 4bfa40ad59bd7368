package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/abcretailers/orderflow/internal/aws"
)

// ErrVersionMismatch signals a conditional update against a stale version
// token. Callers must re-read and retry with the current token, never
// overwrite.
var ErrVersionMismatch = errors.New("version token mismatch")

// ErrNotFound signals an operation against a nonexistent order.
var ErrNotFound = errors.New("order not found")

// ErrDuplicateMessage signals that a processing receipt already exists for
// the queue message, i.e. a redelivery of work that was already persisted.
var ErrDuplicateMessage = errors.New("duplicate queue message")

// Store encapsulates operations on the orders table.
type Store struct {
	client    aws.DynamoDBAPI
	tableName string
	nowFunc   func() time.Time
}

// NewStore creates a new orders Store.
func NewStore(client aws.DynamoDBAPI, tableName string) *Store {
	return &Store{
		client:    client,
		tableName: tableName,
		nowFunc:   time.Now,
	}
}

// Insert writes a new order row. The row key must be fresh; an existing
// order_id is a hard failure rather than an overwrite.
func (s *Store) Insert(ctx context.Context, order Order) error {
	item, err := attributevalue.MarshalMap(order)
	if err != nil {
		return fmt.Errorf("marshal order: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dyn.PutItemInput{
		TableName:           &s.tableName,
		Item:                item,
		ConditionExpression: awsString("attribute_not_exists(order_id)"),
	})
	if err != nil {
		var cf *types.ConditionalCheckFailedException
		if errors.As(err, &cf) {
			return fmt.Errorf("order_id collision for %s: %w", order.OrderID, err)
		}
		return fmt.Errorf("put order: %w", err)
	}
	return nil
}

// InsertWithReceipt atomically writes the order row and a processing receipt
// keyed by the queue message id. The receipt put carries an
// attribute_not_exists condition, so a redelivered message cancels the whole
// transaction and surfaces as ErrDuplicateMessage; the order is never
// inserted twice for the same message.
func (s *Store) InsertWithReceipt(ctx context.Context, receiptsTable string, receipt interface{}, order Order) error {
	receiptMap, err := attributevalue.MarshalMap(receipt)
	if err != nil {
		return fmt.Errorf("marshal receipt: %w", err)
	}

	orderMap, err := attributevalue.MarshalMap(order)
	if err != nil {
		return fmt.Errorf("marshal order: %w", err)
	}

	input := &dyn.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{
				Put: &types.Put{
					TableName:           &receiptsTable,
					Item:                receiptMap,
					ConditionExpression: awsString("attribute_not_exists(message_id)"),
				},
			},
			{
				Put: &types.Put{
					TableName:           &s.tableName,
					Item:                orderMap,
					ConditionExpression: awsString("attribute_not_exists(order_id)"),
				},
			},
		},
	}

	_, err = s.client.TransactWriteItems(ctx, input)
	if err != nil {
		var tce *types.TransactionCanceledException
		if errors.As(err, &tce) {
			if receiptConditionFailed(tce) {
				return ErrDuplicateMessage
			}
			// Canceled for another reason (TransactionConflict, throttling,
			// validation): nothing was written, so the caller must see the
			// error and let redelivery retry.
			return fmt.Errorf("transact write canceled: %w", err)
		}
		return fmt.Errorf("transact write: %w", err)
	}
	return nil
}

// receiptConditionFailed reports whether the cancellation was caused by the
// receipt put's conditional check, i.e. the message id has already been
// processed. The receipt is the first transact item.
func receiptConditionFailed(tce *types.TransactionCanceledException) bool {
	if len(tce.CancellationReasons) == 0 {
		return false
	}
	code := tce.CancellationReasons[0].Code
	return code != nil && *code == "ConditionalCheckFailed"
}

// Get fetches an order by order_id. Returns (nil, nil) if not found.
func (s *Store) Get(ctx context.Context, orderID string) (*Order, error) {
	key := map[string]types.AttributeValue{
		"order_id": &types.AttributeValueMemberS{Value: orderID},
	}
	out, err := s.client.GetItem(ctx, &dyn.GetItemInput{
		TableName: &s.tableName,
		Key:       key,
	})
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	var o Order
	if err := attributevalue.UnmarshalMap(out.Item, &o); err != nil {
		return nil, fmt.Errorf("unmarshal order: %w", err)
	}
	return &o, nil
}

// List scans the orders table. Order of results is unspecified.
func (s *Store) List(ctx context.Context) ([]Order, error) {
	out, err := s.client.Scan(ctx, &dyn.ScanInput{
		TableName: &s.tableName,
	})
	if err != nil {
		return nil, fmt.Errorf("scan orders: %w", err)
	}

	var list []Order
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &list); err != nil {
		return nil, fmt.Errorf("unmarshal orders: %w", err)
	}
	return list, nil
}

// UpdateStatus conditionally replaces the order status. expectedVersion must
// be the row's current version token; on success a fresh token is written.
// Returns ErrVersionMismatch when the token is stale (or the row vanished).
func (s *Store) UpdateStatus(ctx context.Context, orderID, newStatus, expectedVersion, newVersion string) error {
	now := s.nowFunc()
	input := &dyn.UpdateItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"order_id": &types.AttributeValueMemberS{Value: orderID},
		},
		UpdateExpression:         awsString("SET #s = :new, version = :nv, updated_at = :ua"),
		ExpressionAttributeNames: map[string]string{"#s": "status"},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":new":      &types.AttributeValueMemberS{Value: newStatus},
			":nv":       &types.AttributeValueMemberS{Value: newVersion},
			":ua":       &types.AttributeValueMemberS{Value: now.Format(time.RFC3339)},
			":expected": &types.AttributeValueMemberS{Value: expectedVersion},
		},
		ConditionExpression: awsString("attribute_exists(order_id) AND version = :expected"),
	}

	_, err := s.client.UpdateItem(ctx, input)
	if err != nil {
		var cf *types.ConditionalCheckFailedException
		if errors.As(err, &cf) {
			return ErrVersionMismatch
		}
		return fmt.Errorf("update item: %w", err)
	}
	return nil
}

// Delete removes an order. Returns ErrNotFound when no such row exists.
func (s *Store) Delete(ctx context.Context, orderID string) error {
	input := &dyn.DeleteItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"order_id": &types.AttributeValueMemberS{Value: orderID},
		},
		ConditionExpression: awsString("attribute_exists(order_id)"),
	}
	_, err := s.client.DeleteItem(ctx, input)
	if err != nil {
		var cf *types.ConditionalCheckFailedException
		if errors.As(err, &cf) {
			return ErrNotFound
		}
		return fmt.Errorf("delete item: %w", err)
	}
	return nil
}

func awsString(s string) *string { return &s }
