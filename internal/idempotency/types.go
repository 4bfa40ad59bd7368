package idempotency

import "time"

// Status values for processing receipts
const (
	StatusInProgress = "IN_PROGRESS"
	StatusDone       = "DONE"
	StatusFailed     = "FAILED"
)

// Receipt is the shape persisted in the receipts DynamoDB table. One receipt
// exists per queue message the consumer has materialized; its presence is
// what makes redelivered messages collapse into a no-op.
type Receipt struct {
	MessageID string    `dynamodbav:"message_id"` // PK, producer-assigned
	Status    string    `dynamodbav:"status"`
	OrderID   string    `dynamodbav:"order_id,omitempty"`
	CreatedAt time.Time `dynamodbav:"created_at"`
	UpdatedAt time.Time `dynamodbav:"updated_at"`
	ExpiresAt int64     `dynamodbav:"expires_at"` // TTL epoch seconds
	Note      string    `dynamodbav:"note,omitempty"`
}
