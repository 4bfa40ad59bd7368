package orders

import "time"

// Order statuses
const (
	StatusPending    = "Pending"
	StatusProcessing = "Processing"
	StatusCompleted  = "Completed"
	StatusCancelled  = "Cancelled"
)

// ValidStatus reports whether s is one of the known order statuses.
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusProcessing, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Order represents the item stored in the Orders DynamoDB table.
// Version is the opaque concurrency token: every conditional update must
// supply the current value and rotates it.
type Order struct {
	OrderID      string    `dynamodbav:"order_id"` // PK, server-assigned
	CustomerName string    `dynamodbav:"customer_name"`
	ProductName  string    `dynamodbav:"product_name"`
	Quantity     int       `dynamodbav:"quantity"`
	Status       string    `dynamodbav:"status"` // Pending | Processing | Completed | Cancelled
	Version      string    `dynamodbav:"version"`
	CreatedAt    time.Time `dynamodbav:"created_at"` // set at persistence time, not submission time
	UpdatedAt    time.Time `dynamodbav:"updated_at"`
}
