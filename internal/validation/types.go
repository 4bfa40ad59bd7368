package validation

// CreateOrderRequest is the payload for POST /orders. No id and no status:
// identity is assigned by the consumer, status always starts at Pending.
type CreateOrderRequest struct {
	CustomerName string `json:"customerName" validate:"required"`
	ProductName  string `json:"productName" validate:"required"`
	Quantity     int    `json:"quantity" validate:"required,min=1"` // must be >= 1
}

// UpdateStatusRequest is the payload for PUT /orders/{id}/status.
// Version is the client's copy of the concurrency token; when omitted the
// handler re-reads the current token immediately before the update.
type UpdateStatusRequest struct {
	Status  string `json:"status" validate:"required,oneof=Pending Processing Completed Cancelled"`
	Version string `json:"version,omitempty"`
}
