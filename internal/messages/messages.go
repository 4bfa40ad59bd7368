package messages

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Typed wire schemas for the order queues. Payloads are validated here, at
// the deserialization boundary, so consumers never work on untyped maps.

// ErrMalformedMessage marks bodies that cannot be decoded at all.
var ErrMalformedMessage = errors.New("malformed queue message")

// ErrInvalidMessage marks bodies that decode but fail field validation.
var ErrInvalidMessage = errors.New("invalid queue message")

// OrderMessage is the payload sent from the ingress API to the orders queue.
// MessageID is producer-assigned and is the consumer's dedup key; foreign
// producers may omit it. ID and Status only appear on relay re-submissions.
type OrderMessage struct {
	MessageID    string     `json:"message_id,omitempty"`
	ID           string     `json:"id,omitempty"`
	CustomerName string     `json:"customer_name"`
	ProductName  string     `json:"product_name"`
	Quantity     int        `json:"quantity"`
	Status       string     `json:"status,omitempty"`
	CreatedAt    *time.Time `json:"created_at,omitempty"`
}

// NotificationMessage is the payload on the notifications queue: an order
// completion (or stock update) that the relay re-submits to the API.
type NotificationMessage struct {
	OrderID      string `json:"order_id,omitempty"`
	CustomerName string `json:"customer_name"`
	ProductName  string `json:"product_name"`
	Quantity     int    `json:"quantity"`
	Status       string `json:"status,omitempty"`
}

// DecodeOrderMessage parses a queue body into an OrderMessage. Bodies may be
// raw JSON or base64-wrapped JSON (the original producer base64-wraps).
// maxSize <= 0 disables the size check.
func DecodeOrderMessage(body string, maxSize int) (OrderMessage, error) {
	var msg OrderMessage
	raw, err := unwrap(body, maxSize)
	if err != nil {
		return msg, err
	}
	if err := json.Unmarshal(raw, &msg); err != nil {
		return msg, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	if err := msg.validate(); err != nil {
		return msg, err
	}
	return msg, nil
}

// DecodeNotificationMessage parses a notifications-queue body.
func DecodeNotificationMessage(body string, maxSize int) (NotificationMessage, error) {
	var msg NotificationMessage
	raw, err := unwrap(body, maxSize)
	if err != nil {
		return msg, err
	}
	if err := json.Unmarshal(raw, &msg); err != nil {
		return msg, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	if msg.CustomerName == "" || msg.ProductName == "" {
		return msg, fmt.Errorf("%w: missing customer_name or product_name", ErrInvalidMessage)
	}
	if msg.Quantity < 1 {
		return msg, fmt.Errorf("%w: quantity must be positive, got %d", ErrInvalidMessage, msg.Quantity)
	}
	return msg, nil
}

func (m OrderMessage) validate() error {
	if m.CustomerName == "" {
		return fmt.Errorf("%w: missing customer_name", ErrInvalidMessage)
	}
	if m.ProductName == "" {
		return fmt.Errorf("%w: missing product_name", ErrInvalidMessage)
	}
	if m.Quantity < 1 {
		return fmt.Errorf("%w: quantity must be positive, got %d", ErrInvalidMessage, m.Quantity)
	}
	return nil
}

// unwrap returns the JSON bytes of a body that is either raw JSON or a
// base64 wrapping of it.
func unwrap(body string, maxSize int) ([]byte, error) {
	if maxSize > 0 && len(body) > maxSize {
		return nil, fmt.Errorf("%w: body exceeds %d bytes", ErrMalformedMessage, maxSize)
	}
	trimmed := strings.TrimSpace(body)
	if trimmed == "" {
		return nil, fmt.Errorf("%w: empty body", ErrMalformedMessage)
	}
	if strings.HasPrefix(trimmed, "{") {
		return []byte(trimmed), nil
	}
	decoded, err := base64.StdEncoding.DecodeString(trimmed)
	if err != nil {
		return nil, fmt.Errorf("%w: neither JSON nor base64: %v", ErrMalformedMessage, err)
	}
	return decoded, nil
}
