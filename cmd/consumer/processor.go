package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"

	"github.com/abcretailers/orderflow/internal/aws"
	"github.com/abcretailers/orderflow/internal/config"
	"github.com/abcretailers/orderflow/internal/idempotency"
	"github.com/abcretailers/orderflow/internal/messages"
	"github.com/abcretailers/orderflow/internal/metrics"
	"github.com/abcretailers/orderflow/internal/orders"
)

// Processor materializes queued order submissions into the orders table.
// It never retries internally: any error is returned to the runtime so the
// queue's redelivery policy is the single source of retry truth, with the
// dead-letter queue catching messages that keep failing.
type Processor struct {
	cfg        config.Config
	orderStore *orders.Store
	receipts   *idempotency.Store
	metrics    *metrics.Emitter
	nowFunc    func() time.Time
}

// NewProcessor creates a consumer processor with AWS clients injected.
func NewProcessor(clients *aws.AWSClients, cfg config.Config) *Processor {
	return &Processor{
		cfg:        cfg,
		orderStore: orders.NewStore(clients.DynamoDB, cfg.OrdersTable),
		receipts:   idempotency.NewStore(clients.DynamoDB, cfg.ReceiptsTable, cfg.ReceiptTTL),
		metrics:    metrics.NewEmitter(clients.CloudWatch, "Orderflow"),
		nowFunc:    time.Now,
	}
}

// Handle receives an SQS batch event and processes each message.
func (p *Processor) Handle(ctx context.Context, ev events.SQSEvent) error {
	for _, rec := range ev.Records {
		if err := p.processMessage(ctx, rec); err != nil {
			// Return error: the runtime will redeliver. After the redrive
			// ceiling the message lands in the dead-letter queue.
			log.Printf("[consumer] error: %v", err)
			return err
		}
	}
	return nil
}

func (p *Processor) processMessage(ctx context.Context, rec events.SQSMessage) error {
	msg, err := messages.DecodeOrderMessage(rec.Body, p.cfg.MaxMessageSize)
	if err != nil {
		// Structurally bad messages are poison: fail the batch and let
		// redelivery escalate to the DLQ. Never silently drop.
		p.metrics.Count(ctx, metrics.MetricPoisonMessages)
		p.recordFailure(ctx, msg.MessageID, err)
		return fmt.Errorf("message %s: %w", rec.MessageId, err)
	}

	// Identity is assigned here and only here. The ingress and the queue
	// never see an order id. created_at reflects processing time, which can
	// lag submission under backlog.
	now := p.nowFunc().UTC()
	order := orders.Order{
		OrderID:      uuid.NewString(),
		CustomerName: msg.CustomerName,
		ProductName:  msg.ProductName,
		Quantity:     msg.Quantity,
		Status:       orders.StatusPending,
		Version:      uuid.NewString(),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if msg.MessageID == "" {
		// Foreign producer without a dedup key: plain insert, at-least-once.
		if err := p.orderStore.Insert(ctx, order); err != nil {
			return fmt.Errorf("insert order %s: %w", order.OrderID, err)
		}
		log.Printf("[consumer] persisted order=%s (no message id)", order.OrderID)
		p.metrics.Count(ctx, metrics.MetricOrdersPersisted)
		return nil
	}

	receipt := p.receipts.NewReceipt(msg.MessageID, order.OrderID, idempotency.StatusDone)

	err = p.orderStore.InsertWithReceipt(ctx, p.cfg.ReceiptsTable, receipt, order)
	if errors.Is(err, orders.ErrDuplicateMessage) {
		// Redelivery of work that already committed: acknowledge without a
		// second insert.
		prev, getErr := p.receipts.Get(ctx, msg.MessageID)
		if getErr == nil && prev != nil {
			log.Printf("[consumer] duplicate delivery message=%s order=%s", msg.MessageID, prev.OrderID)
		} else {
			log.Printf("[consumer] duplicate delivery message=%s", msg.MessageID)
		}
		p.metrics.Count(ctx, metrics.MetricDuplicateDeliveries)
		return nil
	}
	if err != nil {
		return fmt.Errorf("persist order for message %s: %w", msg.MessageID, err)
	}

	log.Printf("[consumer] persisted order=%s message=%s", order.OrderID, msg.MessageID)
	p.metrics.Count(ctx, metrics.MetricOrdersPersisted)
	return nil
}

// recordFailure leaves a FAILED receipt for a poison message so the reason
// is queryable next to the dead-letter queue. Best effort: a receipt error
// is logged and never masks the processing error. Malformed bodies have no
// message id and leave nothing.
func (p *Processor) recordFailure(ctx context.Context, messageID string, cause error) {
	if messageID == "" {
		return
	}
	if _, err := p.receipts.CreateIfNotExists(ctx, messageID, ""); err != nil {
		log.Printf("[consumer] failure receipt message=%s: %v", messageID, err)
		return
	}
	if err := p.receipts.MarkFailed(ctx, messageID, cause.Error()); err != nil {
		log.Printf("[consumer] failure receipt message=%s: %v", messageID, err)
	}
}
