package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/aws/aws-lambda-go/events"

	"github.com/abcretailers/orderflow/internal/aws"
	"github.com/abcretailers/orderflow/internal/config"
	"github.com/abcretailers/orderflow/internal/messages"
	"github.com/abcretailers/orderflow/internal/metrics"
)

// Relay consumes order-completion notifications and re-submits them through
// the ingress HTTP contract rather than writing to the store directly. Each
// re-submission enters the ingestion pipeline as a brand-new order; no
// correlation with the originating order is preserved.
type Relay struct {
	cfg     config.Config
	client  *http.Client
	metrics *metrics.Emitter
}

// NewRelay builds a relay targeting cfg.APIBaseURL.
func NewRelay(clients *aws.AWSClients, cfg config.Config) *Relay {
	return &Relay{
		cfg: cfg,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		metrics: metrics.NewEmitter(clients.CloudWatch, "Orderflow"),
	}
}

// Handle receives an SQS batch from the notifications queue.
func (r *Relay) Handle(ctx context.Context, ev events.SQSEvent) error {
	for _, rec := range ev.Records {
		if err := r.processMessage(ctx, rec); err != nil {
			// A failed re-submission must not be acknowledged: return the
			// error so the queue redelivers and eventually dead-letters.
			log.Printf("[relay] error: %v", err)
			r.metrics.Count(ctx, metrics.MetricRelayFailures)
			return err
		}
	}
	return nil
}

func (r *Relay) processMessage(ctx context.Context, rec events.SQSMessage) error {
	note, err := messages.DecodeNotificationMessage(rec.Body, r.cfg.MaxMessageSize)
	if err != nil {
		return fmt.Errorf("message %s: %w", rec.MessageId, err)
	}

	// Project the notification onto the submission shape the ingress
	// accepts. The ingress assigns its own message id on enqueue.
	body, err := json.Marshal(map[string]interface{}{
		"customerName": note.CustomerName,
		"productName":  note.ProductName,
		"quantity":     note.Quantity,
	})
	if err != nil {
		return fmt.Errorf("encode re-submission: %w", err)
	}

	url := r.cfg.APIBaseURL + "/orders"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build re-submission request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("re-submit notification for order %q: %w", note.OrderID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("re-submit notification for order %q: status %d: %s", note.OrderID, resp.StatusCode, detail)
	}

	log.Printf("[relay] re-submitted notification order=%q status=%d", note.OrderID, resp.StatusCode)
	r.metrics.Count(ctx, metrics.MetricRelayResubmissions)
	return nil
}
