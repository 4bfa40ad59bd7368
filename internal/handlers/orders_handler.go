package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/abcretailers/orderflow/internal/aws"
	"github.com/abcretailers/orderflow/internal/config"
	"github.com/abcretailers/orderflow/internal/messages"
	"github.com/abcretailers/orderflow/internal/metrics"
	"github.com/abcretailers/orderflow/internal/orders"
	"github.com/abcretailers/orderflow/internal/validation"
)

// HandlerConfig groups dependencies for the orders handler.
type HandlerConfig struct {
	DynamoDBClient aws.DynamoDBAPI
	SQSClient      aws.SQSAPI
	Cfg            config.Config
	Metrics        *metrics.Emitter
}

// OrderResponse is the API projection of a persisted order.
type OrderResponse struct {
	ID           string `json:"id"`
	CustomerName string `json:"customerName"`
	ProductName  string `json:"productName"`
	Quantity     int    `json:"quantity"`
	Status       string `json:"status"`
	Version      string `json:"version,omitempty"`
}

func toResponse(o orders.Order, withVersion bool) OrderResponse {
	resp := OrderResponse{
		ID:           o.OrderID,
		CustomerName: o.CustomerName,
		ProductName:  o.ProductName,
		Quantity:     o.Quantity,
		Status:       o.Status,
	}
	if withVersion {
		resp.Version = o.Version
	}
	return resp
}

// RegisterOrdersRoutes registers routes for the order API.
func RegisterOrdersRoutes(r *gin.Engine, hc HandlerConfig) {
	v := validation.New()
	store := orders.NewStore(hc.DynamoDBClient, hc.Cfg.OrdersTable)
	publisher := aws.NewPublisher(hc.SQSClient, hc.Cfg.OrdersQueueURL)

	// Submission is a fire-and-forget enqueue: 202 promises "durably
	// queued", not "persisted". No order id exists yet, so none is
	// returned. The record store is never touched here.
	r.POST("/orders", func(c *gin.Context) {
		ctx := c.Request.Context()

		var req validation.CreateOrderRequest
		if err := validation.BindAndValidate(c, &req, v); err != nil {
			// BindAndValidate already wrote a 400
			return
		}

		msg := messages.OrderMessage{
			MessageID:    uuid.NewString(),
			CustomerName: req.CustomerName,
			ProductName:  req.ProductName,
			Quantity:     req.Quantity,
		}
		body, err := json.Marshal(msg)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "encode_failed"})
			return
		}

		attrs := map[string]string{
			"message_id":     msg.MessageID,
			"correlation_id": c.GetHeader("X-Request-Id"),
		}
		if err := publisher.Send(ctx, string(body), attrs); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "enqueue_failed", "detail": err.Error()})
			return
		}

		hc.Metrics.Count(ctx, metrics.MetricOrdersAccepted)
		c.JSON(http.StatusAccepted, gin.H{"message": "order accepted for processing"})
	})

	r.GET("/orders", func(c *gin.Context) {
		list, err := store.List(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "list_failed", "detail": err.Error()})
			return
		}
		out := make([]OrderResponse, 0, len(list))
		for _, o := range list {
			out = append(out, toResponse(o, false))
		}
		c.JSON(http.StatusOK, out)
	})

	r.GET("/orders/:id", func(c *gin.Context) {
		id := c.Param("id")
		o, err := store.Get(c.Request.Context(), id)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "get_failed", "detail": err.Error()})
			return
		}
		if o == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "order_not_found", "id": id})
			return
		}
		c.JSON(http.StatusOK, toResponse(*o, true))
	})

	r.PUT("/orders/:id/status", func(c *gin.Context) {
		ctx := c.Request.Context()
		id := c.Param("id")

		var req validation.UpdateStatusRequest
		if err := validation.BindAndValidate(c, &req, v); err != nil {
			return
		}

		o, err := store.Get(ctx, id)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "get_failed", "detail": err.Error()})
			return
		}
		if o == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "order_not_found", "id": id})
			return
		}

		// Use the client's token when supplied (so a stale token fails
		// loudly); otherwise the token re-read just above.
		expected := req.Version
		if expected == "" {
			expected = o.Version
		}

		newVersion := uuid.NewString()
		err = store.UpdateStatus(ctx, id, req.Status, expected, newVersion)
		if errors.Is(err, orders.ErrVersionMismatch) {
			c.JSON(http.StatusConflict, gin.H{"error": "version_conflict", "id": id})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "update_failed", "detail": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"id":      id,
			"status":  req.Status,
			"version": newVersion,
			"message": fmt.Sprintf("order %s status updated to %s", id, req.Status),
		})
	})

	r.DELETE("/orders/:id", func(c *gin.Context) {
		id := c.Param("id")
		err := store.Delete(c.Request.Context(), id)
		if errors.Is(err, orders.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "order_not_found", "id": id})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "delete_failed", "detail": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("order %s deleted", id)})
	})
}
