package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config carries everything the pipeline components need. It is assembled
// once in main and handed to each component at construction, so nothing
// below main reads the environment.
type Config struct {
	OrdersTable   string
	ReceiptsTable string

	OrdersQueueURL        string
	NotificationsQueueURL string
	DeadLetterQueue       string

	// APIBaseURL is where the relay re-submits notifications, e.g.
	// "http://localhost:8080".
	APIBaseURL string

	// ReceiptTTL bounds how long processing receipts are kept before
	// DynamoDB TTL reaps them.
	ReceiptTTL time.Duration

	// MaxMessageSize is the largest queue message body the consumers accept.
	MaxMessageSize int

	// MaxDeliveryAttempts documents the SQS redrive ceiling; it is enforced
	// by the queue's redrive policy, not in code.
	MaxDeliveryAttempts int
}

const (
	defaultReceiptTTL          = 48 * time.Hour
	defaultMaxMessageSize      = 64 * 1024
	defaultMaxDeliveryAttempts = 5
)

// Load reads configuration from the environment. A .env file is honored for
// local runs. OrdersTable and OrdersQueueURL are required; everything else
// has a workable default.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		OrdersTable:           os.Getenv("ORDERS_TABLE"),
		ReceiptsTable:         getenv("RECEIPTS_TABLE", "order-receipts"),
		OrdersQueueURL:        os.Getenv("ORDERS_QUEUE_URL"),
		NotificationsQueueURL: os.Getenv("NOTIFICATIONS_QUEUE_URL"),
		DeadLetterQueue:       getenv("DEAD_LETTER_QUEUE", "orders-dlq"),
		APIBaseURL:            getenv("API_BASE_URL", "http://localhost:8080"),
		ReceiptTTL:            defaultReceiptTTL,
		MaxMessageSize:        defaultMaxMessageSize,
		MaxDeliveryAttempts:   defaultMaxDeliveryAttempts,
	}

	if v := os.Getenv("RECEIPT_TTL_HOURS"); v != "" {
		hours, err := strconv.Atoi(v)
		if err != nil || hours <= 0 {
			return cfg, fmt.Errorf("invalid RECEIPT_TTL_HOURS: %q", v)
		}
		cfg.ReceiptTTL = time.Duration(hours) * time.Hour
	}
	if v := os.Getenv("MAX_MESSAGE_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return cfg, fmt.Errorf("invalid MAX_MESSAGE_SIZE: %q", v)
		}
		cfg.MaxMessageSize = n
	}
	if v := os.Getenv("MAX_DELIVERY_ATTEMPTS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return cfg, fmt.Errorf("invalid MAX_DELIVERY_ATTEMPTS: %q", v)
		}
		cfg.MaxDeliveryAttempts = n
	}

	if cfg.OrdersTable == "" {
		return cfg, fmt.Errorf("ORDERS_TABLE is required")
	}
	if cfg.OrdersQueueURL == "" {
		return cfg, fmt.Errorf("ORDERS_QUEUE_URL is required")
	}

	return cfg, nil
}

func getenv(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}
