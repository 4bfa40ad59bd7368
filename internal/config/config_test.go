package config

import (
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("ORDERS_TABLE", "orders")
	t.Setenv("ORDERS_QUEUE_URL", "https://sqs.local/orders-queue")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)
	t.Setenv("RECEIPTS_TABLE", "")
	t.Setenv("RECEIPT_TTL_HOURS", "")
	t.Setenv("MAX_MESSAGE_SIZE", "")
	t.Setenv("MAX_DELIVERY_ATTEMPTS", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ReceiptsTable != "order-receipts" {
		t.Fatalf("default receipts table, got %s", cfg.ReceiptsTable)
	}
	if cfg.ReceiptTTL != 48*time.Hour {
		t.Fatalf("default TTL, got %s", cfg.ReceiptTTL)
	}
	if cfg.MaxMessageSize != 64*1024 {
		t.Fatalf("default max message size, got %d", cfg.MaxMessageSize)
	}
	if cfg.MaxDeliveryAttempts != 5 {
		t.Fatalf("default max delivery attempts, got %d", cfg.MaxDeliveryAttempts)
	}
}

func TestLoad_RequiredValues(t *testing.T) {
	t.Setenv("ORDERS_TABLE", "")
	t.Setenv("ORDERS_QUEUE_URL", "https://sqs.local/orders-queue")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error when ORDERS_TABLE is unset")
	}

	t.Setenv("ORDERS_TABLE", "orders")
	t.Setenv("ORDERS_QUEUE_URL", "")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error when ORDERS_QUEUE_URL is unset")
	}
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("RECEIPT_TTL_HOURS", "24")
	t.Setenv("MAX_MESSAGE_SIZE", "1024")
	t.Setenv("MAX_DELIVERY_ATTEMPTS", "3")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ReceiptTTL != 24*time.Hour || cfg.MaxMessageSize != 1024 || cfg.MaxDeliveryAttempts != 3 {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
}

func TestLoad_RejectsBadNumbers(t *testing.T) {
	setRequired(t)
	t.Setenv("RECEIPT_TTL_HOURS", "zero")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for non-numeric TTL")
	}
	t.Setenv("RECEIPT_TTL_HOURS", "-1")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for negative TTL")
	}
}
