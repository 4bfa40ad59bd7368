package main

import (
	"context"
	"log"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"github.com/abcretailers/orderflow/internal/aws"
	"github.com/abcretailers/orderflow/internal/config"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	clients, err := aws.NewAWSClients(ctx)
	if err != nil {
		log.Fatalf("failed to init aws clients: %v", err)
	}

	r := NewRelay(clients, cfg)

	// If RUN_LOCAL=true, simulate a single notification event for local testing.
	if os.Getenv("RUN_LOCAL") == "true" {
		testBody := os.Getenv("LOCAL_SQS_BODY")
		if testBody == "" {
			testBody = `{"order_id":"local-order-1","customer_name":"Local Customer","product_name":"Local Widget","quantity":1,"status":"Completed"}`
		}
		event := events.SQSEvent{
			Records: []events.SQSMessage{
				{Body: testBody},
			},
		}
		if err := r.Handle(ctx, event); err != nil {
			log.Fatalf("local handler error: %v", err)
		}
		return
	}

	lambda.Start(r.Handle)
}
