package metrics

import (
	"context"
	"log"
	"time"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/abcretailers/orderflow/internal/aws"
)

// Pipeline counters published to CloudWatch.
const (
	MetricOrdersAccepted      = "OrdersAccepted"
	MetricOrdersPersisted     = "OrdersPersisted"
	MetricDuplicateDeliveries = "DuplicateDeliveries"
	MetricPoisonMessages      = "PoisonMessages"
	MetricRelayResubmissions  = "RelayResubmissions"
	MetricRelayFailures       = "RelayFailures"
)

// Emitter publishes counters, best-effort: metric failures are logged and
// never fail the pipeline. A nil Emitter is safe to call.
type Emitter struct {
	client    aws.CloudWatchAPI
	namespace string
	nowFunc   func() time.Time
}

// NewEmitter returns an Emitter writing into the given namespace.
func NewEmitter(client aws.CloudWatchAPI, namespace string) *Emitter {
	return &Emitter{
		client:    client,
		namespace: namespace,
		nowFunc:   time.Now,
	}
}

// Count emits a count of 1 for the named metric.
func (e *Emitter) Count(ctx context.Context, name string) {
	e.add(ctx, name, 1)
}

// CountN emits a count of n for the named metric.
func (e *Emitter) CountN(ctx context.Context, name string, n float64) {
	e.add(ctx, name, n)
}

func (e *Emitter) add(ctx context.Context, name string, n float64) {
	if e == nil || e.client == nil {
		return
	}
	ts := e.nowFunc()
	_, err := e.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace: sdkaws.String(e.namespace),
		MetricData: []cwtypes.MetricDatum{
			{
				MetricName: sdkaws.String(name),
				Timestamp:  &ts,
				Unit:       cwtypes.StandardUnitCount,
				Value:      sdkaws.Float64(n),
			},
		},
	})
	if err != nil {
		log.Printf("[metrics] put metric %s failed: %v", name, err)
	}
}
