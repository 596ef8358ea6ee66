package relay

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/statusrelay/statusrelay/internal/relay"

// Metrics holds the OpenTelemetry instruments for delivery reporting.
type Metrics struct {
	publishTotal    metric.Int64Counter
	publishDuration metric.Float64Histogram
	publishAttempts metric.Int64Histogram
}

// NewMetrics creates a Metrics instance with initialized instruments.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(meterName)

	publishTotal, err := meter.Int64Counter(
		"relay.publish.total",
		metric.WithDescription("Total number of status-change publish calls by outcome"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, err
	}

	publishDuration, err := meter.Float64Histogram(
		"relay.publish.duration",
		metric.WithDescription("End-to-end duration of publish calls in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	publishAttempts, err := meter.Int64Histogram(
		"relay.publish.attempts",
		metric.WithDescription("Number of bus attempts made per publish call"),
		metric.WithUnit("{attempt}"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		publishTotal:    publishTotal,
		publishDuration: publishDuration,
		publishAttempts: publishAttempts,
	}, nil
}

func (m *Metrics) record(ctx context.Context, rec deliveryRecord) {
	attrs := metric.WithAttributes(
		attribute.String("relay.outcome", rec.outcome),
		attribute.String("relay.bus", rec.bus),
	)
	m.publishTotal.Add(ctx, 1, attrs)
	m.publishDuration.Record(ctx, rec.duration.Seconds(), attrs)
	m.publishAttempts.Record(ctx, int64(rec.attempts), attrs)
}
