// Package producer wraps the franz-go client behind the one operation the
// pipeline needs: publish an envelope to its topic and wait for the ack.
package producer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kgo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"grcflow/internal/event"
	"grcflow/internal/platform/metrics"
	"grcflow/pkg/platform/sentinel"
)

// Producer publishes envelopes with acks from all in-sync replicas. It is
// safe for concurrent use.
type Producer struct {
	client  *kgo.Client
	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer
}

// New connects a producer to the given brokers.
func New(brokers []string, logger *slog.Logger, m *metrics.Metrics) (*Producer, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.RequiredAcks(kgo.AllISRAcks()),
		kgo.AllowAutoTopicCreation(),
	)
	if err != nil {
		return nil, fmt.Errorf("create producer client: %w", err)
	}
	return &Producer{
		client:  client,
		logger:  logger,
		metrics: m,
		tracer:  otel.Tracer("grcflow/platform/kafka/producer"),
	}, nil
}

// Publish sends one envelope and blocks until the broker acks it. Broker
// failures surface as sentinel.ErrUnavailable so consumer handlers can fail
// and trigger redelivery instead of silently dropping the event.
func (p *Producer) Publish(ctx context.Context, e event.Event) error {
	ctx, span := p.tracer.Start(ctx, "bus.publish", trace.WithAttributes(
		attribute.String("messaging.destination", e.Topic),
		attribute.String("messaging.kafka.key", e.Key),
	))
	defer span.End()

	value, err := e.Encode()
	if err != nil {
		span.RecordError(err)
		return err
	}

	record := &kgo.Record{
		Topic:     e.Topic,
		Key:       []byte(e.Key),
		Value:     value,
		Timestamp: e.ProducedAt,
	}
	if err := p.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		span.RecordError(err)
		if p.metrics != nil {
			p.metrics.PublishFailures.WithLabelValues(e.Topic).Inc()
		}
		p.logger.ErrorContext(ctx, "publish failed",
			"topic", e.Topic,
			"key", e.Key,
			"error", err,
		)
		return fmt.Errorf("publish %s: %w: %s", e.Topic, sentinel.ErrUnavailable, err)
	}

	if p.metrics != nil {
		p.metrics.EventsPublished.WithLabelValues(e.Topic).Inc()
	}
	p.logger.DebugContext(ctx, "event published",
		"topic", e.Topic,
		"key", e.Key,
		"event_id", e.EventID,
	)
	return nil
}

// Close flushes buffered records and releases the client.
func (p *Producer) Close() {
	p.client.Close()
}
