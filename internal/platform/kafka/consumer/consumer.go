// Package consumer implements the group-consumption side of the bus client:
// poll, dispatch to a handler, and commit the offset only after the handler
// returns without error. That commit discipline is the system's sole
// concurrency-correctness mechanism, so nothing here commits early.
package consumer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/twmb/franz-go/pkg/kgo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"grcflow/internal/event"
	"grcflow/internal/platform/metrics"
)

// Message is one record as delivered to a handler.
type Message struct {
	Topic     string
	Key       []byte
	Value     []byte
	Partition int32
	Offset    int64
	// Attempt counts deliveries of this record to this process, starting
	// at 1. Redeliveries after a crash reset it.
	Attempt int
}

// Handler processes a single message. Returning nil commits the offset;
// returning an error leaves the offset alone so the record is retried and,
// after Config.MaxAttempts, routed to dead-letter.
type Handler interface {
	Handle(ctx context.Context, msg *Message) error
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(ctx context.Context, msg *Message) error

// Handle calls f.
func (f HandlerFunc) Handle(ctx context.Context, msg *Message) error {
	return f(ctx, msg)
}

// DeadLetterer publishes an envelope; the consumer uses it to route records
// whose handler keeps failing.
type DeadLetterer interface {
	Publish(ctx context.Context, e event.Event) error
}

// Config tunes one consumer group member.
type Config struct {
	Brokers []string
	GroupID string
	Topics  []string

	// MaxAttempts caps in-place deliveries to a failing handler before the
	// record is routed to dead-letter. Zero means 5.
	MaxAttempts int
	// BackoffInitial is the delay before the second attempt. Zero means 200ms.
	BackoffInitial time.Duration
	// BackoffMax bounds the exponential delay growth. Zero means 30s.
	BackoffMax time.Duration
}

func (c Config) withDefaults() Config {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 5
	}
	if c.BackoffInitial <= 0 {
		c.BackoffInitial = 200 * time.Millisecond
	}
	if c.BackoffMax <= 0 {
		c.BackoffMax = 30 * time.Second
	}
	return c
}

// Consumer is one member of a consumer group. Records are handled
// sequentially; offsets are committed per record after successful handling.
type Consumer struct {
	client     *kgo.Client
	cfg        Config
	handler    Handler
	deadLetter DeadLetterer
	logger     *slog.Logger
	metrics    *metrics.Metrics
	tracer     trace.Tracer
}

// New joins the group and subscribes to the configured topics. Auto-commit
// is disabled; Run owns all offset movement.
func New(cfg Config, handler Handler, deadLetter DeadLetterer, logger *slog.Logger, m *metrics.Metrics) (*Consumer, error) {
	cfg = cfg.withDefaults()
	client, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.ConsumerGroup(cfg.GroupID),
		kgo.ConsumeTopics(cfg.Topics...),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
		kgo.DisableAutoCommit(),
	)
	if err != nil {
		return nil, fmt.Errorf("create consumer client: %w", err)
	}
	return &Consumer{
		client:     client,
		cfg:        cfg,
		handler:    handler,
		deadLetter: deadLetter,
		logger:     logger,
		metrics:    m,
		tracer:     otel.Tracer("grcflow/platform/kafka/consumer"),
	}, nil
}

// Run polls until ctx is canceled. A record is committed only once its
// handler succeeded or the record was handed to dead-letter; anything still
// in flight at shutdown is left uncommitted for redelivery on restart.
func (c *Consumer) Run(ctx context.Context) error {
	for {
		fetches := c.client.PollFetches(ctx)
		if fetches.IsClientClosed() {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		for _, fetchErr := range fetches.Errors() {
			if errors.Is(fetchErr.Err, context.Canceled) {
				return ctx.Err()
			}
			c.logger.Error("fetch error",
				"topic", fetchErr.Topic,
				"partition", fetchErr.Partition,
				"error", fetchErr.Err,
			)
		}

		iter := fetches.RecordIter()
		for !iter.Done() {
			record := iter.Next()
			if err := c.process(ctx, record); err != nil {
				return err
			}
			if err := ctx.Err(); err != nil {
				// Shutdown raced the handler; leave the record uncommitted
				// for redelivery rather than committing on a dead context.
				return err
			}
			if err := c.client.CommitRecords(ctx, record); err != nil {
				return fmt.Errorf("commit %s[%d]@%d: %w", record.Topic, record.Partition, record.Offset, err)
			}
			if c.metrics != nil {
				c.metrics.EventsConsumed.WithLabelValues(record.Topic, c.cfg.GroupID).Inc()
			}
		}
	}
}

// process drives one record through the handler with exponential backoff.
// When the handler is still failing after MaxAttempts the record goes to
// dead-letter, unless the record already came from dead-letter: then there
// is nowhere left to route it and process returns the error uncommitted.
func (c *Consumer) process(ctx context.Context, record *kgo.Record) error {
	msg := &Message{
		Topic:     record.Topic,
		Key:       record.Key,
		Value:     record.Value,
		Partition: record.Partition,
		Offset:    record.Offset,
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.cfg.BackoffInitial
	policy.MaxInterval = c.cfg.BackoffMax
	policy.MaxElapsedTime = 0

	var lastErr error
	attempt := 0
	operation := func() error {
		attempt++
		msg.Attempt = attempt
		if attempt > 1 && c.metrics != nil {
			c.metrics.HandlerRetries.WithLabelValues(msg.Topic, c.cfg.GroupID).Inc()
		}
		lastErr = c.handle(ctx, msg)
		return lastErr
	}

	err := backoff.Retry(operation, backoff.WithMaxRetries(backoff.WithContext(policy, ctx), uint64(c.cfg.MaxAttempts-1)))
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}

	if msg.Topic == event.TopicDeadLetter || c.deadLetter == nil {
		return fmt.Errorf("handler exhausted %d attempts on %s[%d]@%d: %w",
			c.cfg.MaxAttempts, msg.Topic, msg.Partition, msg.Offset, lastErr)
	}
	return c.routeToDeadLetter(ctx, msg, lastErr)
}

func (c *Consumer) handle(ctx context.Context, msg *Message) error {
	ctx, span := c.tracer.Start(ctx, "bus.handle", trace.WithAttributes(
		attribute.String("messaging.destination", msg.Topic),
		attribute.String("messaging.kafka.consumer_group", c.cfg.GroupID),
		attribute.Int("messaging.delivery_attempt", msg.Attempt),
	))
	defer span.End()

	start := time.Now()
	err := c.handler.Handle(ctx, msg)
	if c.metrics != nil {
		c.metrics.HandleDuration.WithLabelValues(msg.Topic, c.cfg.GroupID).Observe(time.Since(start).Seconds())
	}
	if err != nil {
		span.RecordError(err)
		if c.metrics != nil {
			c.metrics.HandlerFailures.WithLabelValues(msg.Topic, c.cfg.GroupID).Inc()
		}
		c.logger.WarnContext(ctx, "handler failed",
			"topic", msg.Topic,
			"group", c.cfg.GroupID,
			"attempt", msg.Attempt,
			"error", err,
		)
	}
	return err
}

func (c *Consumer) routeToDeadLetter(ctx context.Context, msg *Message, cause error) error {
	dead, err := event.New(event.TopicDeadLetter, string(msg.Key), event.DeadLetterPayload{
		Reason:   fmt.Sprintf("handler exhausted %d attempts: %s", c.cfg.MaxAttempts, cause),
		Original: msg.Value,
	})
	if err != nil {
		return err
	}
	if err := c.deadLetter.Publish(ctx, dead); err != nil {
		return fmt.Errorf("route %s[%d]@%d to dead-letter: %w", msg.Topic, msg.Partition, msg.Offset, err)
	}
	if c.metrics != nil {
		c.metrics.DeadLettersProduced.Inc()
	}
	c.logger.ErrorContext(ctx, "record routed to dead-letter",
		"topic", msg.Topic,
		"group", c.cfg.GroupID,
		"key", string(msg.Key),
		"cause", cause,
	)
	return nil
}

// Close leaves the group and releases the client.
func (c *Consumer) Close() {
	c.client.Close()
}
