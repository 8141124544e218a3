package audit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"grcflow/internal/event"
	"grcflow/internal/platform/kafka/consumer"
	"grcflow/internal/platform/metrics"
)

// Recorder consumes every topic under one group and appends one record per
// logical event. A store failure fails the handler - the one thing this
// component must never do is swallow an append error and commit anyway.
type Recorder struct {
	store   Store
	seen    *SeenCache // optional
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewRecorder(store Store, seen *SeenCache, logger *slog.Logger, m *metrics.Metrics) *Recorder {
	return &Recorder{store: store, seen: seen, logger: logger, metrics: m}
}

// Handle appends one audit record for the message.
func (r *Recorder) Handle(ctx context.Context, msg *consumer.Message) error {
	e, err := event.Decode(msg.Value)
	if err != nil {
		// An unparseable message still happened; record it raw with a
		// fresh id rather than dropping it silently. Redelivery of such a
		// message cannot be deduplicated - it carries no id of its own.
		e = event.Event{
			EventID:    uuid.Must(uuid.NewV7()),
			Topic:      msg.Topic,
			Key:        string(msg.Key),
			Payload:    msg.Value,
			ProducedAt: time.Now().UTC(),
		}
	}

	if r.seen != nil && e.EventID != uuid.Nil {
		seen, cacheErr := r.seen.Seen(ctx, e.EventID.String())
		if cacheErr != nil {
			r.logger.WarnContext(ctx, "seen-cache lookup failed, falling through to store",
				"event_id", e.EventID,
				"error", cacheErr,
			)
		} else if seen {
			r.suppressed(ctx, msg, e)
			return nil
		}
	}

	record := Record{
		EventID:    e.EventID,
		Action:     msg.Topic,
		Details:    e.Payload,
		RecordedAt: time.Now().UTC(),
	}
	if err := r.store.Append(ctx, record); err != nil {
		if errors.Is(err, ErrDuplicate) {
			r.suppressed(ctx, msg, e)
			return nil
		}
		return fmt.Errorf("append audit record: %w", err)
	}

	if r.seen != nil {
		if cacheErr := r.seen.Mark(ctx, e.EventID.String()); cacheErr != nil {
			r.logger.WarnContext(ctx, "seen-cache mark failed",
				"event_id", e.EventID,
				"error", cacheErr,
			)
		}
	}

	r.logger.InfoContext(ctx, "audit record appended",
		"action", msg.Topic,
		"key", e.Key,
		"event_id", e.EventID,
	)
	return nil
}

func (r *Recorder) suppressed(ctx context.Context, msg *consumer.Message, e event.Event) {
	if r.metrics != nil {
		r.metrics.AuditDuplicates.Inc()
	}
	r.logger.DebugContext(ctx, "duplicate delivery suppressed",
		"action", msg.Topic,
		"event_id", e.EventID,
	)
}
