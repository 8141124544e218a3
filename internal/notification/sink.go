package notification

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"grcflow/internal/event"
	"grcflow/internal/platform/kafka/consumer"
)

// Sink handles worker-result and dead-letter events by appending one
// notification record each. A store failure fails the handler so the bus
// redelivers; duplicate rows under at-least-once delivery are an accepted
// artifact of that choice.
type Sink struct {
	store  Store
	logger *slog.Logger
}

func NewSink(store Store, logger *slog.Logger) *Sink {
	return &Sink{store: store, logger: logger}
}

// Handle materializes one notification from the event.
func (s *Sink) Handle(ctx context.Context, msg *consumer.Message) error {
	e, err := event.Decode(msg.Value)
	if err != nil {
		s.logger.Error("malformed event, skipping",
			"topic", msg.Topic,
			"key", string(msg.Key),
			"error", err,
		)
		return nil
	}

	var message string
	switch msg.Topic {
	case event.TopicDeadLetter:
		message = MessageAlert
	case event.TopicWorkerResult:
		message = MessageProcessed
	default:
		return nil
	}

	record := Record{
		ID:        uuid.Must(uuid.NewV7()),
		Message:   message,
		Details:   e.Payload,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.Save(ctx, record); err != nil {
		return fmt.Errorf("persist notification: %w", err)
	}

	s.logger.InfoContext(ctx, "notification created",
		"topic", msg.Topic,
		"key", e.Key,
		"message", message,
	)
	return nil
}
