package request

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"grcflow/internal/event"
	"grcflow/internal/platform/kafka/consumer"
	"grcflow/pkg/platform/sentinel"
)

// StatusHandler moves the coordinator's local status when downstream
// outcomes arrive: worker-result marks a request processed, dead-letter
// marks it failed. This view is eventual; it is never coupled to the
// worker's own transaction.
type StatusHandler struct {
	store  Store
	logger *slog.Logger
}

func NewStatusHandler(store Store, logger *slog.Logger) *StatusHandler {
	return &StatusHandler{store: store, logger: logger}
}

// Handle applies one downstream outcome. Malformed payloads and unknown
// request ids are logged and committed; only storage failures cause
// redelivery.
func (h *StatusHandler) Handle(ctx context.Context, msg *consumer.Message) error {
	e, err := event.Decode(msg.Value)
	if err != nil {
		h.logger.Error("malformed event, skipping",
			"topic", msg.Topic,
			"key", string(msg.Key),
			"error", err,
		)
		return nil
	}

	id, err := uuid.Parse(e.Key)
	if err != nil {
		h.logger.Error("event key is not a request id, skipping",
			"topic", msg.Topic,
			"key", e.Key,
		)
		return nil
	}

	var status Status
	switch msg.Topic {
	case event.TopicWorkerResult:
		status = StatusProcessed
	case event.TopicDeadLetter:
		status = StatusFailed
	default:
		return nil
	}

	if err := h.store.UpdateStatus(ctx, id, status); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			// Deleted while the outcome was in flight. Nothing to move.
			h.logger.DebugContext(ctx, "status update for unknown request",
				"request_id", id,
				"status", status,
			)
			return nil
		}
		return err
	}

	h.logger.InfoContext(ctx, "request status updated",
		"request_id", id,
		"status", status,
	)
	return nil
}
