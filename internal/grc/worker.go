package grc

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"grcflow/internal/event"
	"grcflow/internal/platform/kafka/consumer"
)

// Publisher is the slice of the bus client the worker needs.
type Publisher interface {
	Publish(ctx context.Context, e event.Event) error
}

// Worker handles request-lifecycle events. Per consumed event it reaches
// exactly one terminal state: a worker-result publish or a dead-letter
// publish, never both. A failing check must not fail consumption - that
// would redeliver the same doomed event forever - so only bus or storage
// unavailability propagates out of Handle.
type Worker struct {
	check  CheckFunc
	store  Store
	bus    Publisher
	logger *slog.Logger
}

func NewWorker(check CheckFunc, store Store, bus Publisher, logger *slog.Logger) *Worker {
	if check == nil {
		check = DefaultCheck
	}
	return &Worker{check: check, store: store, bus: bus, logger: logger}
}

// Handle processes one lifecycle event.
func (w *Worker) Handle(ctx context.Context, msg *consumer.Message) error {
	e, err := event.Decode(msg.Value)
	if err != nil {
		// Malformed events cannot be processed by anyone; skip and commit.
		w.logger.Error("malformed lifecycle event, skipping",
			"key", string(msg.Key),
			"error", err,
		)
		return nil
	}

	var payload event.RequestPayload
	if err := json.Unmarshal(e.Payload, &payload); err != nil {
		w.logger.Error("undecodable lifecycle payload, skipping",
			"event_id", e.EventID,
			"error", err,
		)
		return nil
	}

	if payload.Action == event.ActionDeleted {
		// Nothing to check on a deletion; the auditor records it.
		w.logger.DebugContext(ctx, "skipping deleted request", "request_id", payload.ID)
		return nil
	}

	verdict, checkErr := w.check(payload)
	if checkErr != nil {
		return w.publishFailure(ctx, e, checkErr)
	}
	return w.publishResult(ctx, e, verdict)
}

func (w *Worker) publishResult(ctx context.Context, e event.Event, verdict Verdict) error {
	record := Record{
		ID:        uuid.Must(uuid.NewV7()),
		RequestID: verdict.RequestID,
		Status:    StatusProcessed,
		Details:   verdict.Details,
		CreatedAt: time.Now().UTC(),
	}
	if err := w.store.Save(ctx, record); err != nil {
		return fmt.Errorf("persist compliance record: %w", err)
	}

	result, err := event.New(event.TopicWorkerResult, e.Key, event.ResultPayload{
		RequestID: verdict.RequestID,
		Status:    StatusProcessed,
		Details:   verdict.Details,
	})
	if err != nil {
		return err
	}
	if err := w.bus.Publish(ctx, result); err != nil {
		return err
	}

	w.logger.InfoContext(ctx, "request processed",
		"request_id", verdict.RequestID,
		"record_id", record.ID,
	)
	return nil
}

func (w *Worker) publishFailure(ctx context.Context, e event.Event, cause error) error {
	dead, err := event.New(event.TopicDeadLetter, e.Key, event.DeadLetterPayload{
		Reason:   cause.Error(),
		Original: e.Payload,
	})
	if err != nil {
		return err
	}
	if err := w.bus.Publish(ctx, dead); err != nil {
		return err
	}

	w.logger.WarnContext(ctx, "compliance check failed, routed to dead-letter",
		"key", e.Key,
		"reason", cause,
	)
	return nil
}
