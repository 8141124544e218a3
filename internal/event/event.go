// Package event defines the envelope that flows through the bus and the
// per-topic payload shapes. Envelopes are immutable once published.
package event

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Topic names are fixed and known at publish time.
const (
	TopicRequestLifecycle = "request-lifecycle"
	TopicWorkerResult     = "worker-result"
	TopicDeadLetter       = "dead-letter"
)

// Topics lists every topic in the pipeline, in publish order.
func Topics() []string {
	return []string{TopicRequestLifecycle, TopicWorkerResult, TopicDeadLetter}
}

// Event is the unit flowing through the bus. Key carries the request id so
// events for one workflow instance can be joined across topics. EventID is
// unique per published envelope and is what consumers deduplicate on.
type Event struct {
	EventID    uuid.UUID       `json:"event_id"`
	Topic      string          `json:"topic"`
	Key        string          `json:"key"`
	Payload    json.RawMessage `json:"payload"`
	ProducedAt time.Time       `json:"produced_at"`
}

// New builds an envelope for the given topic and key. The payload is
// marshaled once here so a marshal failure surfaces at publish time, not in
// a consumer.
func New(topic, key string, payload any) (Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("marshal %s payload: %w", topic, err)
	}
	return Event{
		EventID:    uuid.Must(uuid.NewV7()),
		Topic:      topic,
		Key:        key,
		Payload:    raw,
		ProducedAt: time.Now().UTC(),
	}, nil
}

// Decode parses a wire value back into an envelope.
func Decode(value []byte) (Event, error) {
	var e Event
	if err := json.Unmarshal(value, &e); err != nil {
		return Event{}, fmt.Errorf("decode event: %w", err)
	}
	return e, nil
}

// Encode renders the envelope for the wire.
func (e Event) Encode() ([]byte, error) {
	raw, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("encode event: %w", err)
	}
	return raw, nil
}

// RequestAction describes what the coordinator did to the request.
type RequestAction string

const (
	ActionCreated RequestAction = "created"
	ActionUpdated RequestAction = "updated"
	ActionDeleted RequestAction = "deleted"
)

// RequestPayload is published on request-lifecycle.
type RequestPayload struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Status      string        `json:"status"`
	Action      RequestAction `json:"action"`
}

// ResultPayload is published on worker-result after a successful compliance
// check.
type ResultPayload struct {
	RequestID string `json:"requestId"`
	Status    string `json:"status"`
	Details   string `json:"details"`
}

// DeadLetterPayload is published on dead-letter when processing fails. The
// original payload travels with the failure reason for manual handling.
type DeadLetterPayload struct {
	Reason   string          `json:"reason"`
	Original json.RawMessage `json:"original"`
}
