// Package audit is the system's observability backbone: one record per
// logical event across every topic, regardless of whether any downstream
// consumer succeeded.
package audit

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Record is one observed event. EventID is the envelope's id, which makes
// appends idempotent under at-least-once redelivery.
type Record struct {
	EventID    uuid.UUID       `json:"eventId"`
	Action     string          `json:"action"`
	Details    json.RawMessage `json:"details"`
	RecordedAt time.Time       `json:"recordedAt"`
}
