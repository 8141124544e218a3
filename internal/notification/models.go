// Package notification materializes human-facing records from worker-result
// and dead-letter events. It is purely reactive: it never publishes.
package notification

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Record is one materialized notification. Details carries the raw payload
// of the event that triggered it.
type Record struct {
	ID        uuid.UUID       `json:"id"`
	Message   string          `json:"message"`
	Details   json.RawMessage `json:"details"`
	CreatedAt time.Time       `json:"createdAt"`
}

// Messages for the two event kinds the notifier reacts to.
const (
	MessageAlert     = "Alert: An error occurred"
	MessageProcessed = "Request processed"
)
