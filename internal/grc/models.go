// Package grc implements the compliance worker: it consumes
// request-lifecycle events, runs the compliance check, and publishes
// worker-result on success or dead-letter on failure.
package grc

import (
	"time"

	"github.com/google/uuid"
)

// Record tracks one processed request in the worker's private store.
type Record struct {
	ID        uuid.UUID `json:"id"`
	RequestID string    `json:"requestId"`
	Status    string    `json:"status"`
	Details   string    `json:"details"`
	CreatedAt time.Time `json:"createdAt"`
}

// StatusProcessed is the terminal status a record carries after a
// successful check.
const StatusProcessed = "Processed"
