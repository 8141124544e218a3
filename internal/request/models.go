// Package request owns the request entity and its lifecycle: persist first,
// then publish, and let downstream services react through the bus.
package request

import (
	"time"

	"github.com/google/uuid"
)

// Status is the coordinator's local view of where a request is in the
// workflow. Downstream processing moves it via worker-result and
// dead-letter events; the transition is eventual, never atomic.
type Status string

const (
	StatusPending   Status = "pending"
	StatusProcessed Status = "processed"
	StatusFailed    Status = "failed"
	StatusDeleted   Status = "deleted"
)

// Request is the entity owned exclusively by the coordinator's store.
type Request struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
