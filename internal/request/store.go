package request

import (
	"context"

	"github.com/google/uuid"
)

// Store is interface-driven to keep the service testable and to allow
// swapping the in-memory and postgres implementations without rewiring
// business code.
type Store interface {
	Save(ctx context.Context, r Request) error
	FindByID(ctx context.Context, id uuid.UUID) (Request, error)
	List(ctx context.Context) ([]Request, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error
	Delete(ctx context.Context, id uuid.UUID) error
}
