package grc

import (
	"context"

	"github.com/google/uuid"
)

// Store persists the worker's compliance records.
type Store interface {
	Save(ctx context.Context, r Record) error
	FindByID(ctx context.Context, id uuid.UUID) (Record, error)
	List(ctx context.Context) ([]Record, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
