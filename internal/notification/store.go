package notification

import "context"

// Store persists notification records. The pipeline only appends; records
// are never updated or deleted here.
type Store interface {
	Save(ctx context.Context, r Record) error
	List(ctx context.Context) ([]Record, error)
}
