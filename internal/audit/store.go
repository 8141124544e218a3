package audit

import "context"

// Store appends audit records. Append must be idempotent on EventID:
// inserting a record that was already observed reports ErrDuplicate so the
// recorder can count suppressed redeliveries, and must not create a second
// row.
type Store interface {
	Append(ctx context.Context, r Record) error
	List(ctx context.Context) ([]Record, error)
}
