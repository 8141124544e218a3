package audit

import (
	"context"
	"database/sql"
	"fmt"
)

// PostgresStore appends audit records with ON CONFLICT DO NOTHING on the
// event id, making consumption idempotent under redelivery.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Append(ctx context.Context, r Record) error {
	query := `
		INSERT INTO audit_records (event_id, action, details, recorded_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (event_id) DO NOTHING
	`
	result, err := s.db.ExecContext(ctx, query, r.EventID, r.Action, []byte(r.Details), r.RecordedAt)
	if err != nil {
		return fmt.Errorf("append audit record: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("append audit record: %w", err)
	}
	if affected == 0 {
		return ErrDuplicate
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context) ([]Record, error) {
	query := `
		SELECT event_id, action, details, recorded_at
		FROM audit_records
		ORDER BY recorded_at
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list audit records: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var r Record
		var details []byte
		if err := rows.Scan(&r.EventID, &r.Action, &details, &r.RecordedAt); err != nil {
			return nil, fmt.Errorf("scan audit record: %w", err)
		}
		r.Details = details
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list audit records: %w", err)
	}
	return out, nil
}
