package notification

import (
	"context"
	"database/sql"
	"fmt"
)

// PostgresStore persists notifications in the notifier's private table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Save(ctx context.Context, r Record) error {
	query := `
		INSERT INTO notifications (id, message, details, created_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := s.db.ExecContext(ctx, query, r.ID, r.Message, []byte(r.Details), r.CreatedAt)
	if err != nil {
		return fmt.Errorf("save notification: %w", err)
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context) ([]Record, error) {
	query := `
		SELECT id, message, details, created_at
		FROM notifications
		ORDER BY created_at
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var r Record
		var details []byte
		if err := rows.Scan(&r.ID, &r.Message, &details, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		r.Details = details
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return out, nil
}
