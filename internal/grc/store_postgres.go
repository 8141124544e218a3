package grc

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"grcflow/pkg/platform/sentinel"
)

// PostgresStore persists compliance records in the worker's private table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Save(ctx context.Context, r Record) error {
	query := `
		INSERT INTO grc_records (id, request_id, status, details, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			request_id = EXCLUDED.request_id,
			status = EXCLUDED.status,
			details = EXCLUDED.details
	`
	_, err := s.db.ExecContext(ctx, query, r.ID, r.RequestID, r.Status, r.Details, r.CreatedAt)
	if err != nil {
		return fmt.Errorf("save grc record: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id uuid.UUID) (Record, error) {
	query := `
		SELECT id, request_id, status, details, created_at
		FROM grc_records
		WHERE id = $1
	`
	var r Record
	err := s.db.QueryRowContext(ctx, query, id).Scan(&r.ID, &r.RequestID, &r.Status, &r.Details, &r.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, sentinel.ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("find grc record: %w", err)
	}
	return r, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]Record, error) {
	query := `
		SELECT id, request_id, status, details, created_at
		FROM grc_records
		ORDER BY created_at
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list grc records: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.ID, &r.RequestID, &r.Status, &r.Details, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan grc record: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list grc records: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM grc_records WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete grc record: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete grc record: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
