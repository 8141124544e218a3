// Package database opens the shared database/sql handle with pool settings
// from configuration.
package database

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"grcflow/internal/platform/config"
)

// Open connects to postgres and applies pool bounds. Callers own Close.
func Open(cfg *config.Config) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.StoreURI)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(cfg.StoreMaxOpenConns)
	db.SetMaxIdleConns(cfg.StoreMaxIdleConns)
	db.SetConnMaxLifetime(cfg.StoreConnMaxLifetime)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}
