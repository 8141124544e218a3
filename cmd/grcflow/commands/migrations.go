package commands

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"grcflow/internal/platform/config"
	"grcflow/internal/platform/logger"
)

// RunMigrations applies all pending schema migrations. Returns nil when the
// schema is already current.
func RunMigrations() error {
	cfg := config.Load()
	log := logger.New("migrate", cfg.LogLevel)

	if cfg.StoreURI == "" {
		return errors.New("GRCFLOW_STORE_URI must be set to run migrations")
	}

	m, err := migrate.New("file://migrations/postgres", cfg.StoreURI)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}
	defer func() {
		srcErr, dbErr := m.Close()
		if srcErr != nil {
			log.Error("close migration source", "error", srcErr)
		}
		if dbErr != nil {
			log.Error("close migration database", "error", dbErr)
		}
	}()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("run migrations: %w", err)
	}

	log.Info("migrations completed")
	return nil
}
