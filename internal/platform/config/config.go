// Package config provides service configuration through environment variables.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/allisson/go-env"
	"github.com/joho/godotenv"
)

// Config holds everything the four services need. Each service reads only
// its own section; Broker/StoreURI are shared by convention, group ids are
// per service so every group sees the full stream.
type Config struct {
	// HTTPAddr is the listen address of the service started by the current
	// subcommand.
	HTTPAddr string

	// Brokers is a comma-separated list of bus broker addresses.
	Brokers string

	// StoreURI is the postgres connection string. Empty selects the
	// in-memory stores.
	StoreURI string
	// StoreMaxOpenConns bounds the database/sql pool.
	StoreMaxOpenConns int
	// StoreMaxIdleConns bounds idle pooled connections.
	StoreMaxIdleConns int
	// StoreConnMaxLifetime is the maximum reuse time of one connection.
	StoreConnMaxLifetime time.Duration

	// RedisURL enables the auditor's seen-event cache when non-empty.
	RedisURL string
	// DedupTTL is how long the auditor remembers an event id.
	DedupTTL time.Duration

	// Consumer group ids, one per consuming service.
	CoordinatorGroupID string
	WorkerGroupID      string
	NotifierGroupID    string
	AuditorGroupID     string

	// HandlerMaxAttempts caps in-place retries of a failing handler before
	// the record is routed to dead-letter.
	HandlerMaxAttempts int
	// HandlerBackoffInitial is the first retry delay.
	HandlerBackoffInitial time.Duration
	// HandlerBackoffMax bounds the exponential retry delay.
	HandlerBackoffMax time.Duration

	// LogLevel is one of debug, info, warn, error.
	LogLevel string
}

// Load reads configuration from the environment, with a .env file as a
// development convenience.
func Load() *Config {
	loadDotEnv()

	return &Config{
		HTTPAddr: env.GetString("GRCFLOW_HTTP_ADDR", ":8080"),

		Brokers: env.GetString("GRCFLOW_BROKERS", "localhost:9092"),

		StoreURI:             env.GetString("GRCFLOW_STORE_URI", ""),
		StoreMaxOpenConns:    env.GetInt("GRCFLOW_STORE_MAX_OPEN_CONNS", 25),
		StoreMaxIdleConns:    env.GetInt("GRCFLOW_STORE_MAX_IDLE_CONNS", 5),
		StoreConnMaxLifetime: env.GetDuration("GRCFLOW_STORE_CONN_MAX_LIFETIME", 5, time.Minute),

		RedisURL: env.GetString("GRCFLOW_REDIS_URL", ""),
		DedupTTL: env.GetDuration("GRCFLOW_DEDUP_TTL", 24, time.Hour),

		CoordinatorGroupID: env.GetString("GRCFLOW_COORDINATOR_GROUP_ID", "requests-group"),
		WorkerGroupID:      env.GetString("GRCFLOW_WORKER_GROUP_ID", "grc-group"),
		NotifierGroupID:    env.GetString("GRCFLOW_NOTIFIER_GROUP_ID", "notification-group"),
		AuditorGroupID:     env.GetString("GRCFLOW_AUDITOR_GROUP_ID", "audit-group"),

		HandlerMaxAttempts:    env.GetInt("GRCFLOW_HANDLER_MAX_ATTEMPTS", 5),
		HandlerBackoffInitial: env.GetDuration("GRCFLOW_HANDLER_BACKOFF_INITIAL_MS", 200, time.Millisecond),
		HandlerBackoffMax:     env.GetDuration("GRCFLOW_HANDLER_BACKOFF_MAX_SECONDS", 30, time.Second),

		LogLevel: env.GetString("GRCFLOW_LOG_LEVEL", "info"),
	}
}

// BrokerList splits the comma-separated broker string for clients that want
// a slice.
func (c *Config) BrokerList() []string {
	var out []string
	for _, b := range strings.Split(c.Brokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}

// loadDotEnv walks up from the working directory looking for a .env file so
// commands work from any package directory during development.
func loadDotEnv() {
	dir, err := os.Getwd()
	if err != nil {
		return
	}
	for {
		candidate := filepath.Join(dir, ".env")
		if _, err := os.Stat(candidate); err == nil {
			_ = godotenv.Load(candidate)
			return
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return
		}
		dir = parent
	}
}
