package commands

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"grcflow/internal/platform/config"
	"grcflow/internal/platform/database"
	"grcflow/internal/platform/httpserver"
	"grcflow/internal/platform/kafka/consumer"
	"grcflow/internal/platform/logger"
	"grcflow/internal/platform/metrics"
)

const shutdownTimeout = 10 * time.Second

// runtime bundles what every service command sets up before wiring its own
// stores and consumers.
type runtime struct {
	cfg     *config.Config
	logger  *slog.Logger
	metrics *metrics.Metrics
	db      *sql.DB
}

// newRuntime loads configuration, builds the service logger, and opens the
// database when a store URI is configured. An empty store URI selects the
// in-memory stores, so rt.db may be nil.
func newRuntime(service, version string) (*runtime, error) {
	cfg := config.Load()
	log := logger.New(service, cfg.LogLevel)
	log.Info("starting", slog.String("version", version))

	rt := &runtime{cfg: cfg, logger: log, metrics: metrics.New()}

	if cfg.StoreURI != "" {
		db, err := database.Open(cfg)
		if err != nil {
			return nil, fmt.Errorf("open store: %w", err)
		}
		rt.db = db
	} else {
		log.Warn("no store uri configured, using in-memory stores")
	}
	return rt, nil
}

func (rt *runtime) close() {
	if rt.db != nil {
		if err := rt.db.Close(); err != nil {
			rt.logger.Error("close store", "error", err)
		}
	}
}

// signalContext derives a context that ends on SIGINT or SIGTERM.
func signalContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
}

// newRouter builds the service mux with the operational endpoints every
// service exposes. Feature handlers mount their own routes on top.
func newRouter(log *slog.Logger) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())
	return r
}

// serveHTTP runs the server until ctx ends, then drains in-flight requests.
func serveHTTP(ctx context.Context, addr string, handler http.Handler, log *slog.Logger) error {
	srv := httpserver.New(addr, handler)

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", slog.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		return <-errCh
	}
}

// consumerConfig fills the consumer settings shared by every service.
func consumerConfig(cfg *config.Config, groupID string, topics ...string) consumer.Config {
	return consumer.Config{
		Brokers:        cfg.BrokerList(),
		GroupID:        groupID,
		Topics:         topics,
		MaxAttempts:    cfg.HandlerMaxAttempts,
		BackoffInitial: cfg.HandlerBackoffInitial,
		BackoffMax:     cfg.HandlerBackoffMax,
	}
}

// runConsumer drives the consumer loop and treats cancellation as a clean
// shutdown.
func runConsumer(ctx context.Context, c *consumer.Consumer) error {
	if err := c.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("consumer: %w", err)
	}
	return nil
}
