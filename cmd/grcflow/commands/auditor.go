package commands

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"grcflow/internal/audit"
	audithandler "grcflow/internal/audit/handler"
	"grcflow/internal/event"
	"grcflow/internal/platform/kafka/admin"
	"grcflow/internal/platform/kafka/consumer"
	"grcflow/internal/platform/kafka/producer"
	platformredis "grcflow/internal/platform/redis"
)

// RunAuditor starts the audit trail service: it consumes every topic and
// appends one record per distinct event id.
func RunAuditor(ctx context.Context, version string) error {
	rt, err := newRuntime("auditor", version)
	if err != nil {
		return err
	}
	defer rt.close()

	ctx, stop := signalContext(ctx)
	defer stop()

	if err := admin.EnsureTopics(ctx, rt.cfg.BrokerList(), event.Topics()...); err != nil {
		return fmt.Errorf("ensure topics: %w", err)
	}

	var store audit.Store
	if rt.db != nil {
		store = audit.NewPostgresStore(rt.db)
	} else {
		store = audit.NewInMemoryStore()
	}

	// The seen-cache is optional; without redis the store's event id
	// constraint still suppresses duplicates.
	var seen *audit.SeenCache
	redisClient, err := platformredis.New(rt.cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	if redisClient != nil {
		defer func() { _ = redisClient.Close() }()
		seen = audit.NewSeenCache(redisClient.Client, rt.cfg.DedupTTL)
	}

	prod, err := producer.New(rt.cfg.BrokerList(), rt.logger, rt.metrics)
	if err != nil {
		return fmt.Errorf("create producer: %w", err)
	}
	defer prod.Close()

	recorder := audit.NewRecorder(store, seen, rt.logger, rt.metrics)
	cons, err := consumer.New(
		consumerConfig(rt.cfg, rt.cfg.AuditorGroupID, event.Topics()...),
		recorder,
		prod,
		rt.logger,
		rt.metrics,
	)
	if err != nil {
		return fmt.Errorf("create consumer: %w", err)
	}
	defer cons.Close()

	router := newRouter(rt.logger)
	audithandler.New(store, rt.logger).Register(router)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return runConsumer(ctx, cons) })
	g.Go(func() error { return serveHTTP(ctx, rt.cfg.HTTPAddr, router, rt.logger) })
	return g.Wait()
}
