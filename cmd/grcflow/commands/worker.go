package commands

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"grcflow/internal/event"
	"grcflow/internal/grc"
	grchandler "grcflow/internal/grc/handler"
	"grcflow/internal/platform/kafka/admin"
	"grcflow/internal/platform/kafka/consumer"
	"grcflow/internal/platform/kafka/producer"
)

// RunWorker starts the GRC compliance worker: it consumes request lifecycle
// events, runs the compliance check, and publishes the outcome.
func RunWorker(ctx context.Context, version string) error {
	rt, err := newRuntime("grc-worker", version)
	if err != nil {
		return err
	}
	defer rt.close()

	ctx, stop := signalContext(ctx)
	defer stop()

	if err := admin.EnsureTopics(ctx, rt.cfg.BrokerList(), event.Topics()...); err != nil {
		return fmt.Errorf("ensure topics: %w", err)
	}

	var store grc.Store
	if rt.db != nil {
		store = grc.NewPostgresStore(rt.db)
	} else {
		store = grc.NewInMemoryStore()
	}

	prod, err := producer.New(rt.cfg.BrokerList(), rt.logger, rt.metrics)
	if err != nil {
		return fmt.Errorf("create producer: %w", err)
	}
	defer prod.Close()

	worker := grc.NewWorker(grc.DefaultCheck, store, prod, rt.logger)
	cons, err := consumer.New(
		consumerConfig(rt.cfg, rt.cfg.WorkerGroupID, event.TopicRequestLifecycle),
		worker,
		prod,
		rt.logger,
		rt.metrics,
	)
	if err != nil {
		return fmt.Errorf("create consumer: %w", err)
	}
	defer cons.Close()

	router := newRouter(rt.logger)
	grchandler.New(store, rt.logger).Register(router)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return runConsumer(ctx, cons) })
	g.Go(func() error { return serveHTTP(ctx, rt.cfg.HTTPAddr, router, rt.logger) })
	return g.Wait()
}
