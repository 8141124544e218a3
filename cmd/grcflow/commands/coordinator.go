package commands

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"grcflow/internal/event"
	"grcflow/internal/platform/kafka/admin"
	"grcflow/internal/platform/kafka/consumer"
	"grcflow/internal/platform/kafka/producer"
	"grcflow/internal/request"
	requesthandler "grcflow/internal/request/handler"
)

// RunCoordinator starts the request coordinator: the CRUD API that publishes
// lifecycle events, plus the consumer that folds worker results and
// dead-letters back into request status.
func RunCoordinator(ctx context.Context, version string) error {
	rt, err := newRuntime("request-coordinator", version)
	if err != nil {
		return err
	}
	defer rt.close()

	ctx, stop := signalContext(ctx)
	defer stop()

	if err := admin.EnsureTopics(ctx, rt.cfg.BrokerList(), event.Topics()...); err != nil {
		return fmt.Errorf("ensure topics: %w", err)
	}

	var store request.Store
	if rt.db != nil {
		store = request.NewPostgresStore(rt.db)
	} else {
		store = request.NewInMemoryStore()
	}

	prod, err := producer.New(rt.cfg.BrokerList(), rt.logger, rt.metrics)
	if err != nil {
		return fmt.Errorf("create producer: %w", err)
	}
	defer prod.Close()

	service := request.NewService(store, prod, rt.logger)

	status := request.NewStatusHandler(store, rt.logger)
	busRouter := consumer.NewRouter(rt.logger, nil)
	busRouter.Register(event.TopicWorkerResult, status)
	busRouter.Register(event.TopicDeadLetter, status)

	cons, err := consumer.New(
		consumerConfig(rt.cfg, rt.cfg.CoordinatorGroupID, event.TopicWorkerResult, event.TopicDeadLetter),
		busRouter,
		prod,
		rt.logger,
		rt.metrics,
	)
	if err != nil {
		return fmt.Errorf("create consumer: %w", err)
	}
	defer cons.Close()

	router := newRouter(rt.logger)
	requesthandler.New(service, rt.logger).Register(router)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return runConsumer(ctx, cons) })
	g.Go(func() error { return serveHTTP(ctx, rt.cfg.HTTPAddr, router, rt.logger) })
	return g.Wait()
}
