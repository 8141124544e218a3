package commands

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"grcflow/internal/event"
	"grcflow/internal/notification"
	notificationhandler "grcflow/internal/notification/handler"
	"grcflow/internal/platform/kafka/admin"
	"grcflow/internal/platform/kafka/consumer"
	"grcflow/internal/platform/kafka/producer"
)

// RunNotifier starts the notification service: it consumes worker results
// and dead-letters and records a notification for each.
func RunNotifier(ctx context.Context, version string) error {
	rt, err := newRuntime("notifier", version)
	if err != nil {
		return err
	}
	defer rt.close()

	ctx, stop := signalContext(ctx)
	defer stop()

	if err := admin.EnsureTopics(ctx, rt.cfg.BrokerList(), event.Topics()...); err != nil {
		return fmt.Errorf("ensure topics: %w", err)
	}

	var store notification.Store
	if rt.db != nil {
		store = notification.NewPostgresStore(rt.db)
	} else {
		store = notification.NewInMemoryStore()
	}

	// The notifier publishes nothing of its own; the producer is only the
	// dead-letter route for records whose handler keeps failing.
	prod, err := producer.New(rt.cfg.BrokerList(), rt.logger, rt.metrics)
	if err != nil {
		return fmt.Errorf("create producer: %w", err)
	}
	defer prod.Close()

	sink := notification.NewSink(store, rt.logger)
	busRouter := consumer.NewRouter(rt.logger, nil)
	busRouter.Register(event.TopicWorkerResult, sink)
	busRouter.Register(event.TopicDeadLetter, sink)

	cons, err := consumer.New(
		consumerConfig(rt.cfg, rt.cfg.NotifierGroupID, event.TopicWorkerResult, event.TopicDeadLetter),
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
	notificationhandler.New(store, rt.logger).Register(router)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return runConsumer(ctx, cons) })
	g.Go(func() error { return serveHTTP(ctx, rt.cfg.HTTPAddr, router, rt.logger) })
	return g.Wait()
}
