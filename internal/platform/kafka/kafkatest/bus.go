// Package kafkatest provides an in-memory bus for tests. Publishing delivers
// synchronously to every subscribed group, which keeps end-to-end pipeline
// tests deterministic without a broker.
package kafkatest

import (
	"context"
	"sync"

	"grcflow/internal/event"
	"grcflow/internal/platform/kafka/consumer"
)

type subscription struct {
	group   string
	handler consumer.Handler
	topics  map[string]bool
}

// Bus is an in-memory stand-in for the broker plus every consumer group.
type Bus struct {
	mu        sync.Mutex
	subs      []*subscription
	published map[string][]event.Event
	offsets   map[string]int64

	// FailPublish, when set, makes every Publish call fail with this error.
	// Used to exercise bus-outage paths.
	FailPublish error

	// HandlerErrs collects errors returned by subscribed handlers, keyed by
	// group. The real bus would redeliver these records; tests assert on
	// them instead.
	HandlerErrs map[string][]error
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{
		published:   make(map[string][]event.Event),
		offsets:     make(map[string]int64),
		HandlerErrs: make(map[string][]error),
	}
}

// Subscribe registers a handler for a group over the given topics.
func (b *Bus) Subscribe(group string, handler consumer.Handler, topics ...string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	sub := &subscription{group: group, handler: handler, topics: make(map[string]bool)}
	for _, t := range topics {
		sub.topics[t] = true
	}
	b.subs = append(b.subs, sub)
}

// Publish appends the event to its topic and fans it out to every
// subscribed group, synchronously and in subscription order.
func (b *Bus) Publish(ctx context.Context, e event.Event) error {
	b.mu.Lock()
	if b.FailPublish != nil {
		err := b.FailPublish
		b.mu.Unlock()
		return err
	}
	b.published[e.Topic] = append(b.published[e.Topic], e)
	offset := b.offsets[e.Topic]
	b.offsets[e.Topic] = offset + 1
	subs := make([]*subscription, len(b.subs))
	copy(subs, b.subs)
	b.mu.Unlock()

	value, err := e.Encode()
	if err != nil {
		return err
	}
	msg := &consumer.Message{
		Topic:   e.Topic,
		Key:     []byte(e.Key),
		Value:   value,
		Offset:  offset,
		Attempt: 1,
	}
	for _, sub := range subs {
		if !sub.topics[e.Topic] {
			continue
		}
		if err := sub.handler.Handle(ctx, msg); err != nil {
			b.mu.Lock()
			b.HandlerErrs[sub.group] = append(b.HandlerErrs[sub.group], err)
			b.mu.Unlock()
		}
	}
	return nil
}

// Redeliver hands an already-published event to one group again, simulating
// an at-least-once duplicate delivery.
func (b *Bus) Redeliver(ctx context.Context, group string, e event.Event) error {
	b.mu.Lock()
	subs := make([]*subscription, len(b.subs))
	copy(subs, b.subs)
	b.mu.Unlock()

	value, err := e.Encode()
	if err != nil {
		return err
	}
	msg := &consumer.Message{Topic: e.Topic, Key: []byte(e.Key), Value: value, Attempt: 2}
	for _, sub := range subs {
		if sub.group != group || !sub.topics[e.Topic] {
			continue
		}
		return sub.handler.Handle(ctx, msg)
	}
	return nil
}

// Published returns every event published to a topic, in order.
func (b *Bus) Published(topic string) []event.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]event.Event, len(b.published[topic]))
	copy(out, b.published[topic])
	return out
}
