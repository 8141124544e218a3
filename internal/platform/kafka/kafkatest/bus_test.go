package kafkatest

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grcflow/internal/event"
	"grcflow/internal/platform/kafka/consumer"
)

func TestBusFansOutToSubscribedGroups(t *testing.T) {
	bus := NewBus()

	var groupA, groupB []string
	bus.Subscribe("group-a", consumer.HandlerFunc(func(_ context.Context, msg *consumer.Message) error {
		groupA = append(groupA, msg.Topic)
		return nil
	}), event.TopicWorkerResult)
	bus.Subscribe("group-b", consumer.HandlerFunc(func(_ context.Context, msg *consumer.Message) error {
		groupB = append(groupB, msg.Topic)
		return nil
	}), event.TopicWorkerResult, event.TopicDeadLetter)

	result, err := event.New(event.TopicWorkerResult, "req-1", event.ResultPayload{RequestID: "req-1"})
	require.NoError(t, err)
	require.NoError(t, bus.Publish(context.Background(), result))

	dead, err := event.New(event.TopicDeadLetter, "req-2", event.DeadLetterPayload{Reason: "x"})
	require.NoError(t, err)
	require.NoError(t, bus.Publish(context.Background(), dead))

	// Each group sees only its subscribed topics.
	assert.Equal(t, []string{event.TopicWorkerResult}, groupA)
	assert.Equal(t, []string{event.TopicWorkerResult, event.TopicDeadLetter}, groupB)

	assert.Len(t, bus.Published(event.TopicWorkerResult), 1)
	assert.Len(t, bus.Published(event.TopicDeadLetter), 1)
}

func TestBusFailPublish(t *testing.T) {
	bus := NewBus()
	bus.FailPublish = errors.New("broker unreachable")

	e, err := event.New(event.TopicRequestLifecycle, "req-1", event.RequestPayload{ID: "req-1"})
	require.NoError(t, err)

	err = bus.Publish(context.Background(), e)
	assert.ErrorIs(t, err, bus.FailPublish)
	assert.Empty(t, bus.Published(event.TopicRequestLifecycle))
}

func TestBusCollectsHandlerErrors(t *testing.T) {
	bus := NewBus()
	handlerErr := errors.New("store down")
	bus.Subscribe("flaky", consumer.HandlerFunc(func(context.Context, *consumer.Message) error {
		return handlerErr
	}), event.TopicWorkerResult)

	e, err := event.New(event.TopicWorkerResult, "req-1", event.ResultPayload{RequestID: "req-1"})
	require.NoError(t, err)
	require.NoError(t, bus.Publish(context.Background(), e))

	require.Len(t, bus.HandlerErrs["flaky"], 1)
	assert.ErrorIs(t, bus.HandlerErrs["flaky"][0], handlerErr)
}

func TestBusRedeliverTargetsOneGroup(t *testing.T) {
	bus := NewBus()

	deliveries := map[string]int{}
	for _, group := range []string{"group-a", "group-b"} {
		group := group
		bus.Subscribe(group, consumer.HandlerFunc(func(context.Context, *consumer.Message) error {
			deliveries[group]++
			return nil
		}), event.TopicWorkerResult)
	}

	e, err := event.New(event.TopicWorkerResult, "req-1", event.ResultPayload{RequestID: "req-1"})
	require.NoError(t, err)
	require.NoError(t, bus.Publish(context.Background(), e))
	require.NoError(t, bus.Redeliver(context.Background(), "group-a", e))

	assert.Equal(t, 2, deliveries["group-a"])
	assert.Equal(t, 1, deliveries["group-b"])
}
