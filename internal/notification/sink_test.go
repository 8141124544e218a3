package notification

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grcflow/internal/event"
	"grcflow/internal/platform/kafka/consumer"
)

func newSink(t *testing.T) (*InMemoryStore, *Sink) {
	t.Helper()
	store := NewInMemoryStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return store, NewSink(store, logger)
}

func encodedMessage(t *testing.T, topic string, payload any) *consumer.Message {
	t.Helper()
	e, err := event.New(topic, "req-1", payload)
	require.NoError(t, err)
	value, err := e.Encode()
	require.NoError(t, err)
	return &consumer.Message{Topic: topic, Key: []byte("req-1"), Value: value, Attempt: 1}
}

func TestSinkRecordsProcessedNotification(t *testing.T) {
	store, sink := newSink(t)
	msg := encodedMessage(t, event.TopicWorkerResult, event.ResultPayload{RequestID: "req-1", Status: "Processed"})

	require.NoError(t, sink.Handle(context.Background(), msg))

	records, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, MessageProcessed, records[0].Message)
	assert.JSONEq(t, `{"requestId":"req-1","status":"Processed","details":""}`, string(records[0].Details))
}

func TestSinkRecordsAlertNotification(t *testing.T) {
	store, sink := newSink(t)
	msg := encodedMessage(t, event.TopicDeadLetter, event.DeadLetterPayload{Reason: "no description"})

	require.NoError(t, sink.Handle(context.Background(), msg))

	records, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, MessageAlert, records[0].Message)
}

func TestSinkIgnoresOtherTopics(t *testing.T) {
	store, sink := newSink(t)
	msg := encodedMessage(t, event.TopicRequestLifecycle, event.RequestPayload{ID: "req-1"})

	require.NoError(t, sink.Handle(context.Background(), msg))

	records, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestSinkMalformedEventCommits(t *testing.T) {
	store, sink := newSink(t)
	msg := &consumer.Message{Topic: event.TopicWorkerResult, Key: []byte("k"), Value: []byte("broken")}

	assert.NoError(t, sink.Handle(context.Background(), msg))

	records, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)
}

type failingNotificationStore struct {
	Store
	err error
}

func (s failingNotificationStore) Save(context.Context, Record) error { return s.err }

func TestSinkStoreFailurePropagates(t *testing.T) {
	storeErr := errors.New("connection reset")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sink := NewSink(failingNotificationStore{Store: NewInMemoryStore(), err: storeErr}, logger)

	msg := encodedMessage(t, event.TopicWorkerResult, event.ResultPayload{RequestID: "req-1"})
	assert.ErrorIs(t, sink.Handle(context.Background(), msg), storeErr)
}
