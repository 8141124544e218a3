package consumer

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRouterDispatchesByTopic(t *testing.T) {
	var handled []string
	router := NewRouter(discardLogger(), nil)
	router.Register("worker-result", HandlerFunc(func(_ context.Context, msg *Message) error {
		handled = append(handled, "result:"+string(msg.Key))
		return nil
	}))
	router.Register("dead-letter", HandlerFunc(func(_ context.Context, msg *Message) error {
		handled = append(handled, "dead:"+string(msg.Key))
		return nil
	}))

	require.NoError(t, router.Handle(context.Background(), &Message{Topic: "worker-result", Key: []byte("a")}))
	require.NoError(t, router.Handle(context.Background(), &Message{Topic: "dead-letter", Key: []byte("b")}))

	assert.Equal(t, []string{"result:a", "dead:b"}, handled)
}

func TestRouterUnknownTopicCommits(t *testing.T) {
	router := NewRouter(discardLogger(), nil)

	// No handler registered: the message is skipped, not redelivered.
	err := router.Handle(context.Background(), &Message{Topic: "unknown", Key: []byte("a")})
	assert.NoError(t, err)
}

func TestRouterFallback(t *testing.T) {
	var fallbackCalls int
	router := NewRouter(discardLogger(), HandlerFunc(func(context.Context, *Message) error {
		fallbackCalls++
		return nil
	}))

	require.NoError(t, router.Handle(context.Background(), &Message{Topic: "unknown"}))
	assert.Equal(t, 1, fallbackCalls)
}

func TestRouterPropagatesHandlerError(t *testing.T) {
	wantErr := errors.New("store down")
	router := NewRouter(discardLogger(), nil)
	router.Register("worker-result", HandlerFunc(func(context.Context, *Message) error {
		return wantErr
	}))

	err := router.Handle(context.Background(), &Message{Topic: "worker-result"})
	assert.ErrorIs(t, err, wantErr)
}

func TestConfigDefaults(t *testing.T) {
	cfg := Config{Brokers: []string{"localhost:9092"}, GroupID: "g", Topics: []string{"t"}}.withDefaults()

	assert.Equal(t, 5, cfg.MaxAttempts)
	assert.NotZero(t, cfg.BackoffInitial)
	assert.NotZero(t, cfg.BackoffMax)
}
