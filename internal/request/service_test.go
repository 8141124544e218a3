package request

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"grcflow/internal/event"
	"grcflow/internal/platform/kafka/kafkatest"
	"grcflow/pkg/platform/sentinel"
)

type ServiceSuite struct {
	suite.Suite
	store   *InMemoryStore
	bus     *kafkatest.Bus
	service *Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.store = NewInMemoryStore()
	s.bus = kafkatest.NewBus()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.service = NewService(s.store, s.bus, logger)
}

func (s *ServiceSuite) lifecyclePayload(e event.Event) event.RequestPayload {
	var p event.RequestPayload
	s.Require().NoError(json.Unmarshal(e.Payload, &p))
	return p
}

func (s *ServiceSuite) TestCreate() {
	ctx := context.Background()

	s.Run("persists pending and publishes created event", func() {
		r, err := s.service.Create(ctx, CreateInput{Title: "Access review", Description: "Quarterly review"})
		s.Require().NoError(err)
		s.Equal(StatusPending, r.Status)
		s.NotEqual(uuid.Nil, r.ID)

		stored, err := s.store.FindByID(ctx, r.ID)
		s.Require().NoError(err)
		s.Equal(r.Title, stored.Title)

		published := s.bus.Published(event.TopicRequestLifecycle)
		s.Require().Len(published, 1)
		s.Equal(r.ID.String(), published[0].Key)

		p := s.lifecyclePayload(published[0])
		s.Equal(event.ActionCreated, p.Action)
		s.Equal("Access review", p.Title)
		s.Equal(string(StatusPending), p.Status)
	})

	s.Run("rejects missing title", func() {
		_, err := s.service.Create(ctx, CreateInput{Description: "no title"})
		s.ErrorIs(err, sentinel.ErrInvalidInput)
		s.Empty(s.bus.Published(event.TopicRequestLifecycle))
	})

	s.Run("rejects missing description", func() {
		_, err := s.service.Create(ctx, CreateInput{Title: "no description"})
		s.ErrorIs(err, sentinel.ErrInvalidInput)
	})
}

func (s *ServiceSuite) TestCreatePublishFailureKeepsEntity() {
	ctx := context.Background()
	s.bus.FailPublish = errors.New("broker unreachable")

	_, err := s.service.Create(ctx, CreateInput{Title: "Orphaned", Description: "persisted but unannounced"})
	s.Require().Error(err)

	// The entity stays persisted; the lifecycle event is simply lost.
	all, listErr := s.store.List(ctx)
	s.Require().NoError(listErr)
	s.Require().Len(all, 1)
	s.Equal("Orphaned", all[0].Title)
	s.Empty(s.bus.Published(event.TopicRequestLifecycle))
}

func (s *ServiceSuite) TestUpdate() {
	ctx := context.Background()
	created, err := s.service.Create(ctx, CreateInput{Title: "Before", Description: "Original"})
	s.Require().NoError(err)

	s.Run("merges provided fields and publishes updated event", func() {
		updated, err := s.service.Update(ctx, created.ID, UpdateInput{Title: "After"})
		s.Require().NoError(err)
		s.Equal("After", updated.Title)
		s.Equal("Original", updated.Description)

		published := s.bus.Published(event.TopicRequestLifecycle)
		s.Require().Len(published, 2)
		p := s.lifecyclePayload(published[1])
		s.Equal(event.ActionUpdated, p.Action)
		s.Equal("After", p.Title)
	})

	s.Run("unknown id returns not found", func() {
		_, err := s.service.Update(ctx, uuid.New(), UpdateInput{Title: "x"})
		s.ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *ServiceSuite) TestDelete() {
	ctx := context.Background()
	created, err := s.service.Create(ctx, CreateInput{Title: "Doomed", Description: "To be removed"})
	s.Require().NoError(err)

	s.Run("removes entity and publishes deleted event", func() {
		deleted, err := s.service.Delete(ctx, created.ID)
		s.Require().NoError(err)
		s.Equal(StatusDeleted, deleted.Status)

		_, err = s.store.FindByID(ctx, created.ID)
		s.ErrorIs(err, sentinel.ErrNotFound)

		published := s.bus.Published(event.TopicRequestLifecycle)
		s.Require().Len(published, 2)
		p := s.lifecyclePayload(published[1])
		s.Equal(event.ActionDeleted, p.Action)
		s.Equal(string(StatusDeleted), p.Status)
	})

	s.Run("unknown id returns not found", func() {
		_, err := s.service.Delete(ctx, uuid.New())
		s.ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *ServiceSuite) TestGetAndList() {
	ctx := context.Background()
	first, err := s.service.Create(ctx, CreateInput{Title: "First", Description: "a"})
	s.Require().NoError(err)
	_, err = s.service.Create(ctx, CreateInput{Title: "Second", Description: "b"})
	s.Require().NoError(err)

	got, err := s.service.Get(ctx, first.ID)
	s.Require().NoError(err)
	s.Equal("First", got.Title)

	all, err := s.service.List(ctx)
	s.Require().NoError(err)
	s.Require().Len(all, 2)
	s.Equal("First", all[0].Title)
	s.Equal("Second", all[1].Title)
}
