package grc

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"grcflow/pkg/platform/sentinel"
)

type InMemoryStoreSuite struct {
	suite.Suite
	store *InMemoryStore
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.store = NewInMemoryStore()
}

func (s *InMemoryStoreSuite) TestSaveAndFind() {
	ctx := context.Background()
	r := Record{ID: uuid.Must(uuid.NewV7()), RequestID: "req-1", Status: StatusProcessed, Details: "ok", CreatedAt: time.Now().UTC()}
	s.Require().NoError(s.store.Save(ctx, r))

	found, err := s.store.FindByID(ctx, r.ID)
	s.Require().NoError(err)
	s.Equal(r, found)
}

func (s *InMemoryStoreSuite) TestFindMissing() {
	_, err := s.store.FindByID(context.Background(), uuid.New())
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *InMemoryStoreSuite) TestListOrdersByCreation() {
	ctx := context.Background()
	base := time.Now().UTC()
	second := Record{ID: uuid.New(), RequestID: "req-2", CreatedAt: base.Add(time.Second)}
	first := Record{ID: uuid.New(), RequestID: "req-1", CreatedAt: base}
	s.Require().NoError(s.store.Save(ctx, second))
	s.Require().NoError(s.store.Save(ctx, first))

	all, err := s.store.List(ctx)
	s.Require().NoError(err)
	s.Require().Len(all, 2)
	s.Equal("req-1", all[0].RequestID)
	s.Equal("req-2", all[1].RequestID)
}

func (s *InMemoryStoreSuite) TestDelete() {
	ctx := context.Background()
	r := Record{ID: uuid.New(), RequestID: "req-1", CreatedAt: time.Now().UTC()}
	s.Require().NoError(s.store.Save(ctx, r))

	s.Require().NoError(s.store.Delete(ctx, r.ID))
	_, err := s.store.FindByID(ctx, r.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)

	s.ErrorIs(s.store.Delete(ctx, r.ID), sentinel.ErrNotFound)
}
