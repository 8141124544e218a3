//go:build integration

package request_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"grcflow/internal/request"
	"grcflow/pkg/platform/sentinel"
	"grcflow/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *request.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	s.store = request.NewPostgresStore(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "requests"))
}

func newStoredRequest(title string) request.Request {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return request.Request{
		ID:          uuid.Must(uuid.NewV7()),
		Title:       title,
		Description: "integration",
		Status:      request.StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func (s *PostgresStoreSuite) TestSaveFindRoundTrip() {
	ctx := context.Background()
	r := newStoredRequest("round trip")
	s.Require().NoError(s.store.Save(ctx, r))

	found, err := s.store.FindByID(ctx, r.ID)
	s.Require().NoError(err)
	s.Equal(r.ID, found.ID)
	s.Equal(r.Title, found.Title)
	s.Equal(r.Status, found.Status)
}

func (s *PostgresStoreSuite) TestSaveIsUpsert() {
	ctx := context.Background()
	r := newStoredRequest("before")
	s.Require().NoError(s.store.Save(ctx, r))

	r.Title = "after"
	s.Require().NoError(s.store.Save(ctx, r))

	found, err := s.store.FindByID(ctx, r.ID)
	s.Require().NoError(err)
	s.Equal("after", found.Title)

	all, err := s.store.List(ctx)
	s.Require().NoError(err)
	s.Len(all, 1)
}

func (s *PostgresStoreSuite) TestUpdateStatusAndDelete() {
	ctx := context.Background()
	r := newStoredRequest("status")
	s.Require().NoError(s.store.Save(ctx, r))

	s.Require().NoError(s.store.UpdateStatus(ctx, r.ID, request.StatusProcessed))
	found, err := s.store.FindByID(ctx, r.ID)
	s.Require().NoError(err)
	s.Equal(request.StatusProcessed, found.Status)

	s.Require().NoError(s.store.Delete(ctx, r.ID))
	_, err = s.store.FindByID(ctx, r.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestMissingRowsMapToNotFound() {
	ctx := context.Background()
	id := uuid.New()

	_, err := s.store.FindByID(ctx, id)
	s.ErrorIs(err, sentinel.ErrNotFound)
	s.ErrorIs(s.store.UpdateStatus(ctx, id, request.StatusFailed), sentinel.ErrNotFound)
	s.ErrorIs(s.store.Delete(ctx, id), sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestListOrdersByCreation() {
	ctx := context.Background()
	first := newStoredRequest("first")
	second := newStoredRequest("second")
	second.CreatedAt = first.CreatedAt.Add(time.Second)
	s.Require().NoError(s.store.Save(ctx, second))
	s.Require().NoError(s.store.Save(ctx, first))

	all, err := s.store.List(ctx)
	s.Require().NoError(err)
	s.Require().Len(all, 2)
	s.Equal("first", all[0].Title)
	s.Equal("second", all[1].Title)
}
