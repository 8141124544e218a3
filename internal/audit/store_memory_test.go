package audit

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
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

func (s *InMemoryStoreSuite) TestAppendAndList() {
	ctx := context.Background()
	r := Record{
		EventID:    uuid.Must(uuid.NewV7()),
		Action:     "worker-result",
		Details:    json.RawMessage(`{"requestId":"req-1"}`),
		RecordedAt: time.Now().UTC(),
	}
	s.Require().NoError(s.store.Append(ctx, r))

	all, err := s.store.List(ctx)
	s.Require().NoError(err)
	s.Require().Len(all, 1)
	s.Equal(r.EventID, all[0].EventID)
}

func (s *InMemoryStoreSuite) TestAppendSameEventIDReturnsDuplicate() {
	ctx := context.Background()
	r := Record{EventID: uuid.Must(uuid.NewV7()), Action: "worker-result", RecordedAt: time.Now().UTC()}
	s.Require().NoError(s.store.Append(ctx, r))

	err := s.store.Append(ctx, r)
	s.ErrorIs(err, ErrDuplicate)

	all, listErr := s.store.List(ctx)
	s.Require().NoError(listErr)
	s.Len(all, 1)
}

func (s *InMemoryStoreSuite) TestListOrdersByRecordedAt() {
	ctx := context.Background()
	base := time.Now().UTC()
	later := Record{EventID: uuid.New(), Action: "b", RecordedAt: base.Add(time.Second)}
	earlier := Record{EventID: uuid.New(), Action: "a", RecordedAt: base}
	s.Require().NoError(s.store.Append(ctx, later))
	s.Require().NoError(s.store.Append(ctx, earlier))

	all, err := s.store.List(ctx)
	s.Require().NoError(err)
	s.Require().Len(all, 2)
	s.Equal("a", all[0].Action)
	s.Equal("b", all[1].Action)
}
