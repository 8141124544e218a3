//go:build integration

package audit_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"grcflow/internal/audit"
	"grcflow/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *audit.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	s.store = audit.NewPostgresStore(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "audit_records"))
}

func newAuditRecord() audit.Record {
	return audit.Record{
		EventID:    uuid.Must(uuid.NewV7()),
		Action:     "worker-result",
		Details:    json.RawMessage(`{"requestId":"req-1"}`),
		RecordedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
}

func (s *PostgresStoreSuite) TestAppendAndList() {
	ctx := context.Background()
	r := newAuditRecord()
	s.Require().NoError(s.store.Append(ctx, r))

	all, err := s.store.List(ctx)
	s.Require().NoError(err)
	s.Require().Len(all, 1)
	s.Equal(r.EventID, all[0].EventID)
	s.JSONEq(string(r.Details), string(all[0].Details))
}

func (s *PostgresStoreSuite) TestReplayReturnsDuplicate() {
	ctx := context.Background()
	r := newAuditRecord()
	s.Require().NoError(s.store.Append(ctx, r))
	s.ErrorIs(s.store.Append(ctx, r), audit.ErrDuplicate)

	all, err := s.store.List(ctx)
	s.Require().NoError(err)
	s.Len(all, 1)
}

// TestConcurrentRedelivery verifies that concurrent appends of the same
// event id result in exactly one row, which is what makes at-least-once
// consumption safe without coordination between auditor replicas.
func (s *PostgresStoreSuite) TestConcurrentRedelivery() {
	ctx := context.Background()
	r := newAuditRecord()
	const goroutines = 50

	var wg sync.WaitGroup
	var successCount, duplicateCount atomic.Int32

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.store.Append(ctx, r)
			if err == nil {
				successCount.Add(1)
			} else if errors.Is(err, audit.ErrDuplicate) {
				duplicateCount.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), successCount.Load(), "exactly one append should succeed")
	s.Equal(int32(goroutines-1), duplicateCount.Load())

	all, err := s.store.List(ctx)
	s.Require().NoError(err)
	s.Len(all, 1)
}
