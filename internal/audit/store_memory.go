package audit

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// InMemoryStore keeps records keyed by event id, which gives the same
// idempotence the postgres store gets from its primary key.
type InMemoryStore struct {
	mu      sync.RWMutex
	records map[uuid.UUID]Record
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{records: make(map[uuid.UUID]Record)}
}

func (s *InMemoryStore) Append(_ context.Context, r Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[r.EventID]; ok {
		return ErrDuplicate
	}
	s.records[r.EventID] = r
	return nil
}

func (s *InMemoryStore) List(_ context.Context) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Record, 0, len(s.records))
	for _, r := range s.records {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RecordedAt.Before(out[j].RecordedAt) })
	return out, nil
}
