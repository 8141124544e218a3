package request

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"grcflow/pkg/platform/sentinel"
)

// InMemoryStore keeps the initial implementation lightweight and testable.
// It intentionally favors clarity over performance.
type InMemoryStore struct {
	mu       sync.RWMutex
	requests map[uuid.UUID]Request
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{requests: make(map[uuid.UUID]Request)}
}

func (s *InMemoryStore) Save(_ context.Context, r Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests[r.ID] = r
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id uuid.UUID) (Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if r, ok := s.requests[id]; ok {
		return r, nil
	}
	return Request{}, sentinel.ErrNotFound
}

func (s *InMemoryStore) List(_ context.Context) ([]Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Request, 0, len(s.requests))
	for _, r := range s.requests {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *InMemoryStore) UpdateStatus(_ context.Context, id uuid.UUID, status Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.requests[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	r.Status = status
	s.requests[id] = r
	return nil
}

func (s *InMemoryStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.requests[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.requests, id)
	return nil
}
