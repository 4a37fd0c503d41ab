package storage

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"support-desk/internal/models"

	"github.com/google/uuid"
)

// MemoryStore keeps submissions in process memory. Used when no database
// host is configured and throughout the test suites.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]*models.Submission
	order []string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		items: make(map[string]*models.Submission),
	}
}

func (s *MemoryStore) Create(_ context.Context, sub *models.Submission) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.New().String()
	sub.ID = id
	sub.CreatedAt = time.Now().UTC()

	stored := *sub
	s.items[id] = &stored
	s.order = append(s.order, id)

	return id, nil
}

func (s *MemoryStore) GetByID(_ context.Context, id string) (*models.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sub, ok := s.items[id]
	if !ok {
		return nil, ErrNotFound
	}

	out := *sub
	return &out, nil
}

func (s *MemoryStore) List(_ context.Context, limit int) ([]*models.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Submission, 0, limit)
	for i := len(s.order) - 1; i >= 0 && len(out) < limit; i-- {
		sub := *s.items[s.order[i]]
		out = append(out, &sub)
	}
	return out, nil
}

func (s *MemoryStore) AttachFailureRecord(_ context.Context, id string, payload json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub, ok := s.items[id]
	if !ok {
		return ErrNotFound
	}

	sub.ForwardError = append(json.RawMessage(nil), payload...)
	return nil
}
