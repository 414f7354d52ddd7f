package request

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ErickCaburnay/B-Sphere-sub001/internal/request/models"
	"github.com/ErickCaburnay/B-Sphere-sub001/pkg/platform/sentinel"
)

// MemoryStore implements the request store in-process. The mutex gives
// MarkStatusIfPending the same check-and-write atomicity the postgres store
// gets from its conditional UPDATE.
type MemoryStore struct {
	mu       sync.RWMutex
	requests map[uuid.UUID]*models.PendingRequest
}

// NewMemory creates an empty in-memory request store.
func NewMemory() *MemoryStore {
	return &MemoryStore{requests: make(map[uuid.UUID]*models.PendingRequest)}
}

func (s *MemoryStore) Get(ctx context.Context, id uuid.UUID) (*models.PendingRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.requests[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	snapshot := *r
	return &snapshot, nil
}

func (s *MemoryStore) Create(ctx context.Context, r *models.PendingRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.requests[r.ID]; exists {
		return sentinel.ErrConflict
	}
	snapshot := *r
	s.requests[r.ID] = &snapshot
	return nil
}

func (s *MemoryStore) MarkStatusIfPending(ctx context.Context, id uuid.UUID, status models.Status, decidedBy string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.requests[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	if r.Status.Terminal() {
		return sentinel.ErrInvalidState
	}
	r.Status = status
	r.DecidedBy = decidedBy
	r.DecidedAt = now
	return nil
}

func (s *MemoryStore) ListByStatus(ctx context.Context, status models.Status) ([]*models.PendingRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.PendingRequest
	for _, r := range s.requests {
		if r.Status == status {
			snapshot := *r
			out = append(out, &snapshot)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].RequestedAt.After(out[j].RequestedAt)
	})
	return out, nil
}
