package notification

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/ErickCaburnay/B-Sphere-sub001/internal/notify/models"
	"github.com/ErickCaburnay/B-Sphere-sub001/pkg/platform/sentinel"
)

// MemoryStore implements the notification store in-process.
type MemoryStore struct {
	mu            sync.RWMutex
	notifications map[uuid.UUID]*models.Notification
}

// NewMemory creates an empty in-memory notification store.
func NewMemory() *MemoryStore {
	return &MemoryStore{notifications: make(map[uuid.UUID]*models.Notification)}
}

func (s *MemoryStore) Create(ctx context.Context, n *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.notifications[n.ID]; exists {
		return sentinel.ErrConflict
	}
	snapshot := *n
	s.notifications[n.ID] = &snapshot
	return nil
}

func (s *MemoryStore) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.notifications[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	n.Status = status
	return nil
}

func (s *MemoryStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.Notification
	for _, n := range s.notifications {
		if n.TargetUserID == userID {
			snapshot := *n
			out = append(out, &snapshot)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *MemoryStore) Get(ctx context.Context, id uuid.UUID) (*models.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, ok := s.notifications[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	snapshot := *n
	return &snapshot, nil
}
