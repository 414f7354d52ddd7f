package counter

import (
	"context"
	"sync"
	"time"

	"github.com/ErickCaburnay/B-Sphere-sub001/internal/sequence/models"
	"github.com/ErickCaburnay/B-Sphere-sub001/pkg/platform/sentinel"
)

// MemoryStore implements CounterStore with an in-process map. Suitable for
// tests and single-instance deployments; for production use PostgresStore.
type MemoryStore struct {
	mu       sync.Mutex
	counters map[models.DocumentType]*models.Counter
}

// NewMemory creates an empty in-memory counter store.
func NewMemory() *MemoryStore {
	return &MemoryStore{counters: make(map[models.DocumentType]*models.Counter)}
}

// Increment atomically advances the counter for documentType, creating it at
// zero first if absent, and records the formatted id produced for the new
// value. The mutex spans the whole read-modify-write.
func (s *MemoryStore) Increment(ctx context.Context, documentType models.DocumentType, now time.Time) (*models.Counter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.counters[documentType]
	count := int64(1)
	if ok {
		count = c.Count + 1
	}

	formatted, err := models.FormatControlNumber(documentType, count)
	if err != nil {
		return nil, err
	}

	if !ok {
		c = &models.Counter{DocumentType: documentType}
		s.counters[documentType] = c
	}
	c.Count = count
	c.LastGeneratedID = formatted
	c.LastUpdated = now

	snapshot := *c
	return &snapshot, nil
}

// Get returns the current counter state for documentType.
func (s *MemoryStore) Get(ctx context.Context, documentType models.DocumentType) (*models.Counter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.counters[documentType]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	snapshot := *c
	return &snapshot, nil
}
