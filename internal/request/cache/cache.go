// Package cache keeps a best-effort view of request statuses so the admin
// list page reflects a decision immediately, before the next full reload.
// It is a UI convenience, not a durability guarantee: a missed write degrades
// to a stale list entry.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ErickCaburnay/B-Sphere-sub001/internal/request/models"
)

// StatusView caches the last known status per request.
type StatusView interface {
	Put(ctx context.Context, requestID uuid.UUID, status models.Status) error
	Get(ctx context.Context, requestID uuid.UUID) (models.Status, bool, error)
}

// MemoryView is a process-local StatusView for tests and single-instance runs.
type MemoryView struct {
	mu       sync.RWMutex
	statuses map[uuid.UUID]models.Status
}

// NewMemory creates an empty in-memory status view.
func NewMemory() *MemoryView {
	return &MemoryView{statuses: make(map[uuid.UUID]models.Status)}
}

func (v *MemoryView) Put(ctx context.Context, requestID uuid.UUID, status models.Status) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.statuses[requestID] = status
	return nil
}

func (v *MemoryView) Get(ctx context.Context, requestID uuid.UUID) (models.Status, bool, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	status, ok := v.statuses[requestID]
	return status, ok, nil
}

// TTL bounds staleness for the shared redis view.
var TTL = 5 * time.Minute
