package resident

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ErickCaburnay/B-Sphere-sub001/internal/resident/models"
	"github.com/ErickCaburnay/B-Sphere-sub001/pkg/platform/sentinel"
)

// MemoryStore implements the resident store in-process for tests and
// single-instance deployments.
type MemoryStore struct {
	mu        sync.RWMutex
	residents map[uuid.UUID]*models.Resident
}

// NewMemory creates an empty in-memory resident store.
func NewMemory() *MemoryStore {
	return &MemoryStore{residents: make(map[uuid.UUID]*models.Resident)}
}

func (s *MemoryStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Resident, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.residents[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	snapshot := *r
	return &snapshot, nil
}

func (s *MemoryStore) Create(ctx context.Context, r *models.Resident) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.residents[r.ID]; exists {
		return sentinel.ErrConflict
	}
	snapshot := *r
	s.residents[r.ID] = &snapshot
	return nil
}

// UpdateFields applies a partial update under the store lock so concurrent
// updates never interleave mid-payload.
func (s *MemoryStore) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.residents[id]
	if !ok {
		return sentinel.ErrNotFound
	}

	// Apply to a copy so a rejected field leaves the record untouched.
	r := *existing
	for name, value := range fields {
		str, ok := value.(string)
		if !ok {
			return fmt.Errorf("field %q: unsupported value type %T", name, value)
		}
		switch name {
		case "firstName":
			r.FirstName = str
		case "middleName":
			r.MiddleName = str
		case "lastName":
			r.LastName = str
		case "contactNumber":
			r.ContactNumber = str
		case "email":
			r.Email = str
		case "addressStreet":
			r.AddressStreet = str
		case "addressCity":
			r.AddressCity = str
		default:
			return fmt.Errorf("field %q is not updatable", name)
		}
	}
	r.UpdatedAt = now
	s.residents[id] = &r
	return nil
}
