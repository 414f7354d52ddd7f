package resident

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ErickCaburnay/B-Sphere-sub001/internal/resident/models"
	"github.com/ErickCaburnay/B-Sphere-sub001/pkg/platform/sentinel"
)

func seedResident(t *testing.T, s *MemoryStore) *models.Resident {
	t.Helper()
	r := &models.Resident{
		ID:            uuid.New(),
		FirstName:     "Juan",
		LastName:      "Dela Cruz",
		ContactNumber: "09170000000",
		AddressCity:   "San Fernando",
	}
	require.NoError(t, s.Create(context.Background(), r))
	return r
}

func TestUpdateFields(t *testing.T) {
	s := NewMemory()
	seeded := seedResident(t, s)
	now := time.Now()

	err := s.UpdateFields(context.Background(), seeded.ID, map[string]any{
		"contactNumber": "09171234567",
		"addressStreet": "Rizal St",
	}, now)
	require.NoError(t, err)

	got, err := s.FindByID(context.Background(), seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, "09171234567", got.ContactNumber)
	assert.Equal(t, "Rizal St", got.AddressStreet)
	assert.Equal(t, "Juan", got.FirstName, "untouched fields survive")
	assert.Equal(t, now, got.UpdatedAt)
}

func TestUpdateFields_Missing(t *testing.T) {
	s := NewMemory()
	err := s.UpdateFields(context.Background(), uuid.New(), map[string]any{"email": "a@b.ph"}, time.Now())
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestUpdateFields_UnknownFieldLeavesRecordUntouched(t *testing.T) {
	s := NewMemory()
	seeded := seedResident(t, s)

	err := s.UpdateFields(context.Background(), seeded.ID, map[string]any{
		"firstName": "Pedro",
		"role":      "admin",
	}, time.Now())
	require.Error(t, err)

	got, err := s.FindByID(context.Background(), seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, "Juan", got.FirstName)
}

func TestUpdateFields_RejectsNonStringValue(t *testing.T) {
	s := NewMemory()
	seeded := seedResident(t, s)

	err := s.UpdateFields(context.Background(), seeded.ID, map[string]any{"firstName": 42}, time.Now())
	assert.Error(t, err)
}

func TestCreate_Duplicate(t *testing.T) {
	s := NewMemory()
	seeded := seedResident(t, s)

	err := s.Create(context.Background(), &models.Resident{ID: seeded.ID})
	assert.ErrorIs(t, err, sentinel.ErrConflict)
}

func TestFindByID_ReturnsSnapshot(t *testing.T) {
	s := NewMemory()
	seeded := seedResident(t, s)

	got, err := s.FindByID(context.Background(), seeded.ID)
	require.NoError(t, err)
	got.FirstName = "mutated"

	again, err := s.FindByID(context.Background(), seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, "Juan", again.FirstName)
}
