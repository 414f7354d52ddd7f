package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildResidentUpdate(t *testing.T) {
	tests := []struct {
		name    string
		changes map[string]any
		want    map[string]any
	}{
		{
			name:    "phone renamed and empty address dropped",
			changes: map[string]any{"phone": "123", "address": map[string]any{"street": "", "city": ""}},
			want:    map[string]any{"contactNumber": "123"},
		},
		{
			name:    "phone kept out when contactNumber also provided",
			changes: map[string]any{"phone": "123", "contactNumber": "456"},
			want:    map[string]any{"contactNumber": "456"},
		},
		{
			name:    "whitespace-only address still dropped",
			changes: map[string]any{"address": map[string]any{"street": "   ", "city": "\t"}},
			want:    map[string]any{},
		},
		{
			name:    "populated address flattens to street and city",
			changes: map[string]any{"address": map[string]any{"street": "Mabini St", "city": "Quezon City"}},
			want:    map[string]any{"addressStreet": "Mabini St", "addressCity": "Quezon City"},
		},
		{
			name:    "plain fields pass through",
			changes: map[string]any{"email": "a@b.ph", "firstName": "Ana"},
			want:    map[string]any{"email": "a@b.ph", "firstName": "Ana"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BuildResidentUpdate(tt.changes)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuildResidentUpdate_RejectsNonObjectAddress(t *testing.T) {
	_, err := BuildResidentUpdate(map[string]any{"address": "Mabini St"})
	require.Error(t, err)
}

func TestBuildResidentUpdate_DoesNotMutateInput(t *testing.T) {
	changes := map[string]any{"phone": "123"}
	_, err := BuildResidentUpdate(changes)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"phone": "123"}, changes)
}

func TestStatusTerminal(t *testing.T) {
	assert.False(t, StatusPending.Terminal())
	assert.True(t, StatusApproved.Terminal())
	assert.True(t, StatusRejected.Terminal())
	assert.True(t, StatusCompleted.Terminal())
}
