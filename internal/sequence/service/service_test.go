package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/ErickCaburnay/B-Sphere-sub001/internal/sequence/models"
	counterstore "github.com/ErickCaburnay/B-Sphere-sub001/internal/sequence/store/counter"
	dErrors "github.com/ErickCaburnay/B-Sphere-sub001/pkg/domain-errors"
	"github.com/ErickCaburnay/B-Sphere-sub001/pkg/platform/sentinel"
)

func TestNext_IssuesFormattedNumbers(t *testing.T) {
	svc := New(counterstore.NewMemory())
	ctx := context.Background()

	first, err := svc.Next(ctx, models.DocumentTypeBusinessPermit)
	require.NoError(t, err)
	assert.Equal(t, "000-01", first)

	second, err := svc.Next(ctx, models.DocumentTypeBusinessPermit)
	require.NoError(t, err)
	assert.Equal(t, "000-02", second)

	// Each series advances independently.
	ctc, err := svc.Next(ctx, models.DocumentTypeCTC)
	require.NoError(t, err)
	assert.Equal(t, "0001-0001", ctc)
}

func TestNext_UnknownDocumentType(t *testing.T) {
	svc := New(counterstore.NewMemory())

	_, err := svc.Next(context.Background(), "cedula")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}

// TestNext_ConcurrentCallsAreContiguous drives N concurrent callers at one
// series and requires N distinct results covering exactly counts 1..N.
func TestNext_ConcurrentCallsAreContiguous(t *testing.T) {
	svc := New(counterstore.NewMemory())
	const n = 200

	var mu sync.Mutex
	issued := make(map[string]struct{}, n)

	var g errgroup.Group
	for range n {
		g.Go(func() error {
			id, err := svc.Next(context.Background(), models.DocumentTypeOfficialReceipt)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			if _, dup := issued[id]; dup {
				return fmt.Errorf("duplicate control number %s", id)
			}
			issued[id] = struct{}{}
			return nil
		})
	}
	require.NoError(t, g.Wait())
	require.Len(t, issued, n)

	// No gaps: every count in 1..n must have produced its formatted id.
	for count := int64(1); count <= n; count++ {
		want, err := models.FormatControlNumber(models.DocumentTypeOfficialReceipt, count)
		require.NoError(t, err)
		assert.Contains(t, issued, want)
	}
}

type unavailableStore struct{}

func (unavailableStore) Increment(ctx context.Context, documentType models.DocumentType, now time.Time) (*models.Counter, error) {
	return nil, fmt.Errorf("tx aborted: %w", sentinel.ErrUnavailable)
}

func (unavailableStore) Get(ctx context.Context, documentType models.DocumentType) (*models.Counter, error) {
	return nil, sentinel.ErrNotFound
}

func TestNext_ContentionSurfacesRetryable(t *testing.T) {
	svc := New(unavailableStore{})

	_, err := svc.Next(context.Background(), models.DocumentTypeCTC)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnavailable))
	assert.True(t, errors.Is(err, sentinel.ErrUnavailable), "cause preserved for callers that retry")
}

func TestCurrent_MissingCounterReadsAsZero(t *testing.T) {
	svc := New(counterstore.NewMemory())

	counter, err := svc.Current(context.Background(), models.DocumentTypeCTC)
	require.NoError(t, err)
	assert.Equal(t, int64(0), counter.Count)
	assert.Empty(t, counter.LastGeneratedID)
}
