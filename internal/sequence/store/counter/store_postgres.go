package counter

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/ErickCaburnay/B-Sphere-sub001/internal/sequence/models"
	"github.com/ErickCaburnay/B-Sphere-sub001/pkg/platform/sentinel"
)

// PostgresStore persists counters in PostgreSQL.
// This store is pure I/O; formatting rules live in models, orchestration in the
// service.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed counter store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Increment atomically advances the counter for documentType and records the
// formatted id for the new value. The upsert takes the row lock, so the
// formatted-id write in the same transaction cannot interleave with another
// caller's increment. A transaction abort leaves the counter untouched.
func (s *PostgresStore) Increment(ctx context.Context, documentType models.DocumentType, now time.Time) (*models.Counter, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin counter tx: %w", translateErr(err))
	}
	defer tx.Rollback()

	query := `
		INSERT INTO counters (document_type, count, last_generated_id, last_updated)
		VALUES ($1, 1, '', $2)
		ON CONFLICT (document_type) DO UPDATE SET
			count = counters.count + 1,
			last_updated = EXCLUDED.last_updated
		RETURNING count
	`
	var count int64
	if err := tx.QueryRowContext(ctx, query, documentType, now).Scan(&count); err != nil {
		return nil, fmt.Errorf("increment counter: %w", translateErr(err))
	}

	formatted, err := models.FormatControlNumber(documentType, count)
	if err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE counters SET last_generated_id = $2 WHERE document_type = $1`,
		documentType, formatted,
	)
	if err != nil {
		return nil, fmt.Errorf("record generated id: %w", translateErr(err))
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit counter tx: %w", translateErr(err))
	}

	return &models.Counter{
		DocumentType:    documentType,
		Count:           count,
		LastGeneratedID: formatted,
		LastUpdated:     now,
	}, nil
}

// Get returns the current counter state for documentType.
func (s *PostgresStore) Get(ctx context.Context, documentType models.DocumentType) (*models.Counter, error) {
	query := `
		SELECT document_type, count, last_generated_id, last_updated
		FROM counters
		WHERE document_type = $1
	`
	var c models.Counter
	err := s.db.QueryRowContext(ctx, query, documentType).
		Scan(&c.DocumentType, &c.Count, &c.LastGeneratedID, &c.LastUpdated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("get counter: %w", translateErr(err))
	}
	return &c, nil
}

// translateErr marks transaction conflicts and connection failures as
// retryable so the caller can distinguish them from permanent errors.
func translateErr(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "40001", "40P01": // serialization_failure, deadlock_detected
			return fmt.Errorf("%w: %v", sentinel.ErrUnavailable, err)
		}
	}
	return err
}
