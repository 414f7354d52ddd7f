package request

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ErickCaburnay/B-Sphere-sub001/internal/request/models"
	"github.com/ErickCaburnay/B-Sphere-sub001/pkg/platform/sentinel"
)

// PostgresStore persists pending requests in PostgreSQL.
// This store is pure I/O; transition rules live in the service.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed request store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Get(ctx context.Context, id uuid.UUID) (*models.PendingRequest, error) {
	query := `
		SELECT id, type, status, resident_id, requested_changes, original_data,
		       requested_by, requested_at, decided_by, decided_at
		FROM requests
		WHERE id = $1
	`
	return scanRequest(s.db.QueryRowContext(ctx, query, id))
}

// Create inserts a submitted request. The resident-facing submission flow is
// the production caller; tests use it directly.
func (s *PostgresStore) Create(ctx context.Context, r *models.PendingRequest) error {
	changes, err := json.Marshal(r.RequestedChanges)
	if err != nil {
		return fmt.Errorf("marshal requested changes: %w", err)
	}
	original, err := json.Marshal(r.OriginalData)
	if err != nil {
		return fmt.Errorf("marshal original data: %w", err)
	}
	query := `
		INSERT INTO requests (id, type, status, resident_id, requested_changes,
		                      original_data, requested_by, requested_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err = s.db.ExecContext(ctx, query,
		r.ID, r.Type, r.Status, r.ResidentID, changes, original,
		r.RequestedBy, r.RequestedAt,
	)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	return nil
}

// MarkStatusIfPending transitions the request to status only if it is still
// pending. The WHERE clause makes the state check and the write one atomic
// statement, so a competing transition cannot slip in between them.
// Returns sentinel.ErrInvalidState when the request exists but is already
// terminal, sentinel.ErrNotFound when it does not exist.
func (s *PostgresStore) MarkStatusIfPending(ctx context.Context, id uuid.UUID, status models.Status, decidedBy string, now time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE requests
		SET status = $2, decided_by = $3, decided_at = $4
		WHERE id = $1 AND status = $5
	`, id, status, decidedBy, now, models.StatusPending)
	if err != nil {
		return fmt.Errorf("mark request status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark request status: %w", err)
	}
	if affected == 1 {
		return nil
	}

	var exists bool
	if err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM requests WHERE id = $1)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("mark request status: %w", err)
	}
	if !exists {
		return sentinel.ErrNotFound
	}
	return sentinel.ErrInvalidState
}

// ListByStatus returns requests in a given status, newest first. Backs the
// admin review queue.
func (s *PostgresStore) ListByStatus(ctx context.Context, status models.Status) ([]*models.PendingRequest, error) {
	query := `
		SELECT id, type, status, resident_id, requested_changes, original_data,
		       requested_by, requested_at, decided_by, decided_at
		FROM requests
		WHERE status = $1
		ORDER BY requested_at DESC
	`
	rows, err := s.db.QueryContext(ctx, query, status)
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	defer rows.Close()

	var out []*models.PendingRequest
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRequest(row rowScanner) (*models.PendingRequest, error) {
	var r models.PendingRequest
	var changes, original []byte
	var decidedBy sql.NullString
	var decidedAt sql.NullTime
	err := row.Scan(&r.ID, &r.Type, &r.Status, &r.ResidentID, &changes,
		&original, &r.RequestedBy, &r.RequestedAt, &decidedBy, &decidedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan request: %w", err)
	}
	if err := json.Unmarshal(changes, &r.RequestedChanges); err != nil {
		return nil, fmt.Errorf("unmarshal requested changes: %w", err)
	}
	if err := json.Unmarshal(original, &r.OriginalData); err != nil {
		return nil, fmt.Errorf("unmarshal original data: %w", err)
	}
	r.DecidedBy = decidedBy.String
	if decidedAt.Valid {
		r.DecidedAt = decidedAt.Time
	}
	return &r, nil
}
