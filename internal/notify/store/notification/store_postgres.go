package notification

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/ErickCaburnay/B-Sphere-sub001/internal/notify/models"
	"github.com/ErickCaburnay/B-Sphere-sub001/pkg/platform/sentinel"
)

// PostgresStore persists notifications in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed notification store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, n *models.Notification) error {
	data, err := json.Marshal(n.Data)
	if err != nil {
		return fmt.Errorf("marshal notification data: %w", err)
	}
	query := `
		INSERT INTO notifications (id, type, title, message, target_role, target_user_id,
		                           request_id, priority, status, data, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err = s.db.ExecContext(ctx, query,
		n.ID, n.Type, n.Title, n.Message, n.TargetRole, n.TargetUserID,
		n.RequestID, n.Priority, n.Status, data, n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	return nil
}

func (s *PostgresStore) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE notifications SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("update notification status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update notification status: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Notification, error) {
	query := `
		SELECT id, type, title, message, target_role, target_user_id,
		       request_id, priority, status, data, created_at
		FROM notifications
		WHERE target_user_id = $1
		ORDER BY created_at DESC
	`
	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var out []*models.Notification
	for rows.Next() {
		var n models.Notification
		var data []byte
		err := rows.Scan(&n.ID, &n.Type, &n.Title, &n.Message, &n.TargetRole,
			&n.TargetUserID, &n.RequestID, &n.Priority, &n.Status, &data, &n.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		if len(data) > 0 {
			if err := json.Unmarshal(data, &n.Data); err != nil {
				return nil, fmt.Errorf("unmarshal notification data: %w", err)
			}
		}
		out = append(out, &n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return out, nil
}

// Get returns one notification by id.
func (s *PostgresStore) Get(ctx context.Context, id uuid.UUID) (*models.Notification, error) {
	query := `
		SELECT id, type, title, message, target_role, target_user_id,
		       request_id, priority, status, data, created_at
		FROM notifications
		WHERE id = $1
	`
	var n models.Notification
	var data []byte
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&n.ID, &n.Type, &n.Title, &n.Message, &n.TargetRole,
		&n.TargetUserID, &n.RequestID, &n.Priority, &n.Status, &data, &n.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("get notification: %w", err)
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &n.Data); err != nil {
			return nil, fmt.Errorf("unmarshal notification data: %w", err)
		}
	}
	return &n, nil
}
