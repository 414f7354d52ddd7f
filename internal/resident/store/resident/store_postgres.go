package resident

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/ErickCaburnay/B-Sphere-sub001/internal/resident/models"
	"github.com/ErickCaburnay/B-Sphere-sub001/pkg/platform/sentinel"
)

// PostgresStore persists residents in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed resident store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Resident, error) {
	query := `
		SELECT id, first_name, middle_name, last_name, contact_number, email,
		       address_street, address_city, created_at, updated_at
		FROM residents
		WHERE id = $1
	`
	var r models.Resident
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&r.ID, &r.FirstName, &r.MiddleName, &r.LastName, &r.ContactNumber,
		&r.Email, &r.AddressStreet, &r.AddressCity, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find resident: %w", err)
	}
	return &r, nil
}

// Create inserts a roster entry. Used by seeding and tests; resident intake
// is owned by the registration flow.
func (s *PostgresStore) Create(ctx context.Context, r *models.Resident) error {
	query := `
		INSERT INTO residents (id, first_name, middle_name, last_name, contact_number,
		                       email, address_street, address_city, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := s.db.ExecContext(ctx, query,
		r.ID, r.FirstName, r.MiddleName, r.LastName, r.ContactNumber,
		r.Email, r.AddressStreet, r.AddressCity, r.CreatedAt, r.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create resident: %w", err)
	}
	return nil
}

// UpdateFields applies a partial update. The whole statement is all-or-nothing
// at the store level; zero matched rows means the resident does not exist.
func (s *PostgresStore) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any, now time.Time) error {
	if len(fields) == 0 {
		return nil
	}

	// Deterministic column order keeps statements stable for logs and tests.
	names := make([]string, 0, len(fields))
	for name := range fields {
		if _, ok := models.UpdatableFields[name]; !ok {
			return fmt.Errorf("field %q is not updatable", name)
		}
		names = append(names, name)
	}
	sort.Strings(names)

	query := "UPDATE residents SET "
	args := make([]any, 0, len(names)+2)
	for i, name := range names {
		if i > 0 {
			query += ", "
		}
		args = append(args, fields[name])
		query += fmt.Sprintf("%s = $%d", models.UpdatableFields[name], len(args))
	}
	args = append(args, now)
	query += fmt.Sprintf(", updated_at = $%d", len(args))
	args = append(args, id)
	query += fmt.Sprintf(" WHERE id = $%d", len(args))

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update resident fields: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update resident fields: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
