// internal/infra/database/postgres_family_repository.go
package database

import (
	"context"
	"database/sql"
	"fmt"

	"coparent_notification_service/internal/domain/family"

	"github.com/lib/pq" // For pq.Array and driver registration
)

var ErrFamilyNotFound = fmt.Errorf("family not found")

type PostgresFamilyRepository struct {
	db *sql.DB
}

func NewPostgresFamilyRepository(db *sql.DB) *PostgresFamilyRepository {
	return &PostgresFamilyRepository{db: db}
}

func (r *PostgresFamilyRepository) GetByID(ctx context.Context, id string) (*family.Family, error) {
	query := `SELECT id, member_ids, created_at, updated_at FROM families WHERE id = $1`
	f := &family.Family{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&f.ID, pq.Array(&f.MemberIDs), &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrFamilyNotFound
		}
		return nil, fmt.Errorf("error getting family by ID: %w", err)
	}
	return f, nil
}
