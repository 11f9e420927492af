// internal/infra/database/postgres_user_repository.go
package database

import (
	"context"
	"database/sql"
	"fmt"

	"coparent_notification_service/internal/domain/user"

	"github.com/lib/pq"
)

var ErrUserNotFound = fmt.Errorf("user not found")

type PostgresUserRepository struct {
	db *sql.DB
}

func NewPostgresUserRepository(db *sql.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

func (r *PostgresUserRepository) GetByID(ctx context.Context, id string) (*user.User, error) {
	query := `SELECT id, device_tokens, created_at, updated_at FROM users WHERE id = $1`
	u := &user.User{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&u.ID, pq.Array(&u.DeviceTokens), &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("error getting user by ID: %w", err)
	}
	return u, nil
}

// RemoveTokens removes the given tokens from the user's token set with a
// single set-difference UPDATE, so concurrent prunes for different tokens do
// not overwrite each other.
func (r *PostgresUserRepository) RemoveTokens(ctx context.Context, userID string, tokens []string) error {
	if len(tokens) == 0 {
		return nil
	}
	query := `UPDATE users
               SET device_tokens = ARRAY(
                       SELECT t FROM unnest(device_tokens) AS t
                       WHERE t != ALL($2::text[])
                   ),
                   updated_at = NOW()
               WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, userID, pq.Array(tokens)); err != nil {
		return fmt.Errorf("error removing device tokens for user %s: %w", userID, err)
	}
	return nil
}
