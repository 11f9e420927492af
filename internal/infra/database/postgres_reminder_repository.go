// internal/infra/database/postgres_reminder_repository.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"coparent_notification_service/internal/domain/reminder"

	"github.com/lib/pq"
)

var ErrReminderNotFound = fmt.Errorf("reminder not found")

type PostgresReminderRepository struct {
	db *sql.DB
}

func NewPostgresReminderRepository(db *sql.DB) *PostgresReminderRepository {
	return &PostgresReminderRepository{db: db}
}

// Upsert writes the reminder keyed by (family_id, event_id). The ON CONFLICT
// merge refreshes everything except created_at, which is preserved from the
// first write.
func (r *PostgresReminderRepository) Upsert(ctx context.Context, rem *reminder.Reminder) error {
	query := `INSERT INTO reminders (family_id, event_id, title, target_uids, start_at, send_at, sent, sent_at)
               VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
               ON CONFLICT (family_id, event_id) DO UPDATE
               SET title = EXCLUDED.title,
                   target_uids = EXCLUDED.target_uids,
                   start_at = EXCLUDED.start_at,
                   send_at = EXCLUDED.send_at,
                   sent = EXCLUDED.sent,
                   sent_at = EXCLUDED.sent_at,
                   updated_at = NOW()
               RETURNING created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query,
		rem.FamilyID, rem.EventID, rem.Title, pq.Array(rem.TargetUIDs),
		rem.StartAt, rem.SendAt, rem.Sent, rem.SentAt,
	).Scan(&rem.CreatedAt, &rem.UpdatedAt)
	if err != nil {
		return fmt.Errorf("error upserting reminder (%s, %s): %w", rem.FamilyID, rem.EventID, err)
	}
	return nil
}

func (r *PostgresReminderRepository) Delete(ctx context.Context, familyID, eventID string) error {
	query := `DELETE FROM reminders WHERE family_id = $1 AND event_id = $2`
	if _, err := r.db.ExecContext(ctx, query, familyID, eventID); err != nil {
		return fmt.Errorf("error deleting reminder (%s, %s): %w", familyID, eventID, err)
	}
	// Deleting an absent reminder is not an error.
	return nil
}

func (r *PostgresReminderRepository) ListDue(ctx context.Context, now time.Time, limit int) ([]*reminder.Reminder, error) {
	query := `SELECT family_id, event_id, title, target_uids, start_at, send_at, sent, sent_at, created_at, updated_at
               FROM reminders
               WHERE sent = FALSE AND send_at <= $1
               ORDER BY send_at ASC
               LIMIT $2`
	rows, err := r.db.QueryContext(ctx, query, now, limit)
	if err != nil {
		return nil, fmt.Errorf("error querying due reminders: %w", err)
	}
	defer rows.Close()

	reminders := make([]*reminder.Reminder, 0)
	for rows.Next() {
		rem := &reminder.Reminder{}
		if err := rows.Scan(
			&rem.FamilyID, &rem.EventID, &rem.Title, pq.Array(&rem.TargetUIDs),
			&rem.StartAt, &rem.SendAt, &rem.Sent, &rem.SentAt, &rem.CreatedAt, &rem.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("error scanning due reminder row: %w", err)
		}
		reminders = append(reminders, rem)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating due reminder rows: %w", err)
	}
	return reminders, nil
}

// MarkSent flips the sent flag with a conditional write: a reminder already
// marked sent by a concurrent run is left alone and reported as false.
func (r *PostgresReminderRepository) MarkSent(ctx context.Context, familyID, eventID string, sentAt time.Time) (bool, error) {
	query := `UPDATE reminders
               SET sent = TRUE, sent_at = $3, updated_at = NOW()
               WHERE family_id = $1 AND event_id = $2 AND sent = FALSE`
	res, err := r.db.ExecContext(ctx, query, familyID, eventID, sentAt)
	if err != nil {
		return false, fmt.Errorf("error marking reminder sent (%s, %s): %w", familyID, eventID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("error reading rows affected for reminder (%s, %s): %w", familyID, eventID, err)
	}
	return affected == 1, nil
}
