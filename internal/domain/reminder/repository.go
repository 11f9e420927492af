package reminder

import (
	"context"
	"time"
)

// Repository defines operations on the persisted reminder store.
type Repository interface {
	// Upsert writes the reminder keyed by (FamilyID, EventID) as a merge:
	// CreatedAt is preserved on overwrite, UpdatedAt refreshed. Calling it
	// twice with identical input yields one record.
	Upsert(ctx context.Context, r *Reminder) error
	// Delete removes the reminder for the given key. Absence is not an error.
	Delete(ctx context.Context, familyID, eventID string) error
	// ListDue returns reminders with sent = false and SendAt <= now, ordered
	// by SendAt ascending, capped at limit.
	ListDue(ctx context.Context, now time.Time, limit int) ([]*Reminder, error)
	// MarkSent flips sent to true for the given key, only if it is still
	// false. Returns false when the reminder was already sent or is gone.
	MarkSent(ctx context.Context, familyID, eventID string, sentAt time.Time) (bool, error)
}
