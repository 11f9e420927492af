package reminder

import (
	"database/sql"
	"time"
)

// Reminder is a one-shot scheduled notification tied to a calendar event,
// keyed by (FamilyID, EventID) — one reminder per event, overwritten on
// event update. Corresponds to the 'reminders' table.
type Reminder struct {
	FamilyID   string
	EventID    string
	Title      string
	TargetUIDs []string
	StartAt    time.Time
	SendAt     time.Time // StartAt minus the reminder offset
	Sent       bool
	SentAt     sql.NullTime
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
