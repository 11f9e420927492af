package event

import (
	"time"

	"coparent_notification_service/internal/domain/push"
)

// Audience role tags, resolved against lexicographically sorted family
// membership. Unmapped roles fall back to all members.
const (
	RoleBoth            = "both"
	RoleParentPrimary   = "parent-primary"
	RoleParentSecondary = "parent-secondary"
)

// Audience declares who should receive a notification. It is resolved
// against family membership by the executor, keeping decision functions
// free of I/O. Exactly one selection rule applies, checked in order:
// Explicit (when non-empty), then OtherParentOf (when set), then Role.
type Audience struct {
	Explicit      []string
	OtherParentOf string
	Role          string
	Exclude       []string
}

// Effect is an intended side effect computed by a reactor decision function.
// A thin executor applies effects; decisions themselves are pure.
type Effect interface {
	effect()
}

// SendPush delivers one notification to every resolved audience member.
type SendPush struct {
	Audience     Audience
	Notification push.Notification
	Data         map[string]string
}

// UpsertReminder (re)schedules the reminder for a calendar event.
// A nil ReminderMinutes means no reminder: any existing one is deleted.
type UpsertReminder struct {
	FamilyID        string
	EventID         string
	StartAt         time.Time
	ReminderMinutes *int
	TargetUIDs      []string
	Title           string
}

// DeleteReminder removes the reminder for a calendar event, if any.
type DeleteReminder struct {
	FamilyID string
	EventID  string
}

func (SendPush) effect()       {}
func (UpsertReminder) effect() {}
func (DeleteReminder) effect() {}
