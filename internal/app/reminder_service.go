// internal/app/reminder_service.go
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"coparent_notification_service/internal/domain/reminder"
)

// ReminderService owns the reminder lifecycle: (re)computing reminder
// records from calendar-event changes, and delivering due reminders on the
// polling cadence.
type ReminderService struct {
	reminderRepo reminder.Repository
	pushService  *PushService
	logger       *logrus.Entry
	now          func() time.Time
}

func NewReminderService(rr reminder.Repository, ps *PushService, logger *logrus.Entry) *ReminderService {
	return &ReminderService{
		reminderRepo: rr,
		pushService:  ps,
		logger:       logger,
		now:          time.Now,
	}
}

// Upsert (re)computes the reminder for a calendar event. A nil offset means
// the event has no reminder: any existing record is deleted. A send time at
// or before now means it is too late to remind: the record is deleted rather
// than scheduled in the past, even though the caller asked for one.
func (s *ReminderService) Upsert(ctx context.Context, familyID, eventID string, startAt time.Time, reminderMinutes *int, targetUIDs []string, title string) error {
	if reminderMinutes == nil {
		return s.Delete(ctx, familyID, eventID)
	}

	sendAt := startAt.Add(-time.Duration(*reminderMinutes) * time.Minute)
	if startAt.IsZero() || !sendAt.After(s.now()) {
		s.logger.Debugf("reminder for event %s/%s would fire at %s, in the past; deleting", familyID, eventID, sendAt)
		return s.Delete(ctx, familyID, eventID)
	}

	rem := &reminder.Reminder{
		FamilyID:   familyID,
		EventID:    eventID,
		Title:      title,
		TargetUIDs: dedupe(targetUIDs),
		StartAt:    startAt,
		SendAt:     sendAt,
		Sent:       false,
	}
	if err := s.reminderRepo.Upsert(ctx, rem); err != nil {
		return fmt.Errorf("failed to upsert reminder for event %s/%s: %w", familyID, eventID, err)
	}
	s.logger.Debugf("reminder upserted for event %s/%s, sendAt %s, %d targets", familyID, eventID, sendAt, len(rem.TargetUIDs))
	return nil
}

// Delete removes the reminder for an event. Absence is not an error.
func (s *ReminderService) Delete(ctx context.Context, familyID, eventID string) error {
	if err := s.reminderRepo.Delete(ctx, familyID, eventID); err != nil {
		return fmt.Errorf("failed to delete reminder for event %s/%s: %w", familyID, eventID, err)
	}
	return nil
}

// DispatchDue delivers every reminder whose send time has passed and which
// has not been sent, oldest first, capped at limit. Each reminder is handled
// independently: one delivery failure leaves that reminder unsent for the
// next run and never blocks the rest of the batch. A query failure aborts
// the whole run; the next tick retries.
func (s *ReminderService) DispatchDue(ctx context.Context, limit int) error {
	runID := uuid.NewString()
	log := s.logger.WithField("run_id", runID)

	due, err := s.reminderRepo.ListDue(ctx, s.now(), limit)
	if err != nil {
		return fmt.Errorf("due-reminder query failed: %w", err)
	}
	if len(due) == 0 {
		log.Debug("no due reminders")
		return nil
	}
	log.Infof("dispatching %d due reminders", len(due))

	var sent, skipped, failed int
	for _, rem := range due {
		n, data := reminderMessage(rem)

		delivered, err := s.pushService.DeliverToUsers(ctx, rem.TargetUIDs, n, data)
		if err != nil {
			// Leave sent = false; the next scheduled run retries this one.
			failed++
			log.WithError(err).Warnf("delivery failed for reminder %s/%s, will retry next run", rem.FamilyID, rem.EventID)
			continue
		}
		if !delivered {
			// No registered devices. Mark sent anyway so an undeliverable
			// reminder cannot pin the head of the due queue forever.
			skipped++
			log.Infof("reminder %s/%s has no deliverable tokens, marking sent", rem.FamilyID, rem.EventID)
		} else {
			sent++
		}

		flipped, err := s.reminderRepo.MarkSent(ctx, rem.FamilyID, rem.EventID, s.now())
		if err != nil {
			log.WithError(err).Warnf("failed to mark reminder %s/%s sent", rem.FamilyID, rem.EventID)
			continue
		}
		if !flipped {
			log.Debugf("reminder %s/%s already marked sent by a concurrent run", rem.FamilyID, rem.EventID)
		}
	}

	log.WithFields(logrus.Fields{
		"selected": len(due),
		"sent":     sent,
		"skipped":  skipped,
		"failed":   failed,
	}).Info("due-reminder dispatch run complete")
	return nil
}
