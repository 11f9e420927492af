package app

import (
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"coparent_notification_service/internal/domain/family"
	"coparent_notification_service/internal/domain/push"
	"coparent_notification_service/internal/domain/reminder"
	"coparent_notification_service/internal/domain/user"
	idb "coparent_notification_service/internal/infra/database"
)

func testLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l.WithField("component", "test")
}

type fakeFamilyRepo struct {
	families map[string]*family.Family
	failAll  bool
}

func newFakeFamilyRepo(families ...*family.Family) *fakeFamilyRepo {
	r := &fakeFamilyRepo{families: make(map[string]*family.Family)}
	for _, f := range families {
		r.families[f.ID] = f
	}
	return r
}

func (r *fakeFamilyRepo) GetByID(_ context.Context, id string) (*family.Family, error) {
	if r.failAll {
		return nil, fmt.Errorf("family store unavailable")
	}
	f, ok := r.families[id]
	if !ok {
		return nil, idb.ErrFamilyNotFound
	}
	return f, nil
}

type fakeUserRepo struct {
	users        map[string]*user.User
	removedCalls map[string][]string
}

func newFakeUserRepo(users ...*user.User) *fakeUserRepo {
	r := &fakeUserRepo{
		users:        make(map[string]*user.User),
		removedCalls: make(map[string][]string),
	}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*user.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, idb.ErrUserNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) RemoveTokens(_ context.Context, userID string, tokens []string) error {
	r.removedCalls[userID] = append(r.removedCalls[userID], tokens...)
	u, ok := r.users[userID]
	if !ok {
		return nil
	}
	remove := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		remove[t] = struct{}{}
	}
	kept := make([]string, 0, len(u.DeviceTokens))
	for _, t := range u.DeviceTokens {
		if _, drop := remove[t]; !drop {
			kept = append(kept, t)
		}
	}
	u.DeviceTokens = kept
	return nil
}

type reminderKey struct {
	familyID string
	eventID  string
}

type fakeReminderRepo struct {
	reminders map[reminderKey]*reminder.Reminder
	failList  bool
}

func newFakeReminderRepo() *fakeReminderRepo {
	return &fakeReminderRepo{reminders: make(map[reminderKey]*reminder.Reminder)}
}

func (r *fakeReminderRepo) Upsert(_ context.Context, rem *reminder.Reminder) error {
	key := reminderKey{rem.FamilyID, rem.EventID}
	cp := *rem
	if existing, ok := r.reminders[key]; ok {
		cp.CreatedAt = existing.CreatedAt
	} else {
		cp.CreatedAt = time.Now()
	}
	cp.UpdatedAt = time.Now()
	r.reminders[key] = &cp
	return nil
}

func (r *fakeReminderRepo) Delete(_ context.Context, familyID, eventID string) error {
	delete(r.reminders, reminderKey{familyID, eventID})
	return nil
}

func (r *fakeReminderRepo) ListDue(_ context.Context, now time.Time, limit int) ([]*reminder.Reminder, error) {
	if r.failList {
		return nil, fmt.Errorf("reminder store unavailable")
	}
	due := make([]*reminder.Reminder, 0)
	for _, rem := range r.reminders {
		if !rem.Sent && !rem.SendAt.After(now) {
			due = append(due, rem)
		}
	}
	sort.Slice(due, func(i, j int) bool { return due[i].SendAt.Before(due[j].SendAt) })
	if len(due) > limit {
		due = due[:limit]
	}
	return due, nil
}

func (r *fakeReminderRepo) MarkSent(_ context.Context, familyID, eventID string, sentAt time.Time) (bool, error) {
	rem, ok := r.reminders[reminderKey{familyID, eventID}]
	if !ok || rem.Sent {
		return false, nil
	}
	rem.Sent = true
	rem.SentAt.Time = sentAt
	rem.SentAt.Valid = true
	return true, nil
}

func (r *fakeReminderRepo) get(familyID, eventID string) (*reminder.Reminder, bool) {
	rem, ok := r.reminders[reminderKey{familyID, eventID}]
	return rem, ok
}

type sentPush struct {
	tokens []string
	notif  push.Notification
	data   map[string]string
}

type fakePushClient struct {
	sends         []sentPush
	invalidTokens map[string]bool
	failAll       bool
}

func newFakePushClient() *fakePushClient {
	return &fakePushClient{invalidTokens: make(map[string]bool)}
}

func (c *fakePushClient) SendMulticast(_ context.Context, tokens []string, n push.Notification, data map[string]string) (*push.SendReport, error) {
	if c.failAll {
		return nil, fmt.Errorf("provider unavailable")
	}
	c.sends = append(c.sends, sentPush{tokens: tokens, notif: n, data: data})
	report := &push.SendReport{}
	for _, t := range tokens {
		if c.invalidTokens[t] {
			report.FailureCount++
			report.InvalidTokens = append(report.InvalidTokens, t)
		} else {
			report.SuccessCount++
		}
	}
	return report, nil
}

func (c *fakePushClient) sentTokens() []string {
	var all []string
	for _, s := range c.sends {
		all = append(all, s.tokens...)
	}
	return all
}
