package app

import (
	"context"
	"testing"
	"time"

	"coparent_notification_service/internal/domain/reminder"
	"coparent_notification_service/internal/domain/user"
)

func intPtr(v int) *int { return &v }

func newTestReminderService(repo *fakeReminderRepo, userRepo *fakeUserRepo, client *fakePushClient, now time.Time) *ReminderService {
	svc := NewReminderService(repo, NewPushService(userRepo, client, testLogger()), testLogger())
	svc.now = func() time.Time { return now }
	return svc
}

func TestUpsertNilOffsetDeletesExisting(t *testing.T) {
	repo := newFakeReminderRepo()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestReminderService(repo, newFakeUserRepo(), newFakePushClient(), now)

	start := now.Add(2 * time.Hour)
	if err := svc.Upsert(context.Background(), "fam1", "ev1", start, intPtr(30), []string{"userA"}, "Dentist"); err != nil {
		t.Fatal(err)
	}
	if _, ok := repo.get("fam1", "ev1"); !ok {
		t.Fatal("reminder should exist after upsert with offset")
	}

	if err := svc.Upsert(context.Background(), "fam1", "ev1", start, nil, []string{"userA"}, "Dentist"); err != nil {
		t.Fatal(err)
	}
	if _, ok := repo.get("fam1", "ev1"); ok {
		t.Error("clearing the offset should delete the reminder")
	}
}

func TestUpsertPastSendTimeNeverPersists(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		startAt time.Time
		minutes int
	}{
		{"send time in the past", now.Add(10 * time.Minute), 30},
		{"send time exactly now", now.Add(30 * time.Minute), 30},
		{"event already started", now.Add(-time.Hour), 15},
		{"zero start time", time.Time{}, 30},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeReminderRepo()
			svc := newTestReminderService(repo, newFakeUserRepo(), newFakePushClient(), now)

			// A prior reminder must be cleaned up, not left stale.
			prior := &reminder.Reminder{FamilyID: "fam1", EventID: "ev1", SendAt: now.Add(time.Hour)}
			if err := repo.Upsert(context.Background(), prior); err != nil {
				t.Fatal(err)
			}

			if err := svc.Upsert(context.Background(), "fam1", "ev1", tt.startAt, intPtr(tt.minutes), []string{"userA"}, "x"); err != nil {
				t.Fatal(err)
			}
			if _, ok := repo.get("fam1", "ev1"); ok {
				t.Error("reminder with past send time must not be persisted")
			}
		})
	}
}

func TestUpsertIsIdempotent(t *testing.T) {
	repo := newFakeReminderRepo()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestReminderService(repo, newFakeUserRepo(), newFakePushClient(), now)

	start := now.Add(time.Hour)
	for i := 0; i < 2; i++ {
		if err := svc.Upsert(context.Background(), "fam1", "ev1", start, intPtr(30), []string{"userA", "userA", "userB"}, "Soccer"); err != nil {
			t.Fatal(err)
		}
	}
	if len(repo.reminders) != 1 {
		t.Fatalf("expected exactly 1 reminder record, got %d", len(repo.reminders))
	}
	rem, _ := repo.get("fam1", "ev1")
	if wantSend := start.Add(-30 * time.Minute); !rem.SendAt.Equal(wantSend) {
		t.Errorf("SendAt = %v, want %v", rem.SendAt, wantSend)
	}
	if len(rem.TargetUIDs) != 2 {
		t.Errorf("target set should be de-duplicated, got %v", rem.TargetUIDs)
	}
	if rem.Sent {
		t.Error("fresh reminder must have sent = false")
	}
}

func TestDeleteIsIdempotent(t *testing.T) {
	repo := newFakeReminderRepo()
	svc := newTestReminderService(repo, newFakeUserRepo(), newFakePushClient(), time.Now())

	if err := svc.Delete(context.Background(), "fam1", "no-such-event"); err != nil {
		t.Errorf("deleting an absent reminder should not error: %v", err)
	}
}

func TestDispatchDueTimeWindow(t *testing.T) {
	// Event at T with a 30-minute offset: nothing fires at T-31, fires at T-29.
	eventStart := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	repo := newFakeReminderRepo()
	userRepo := newFakeUserRepo(&user.User{ID: "userA", DeviceTokens: []string{"tokA"}})
	client := newFakePushClient()

	svc := newTestReminderService(repo, userRepo, client, eventStart.Add(-2*time.Hour))
	if err := svc.Upsert(context.Background(), "fam1", "ev1", eventStart, intPtr(30), []string{"userA"}, "Soccer"); err != nil {
		t.Fatal(err)
	}

	svc.now = func() time.Time { return eventStart.Add(-31 * time.Minute) }
	if err := svc.DispatchDue(context.Background(), 50); err != nil {
		t.Fatal(err)
	}
	if len(client.sends) != 0 {
		t.Fatalf("dispatcher at T-31min must select nothing, sent %d", len(client.sends))
	}

	svc.now = func() time.Time { return eventStart.Add(-29 * time.Minute) }
	if err := svc.DispatchDue(context.Background(), 50); err != nil {
		t.Fatal(err)
	}
	if len(client.sends) != 1 {
		t.Fatalf("dispatcher at T-29min must deliver exactly once, sent %d", len(client.sends))
	}
	if got := client.sends[0].data["type"]; got != TypeEventReminder {
		t.Errorf("data type = %q, want %q", got, TypeEventReminder)
	}
	rem, _ := repo.get("fam1", "ev1")
	if !rem.Sent || !rem.SentAt.Valid {
		t.Error("delivered reminder must be marked sent with a timestamp")
	}
}

func TestDispatchDueNeverResendsSent(t *testing.T) {
	eventStart := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	repo := newFakeReminderRepo()
	userRepo := newFakeUserRepo(&user.User{ID: "userA", DeviceTokens: []string{"tokA"}})
	client := newFakePushClient()

	svc := newTestReminderService(repo, userRepo, client, eventStart.Add(-2*time.Hour))
	if err := svc.Upsert(context.Background(), "fam1", "ev1", eventStart, intPtr(30), []string{"userA"}, "Soccer"); err != nil {
		t.Fatal(err)
	}

	svc.now = func() time.Time { return eventStart.Add(-10 * time.Minute) }
	for _, limit := range []int{1, 5, 50} {
		if err := svc.DispatchDue(context.Background(), limit); err != nil {
			t.Fatal(err)
		}
	}
	if len(client.sends) != 1 {
		t.Errorf("sent reminder re-selected: %d deliveries across runs, want 1", len(client.sends))
	}
}

func TestDispatchDueDeliveryFailureRetriesNextRun(t *testing.T) {
	eventStart := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	repo := newFakeReminderRepo()
	userRepo := newFakeUserRepo(
		&user.User{ID: "userA", DeviceTokens: []string{"tokA"}},
		&user.User{ID: "userB", DeviceTokens: []string{"tokB"}},
	)
	client := newFakePushClient()

	svc := newTestReminderService(repo, userRepo, client, eventStart.Add(-2*time.Hour))
	if err := svc.Upsert(context.Background(), "fam1", "ev1", eventStart, intPtr(60), []string{"userA"}, "First"); err != nil {
		t.Fatal(err)
	}
	if err := svc.Upsert(context.Background(), "fam1", "ev2", eventStart, intPtr(30), []string{"userB"}, "Second"); err != nil {
		t.Fatal(err)
	}

	// Provider down: both deliveries fail, both reminders stay unsent. One
	// item's failure must not abort the batch.
	client.failAll = true
	svc.now = func() time.Time { return eventStart.Add(-5 * time.Minute) }
	if err := svc.DispatchDue(context.Background(), 50); err != nil {
		t.Fatalf("per-item delivery failures must not fail the run: %v", err)
	}
	for _, ev := range []string{"ev1", "ev2"} {
		rem, _ := repo.get("fam1", ev)
		if rem.Sent {
			t.Errorf("reminder %s marked sent despite failed delivery", ev)
		}
	}

	// Provider recovered: the next run retries and delivers both.
	client.failAll = false
	if err := svc.DispatchDue(context.Background(), 50); err != nil {
		t.Fatal(err)
	}
	if len(client.sends) != 2 {
		t.Fatalf("retry run should deliver both reminders, sent %d", len(client.sends))
	}
	// Oldest sendAt first.
	if client.sends[0].notif.Title != "First" {
		t.Errorf("reminders must be processed in ascending sendAt order, first was %q", client.sends[0].notif.Title)
	}
}

func TestDispatchDueNoTokensMarksSent(t *testing.T) {
	eventStart := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	repo := newFakeReminderRepo()
	client := newFakePushClient()

	svc := newTestReminderService(repo, newFakeUserRepo(&user.User{ID: "userA"}), client, eventStart.Add(-2*time.Hour))
	if err := svc.Upsert(context.Background(), "fam1", "ev1", eventStart, intPtr(30), []string{"userA"}, "Soccer"); err != nil {
		t.Fatal(err)
	}

	svc.now = func() time.Time { return eventStart.Add(-5 * time.Minute) }
	if err := svc.DispatchDue(context.Background(), 50); err != nil {
		t.Fatal(err)
	}
	if len(client.sends) != 0 {
		t.Errorf("no multicast expected for a tokenless audience, got %d", len(client.sends))
	}
	rem, _ := repo.get("fam1", "ev1")
	if !rem.Sent {
		t.Error("tokenless reminder should be marked sent so it cannot clog the due queue")
	}
}

func TestDispatchDueRespectsLimit(t *testing.T) {
	eventStart := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	repo := newFakeReminderRepo()
	userRepo := newFakeUserRepo(&user.User{ID: "userA", DeviceTokens: []string{"tokA"}})
	client := newFakePushClient()

	svc := newTestReminderService(repo, userRepo, client, eventStart.Add(-3*time.Hour))
	for i, minutes := range []int{90, 60, 30} {
		evID := []string{"ev1", "ev2", "ev3"}[i]
		if err := svc.Upsert(context.Background(), "fam1", evID, eventStart, intPtr(minutes), []string{"userA"}, evID); err != nil {
			t.Fatal(err)
		}
	}

	svc.now = func() time.Time { return eventStart }
	if err := svc.DispatchDue(context.Background(), 2); err != nil {
		t.Fatal(err)
	}
	if len(client.sends) != 2 {
		t.Fatalf("limit 2 should cap the batch at 2, sent %d", len(client.sends))
	}
	// The two oldest send times go first.
	if client.sends[0].notif.Title != "ev1" || client.sends[1].notif.Title != "ev2" {
		t.Errorf("batch order = [%s, %s], want [ev1, ev2]", client.sends[0].notif.Title, client.sends[1].notif.Title)
	}
}

func TestDispatchDueQueryFailureAbortsRun(t *testing.T) {
	repo := newFakeReminderRepo()
	repo.failList = true
	client := newFakePushClient()
	svc := newTestReminderService(repo, newFakeUserRepo(), client, time.Now())

	if err := svc.DispatchDue(context.Background(), 50); err == nil {
		t.Fatal("query failure must abort the run with an error")
	}
	if len(client.sends) != 0 {
		t.Error("aborted run must have no delivery side effects")
	}
}
