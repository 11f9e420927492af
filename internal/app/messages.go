// internal/app/messages.go
package app

import (
	"fmt"
	"strconv"

	"coparent_notification_service/internal/domain/event"
	"coparent_notification_service/internal/domain/push"
	"coparent_notification_service/internal/domain/reminder"
)

// Notification type keys carried in the data payload so the app can route
// taps to the right screen.
const (
	TypeSwapRequestCreated      = "swap-request-created"
	TypeSwapRequestResolved     = "swap-request-resolved"
	TypeCalendarEventCreated    = "calendar-event-created"
	TypeExpenseCreated          = "expense-created"
	TypeExpenseResolved         = "expense-resolved"
	TypeCustodyApprovalRequest  = "custody-approval-request"
	TypeCustodyApprovalResolved = "custody-approval-resolved"
	TypeEventReminder           = "event-reminder"
)

const reminderTimeLayout = "Mon, Jan 2 at 3:04 PM"

func swapCreatedMessage(docID string, sr event.SwapRequest) (push.Notification, map[string]string) {
	body := "You have a new schedule swap request."
	if sr.Date != "" {
		body = fmt.Sprintf("You have a new schedule swap request for %s.", sr.Date)
	}
	return push.Notification{Title: "Swap request", Body: body},
		map[string]string{"type": TypeSwapRequestCreated, "swapRequestId": docID}
}

func swapResolvedMessage(docID string, sr event.SwapRequest) (push.Notification, map[string]string) {
	verb := "approved"
	if sr.Status == event.StatusRejected {
		verb = "declined"
	}
	return push.Notification{Title: "Swap request " + verb, Body: fmt.Sprintf("Your schedule swap request was %s.", verb)},
		map[string]string{"type": TypeSwapRequestResolved, "swapRequestId": docID, "status": sr.Status}
}

func calendarCreatedMessage(docID string, ce event.CalendarEvent) (push.Notification, map[string]string) {
	title := ce.Title
	if title == "" {
		title = "New event"
	}
	body := "A new event was added to your shared calendar."
	if !ce.StartDate.IsZero() {
		body = fmt.Sprintf("%s on %s.", title, ce.StartDate.Format(reminderTimeLayout))
	}
	return push.Notification{Title: "New calendar event", Body: body},
		map[string]string{"type": TypeCalendarEventCreated, "eventId": docID}
}

func expenseCreatedMessage(docID string, ex event.Expense) (push.Notification, map[string]string) {
	title := ex.Title
	if title == "" {
		title = "an expense"
	}
	// Absent amount decodes to zero and still renders.
	body := fmt.Sprintf("%s — %s. Review and approve it.", title, strconv.FormatFloat(ex.Amount, 'f', 2, 64))
	return push.Notification{Title: "New shared expense", Body: body},
		map[string]string{"type": TypeExpenseCreated, "expenseId": docID}
}

func expenseResolvedMessage(docID string, ex event.Expense) (push.Notification, map[string]string) {
	verb := "approved"
	if ex.Status == event.StatusRejected {
		verb = "declined"
	}
	return push.Notification{Title: "Expense " + verb, Body: fmt.Sprintf("Your expense was %s.", verb)},
		map[string]string{"type": TypeExpenseResolved, "expenseId": docID, "status": ex.Status}
}

func custodyRequestedMessage(familyID string) (push.Notification, map[string]string) {
	return push.Notification{
			Title: "Custody schedule approval",
			Body:  "Your co-parent proposed a custody schedule change. Review and approve it.",
		},
		map[string]string{"type": TypeCustodyApprovalRequest, "familyId": familyID}
}

func custodyResolvedMessage(familyID string) (push.Notification, map[string]string) {
	return push.Notification{
			Title: "Custody schedule updated",
			Body:  "Your custody schedule approval request was resolved.",
		},
		map[string]string{"type": TypeCustodyApprovalResolved, "familyId": familyID}
}

func reminderMessage(rem *reminder.Reminder) (push.Notification, map[string]string) {
	title := rem.Title
	if title == "" {
		title = "Upcoming event"
	}
	return push.Notification{
			Title: title,
			Body:  fmt.Sprintf("Starts %s.", rem.StartAt.Format(reminderTimeLayout)),
		},
		map[string]string{"type": TypeEventReminder, "familyId": rem.FamilyID, "eventId": rem.EventID}
}
