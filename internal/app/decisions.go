// internal/app/decisions.go
//
// Pure decision functions: one per (collection, change kind). Each takes the
// before/after snapshots and returns the intended side effects, with no I/O.
// Audience membership is declared, not resolved, so these stay deterministic
// and unit-testable; the reactor executor resolves and applies.
package app

import "coparent_notification_service/internal/domain/event"

func decideSwapCreated(ch event.Change) []event.Effect {
	after := ch.SwapAfter()
	n, data := swapCreatedMessage(ch.DocID, after)

	audience := event.Audience{OtherParentOf: after.RequestedBy}
	if after.RequestedTo != "" {
		audience = event.Audience{Explicit: []string{after.RequestedTo}}
	}
	return []event.Effect{event.SendPush{Audience: audience, Notification: n, Data: data}}
}

func decideSwapUpdated(ch event.Change) []event.Effect {
	before, after := ch.SwapBefore(), ch.SwapAfter()
	// Only the transition into a terminal status notifies the requester.
	// Unchanged status, or edits after resolution, are no-ops.
	if before.Status == after.Status || !event.Resolved(after.Status) {
		return nil
	}
	n, data := swapResolvedMessage(ch.DocID, after)
	return []event.Effect{event.SendPush{
		Audience:     event.Audience{Explicit: []string{after.RequestedBy}},
		Notification: n,
		Data:         data,
	}}
}

func decideCalendarCreated(ch event.Change) []event.Effect {
	after := ch.EventAfter()
	n, data := calendarCreatedMessage(ch.DocID, after)
	return []event.Effect{
		event.SendPush{
			Audience:     event.Audience{Explicit: after.TargetUIDs, Role: event.RoleBoth},
			Notification: n,
			Data:         data,
		},
		upsertFromEvent(ch, after),
	}
}

func decideCalendarUpdated(ch event.Change) []event.Effect {
	// Updates refresh the reminder without re-notifying.
	return []event.Effect{upsertFromEvent(ch, ch.EventAfter())}
}

func decideCalendarDeleted(ch event.Change) []event.Effect {
	return []event.Effect{event.DeleteReminder{FamilyID: ch.FamilyID, EventID: ch.DocID}}
}

func upsertFromEvent(ch event.Change, ce event.CalendarEvent) event.Effect {
	return event.UpsertReminder{
		FamilyID:        ch.FamilyID,
		EventID:         ch.DocID,
		StartAt:         ce.StartDate,
		ReminderMinutes: ce.ReminderMinutes,
		TargetUIDs:      ce.TargetUIDs,
		Title:           ce.Title,
	}
}

func decideExpenseCreated(ch event.Change) []event.Effect {
	after := ch.ExpenseAfter()
	n, data := expenseCreatedMessage(ch.DocID, after)
	return []event.Effect{event.SendPush{
		Audience:     event.Audience{OtherParentOf: after.CreatedBy},
		Notification: n,
		Data:         data,
	}}
}

func decideExpenseUpdated(ch event.Change) []event.Effect {
	before, after := ch.ExpenseBefore(), ch.ExpenseAfter()
	if before.Status == after.Status || !event.Resolved(after.Status) {
		return nil
	}
	n, data := expenseResolvedMessage(ch.DocID, after)
	return []event.Effect{event.SendPush{
		Audience:     event.Audience{Explicit: []string{after.CreatedBy}},
		Notification: n,
		Data:         data,
	}}
}

func decideCustodyChanged(ch event.Change) []event.Effect {
	before, after := ch.CustodyBefore(), ch.CustodyAfter()

	switch {
	case before.PendingApproval == nil && after.PendingApproval != nil:
		// A pending approval appeared: everyone but the requester reviews it.
		n, data := custodyRequestedMessage(ch.FamilyID)
		return []event.Effect{event.SendPush{
			Audience: event.Audience{
				Role:    event.RoleBoth,
				Exclude: []string{after.PendingApproval.RequestedBy},
			},
			Notification: n,
			Data:         data,
		}}
	case before.PendingApproval != nil && after.PendingApproval == nil:
		// The pending approval was resolved: tell the original requester.
		n, data := custodyResolvedMessage(ch.FamilyID)
		return []event.Effect{event.SendPush{
			Audience:     event.Audience{Explicit: []string{before.PendingApproval.RequestedBy}},
			Notification: n,
			Data:         data,
		}}
	default:
		// Any other write shape to the settings document is a no-op.
		return nil
	}
}
