package event

import (
	"encoding/json"
	"time"
)

// Status values shared by swap requests and expenses. Transitions are
// monotonic: once approved or rejected, a record never re-enters pending.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// SwapRequest is a custody schedule-swap request document snapshot.
type SwapRequest struct {
	RequestedBy string `json:"requestedBy"`
	RequestedTo string `json:"requestedTo"`
	Status      string `json:"status"`
	Date        string `json:"date"`
	Note        string `json:"note"`
}

// CalendarEvent is a shared calendar event document snapshot.
type CalendarEvent struct {
	Title           string    `json:"title"`
	StartDate       time.Time `json:"startDate"`
	ReminderMinutes *int      `json:"reminderMinutes"`
	TargetUIDs      []string  `json:"targetUids"`
	CreatedBy       string    `json:"createdBy"`
}

// Expense is a shared expense document snapshot.
type Expense struct {
	Title     string  `json:"title"`
	Amount    float64 `json:"amount"`
	CreatedBy string  `json:"createdBy"`
	Status    string  `json:"status"`
}

// PendingApproval is the at-most-one pending custody-template approval
// sub-object of a family's custody settings document.
type PendingApproval struct {
	RequestedBy string `json:"requestedBy"`
}

// CustodySettings is the per-family custody settings document snapshot.
type CustodySettings struct {
	PendingApproval *PendingApproval `json:"pendingApproval"`
}

// Resolved reports whether a status is a terminal resolution.
func Resolved(status string) bool {
	return status == StatusApproved || status == StatusRejected
}

// decode unmarshals a snapshot into dst, leaving dst at its defensive
// defaults when the snapshot is absent or malformed. Missing fields never
// fail a reactor; they decode to zero values (absent amount is zero, absent
// reminder offset is nil).
func decode(raw json.RawMessage, dst any) {
	if len(raw) == 0 {
		return
	}
	_ = json.Unmarshal(raw, dst)
}

func (c Change) SwapBefore() (s SwapRequest) { decode(c.Before, &s); return }
func (c Change) SwapAfter() (s SwapRequest)  { decode(c.After, &s); return }

func (c Change) EventBefore() (e CalendarEvent) { decode(c.Before, &e); return }
func (c Change) EventAfter() (e CalendarEvent)  { decode(c.After, &e); return }

func (c Change) ExpenseBefore() (e Expense) { decode(c.Before, &e); return }
func (c Change) ExpenseAfter() (e Expense)  { decode(c.After, &e); return }

func (c Change) CustodyBefore() (s CustodySettings) { decode(c.Before, &s); return }
func (c Change) CustodyAfter() (s CustodySettings)  { decode(c.After, &s); return }
