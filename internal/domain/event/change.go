package event

import (
	"encoding/json"
	"time"
)

// Collection identifies which kind of shared document changed.
type Collection string

const (
	CollectionSwapRequests    Collection = "swap_requests"
	CollectionCalendarEvents  Collection = "calendar_events"
	CollectionExpenses        Collection = "expenses"
	CollectionCustodySettings Collection = "custody_settings"
)

// Kind is the shape of a document change.
type Kind string

const (
	KindCreated Kind = "created"
	KindUpdated Kind = "updated"
	KindDeleted Kind = "deleted"
)

// Change is the envelope the document store publishes for each committed
// mutation: before/after snapshots plus routing metadata. Before is nil for
// creations, After is nil for deletions.
type Change struct {
	ID         string          `json:"id"`
	Collection Collection      `json:"collection"`
	Kind       Kind            `json:"kind"`
	FamilyID   string          `json:"familyId"`
	DocID      string          `json:"docId"`
	Before     json.RawMessage `json:"before"`
	After      json.RawMessage `json:"after"`
	OccurredAt time.Time       `json:"occurredAt"`
}
