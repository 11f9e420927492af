package family

import (
	"sort"
	"time"
)

// Family is a group of co-parenting users sharing calendar, expense and
// custody data. Membership is maintained by the onboarding/linking flows;
// this service only reads it.
type Family struct {
	ID        string
	MemberIDs []string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SortedMembers returns the member IDs in lexicographic order.
// Parent role assignment (primary = sorted[0], secondary = sorted[1])
// depends on this exact ordering; do not change the tie-break.
func (f *Family) SortedMembers() []string {
	members := make([]string, len(f.MemberIDs))
	copy(members, f.MemberIDs)
	sort.Strings(members)
	return members
}
