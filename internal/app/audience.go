// internal/app/audience.go
package app

import (
	"context"

	"github.com/sirupsen/logrus"

	"coparent_notification_service/internal/domain/event"
	"coparent_notification_service/internal/domain/family"
)

// AudienceResolver computes the concrete set of user IDs that should receive
// a notification, from either explicit targets or family membership.
type AudienceResolver struct {
	familyRepo family.Repository
	logger     *logrus.Entry
}

func NewAudienceResolver(fr family.Repository, logger *logrus.Entry) *AudienceResolver {
	return &AudienceResolver{familyRepo: fr, logger: logger}
}

// Resolve returns the audience for a family given optional explicit targets
// and a role tag. Explicit targets win unchanged (de-duplicated). Role tags
// map onto lexicographically sorted membership: primary = sorted[0],
// secondary = sorted[1]. Unmapped or missing roles fall back to all members
// rather than silently resolving to nobody. A missing or unreadable family
// resolves to an empty audience; callers must treat that as a no-op.
func (r *AudienceResolver) Resolve(ctx context.Context, familyID string, explicit []string, role string) []string {
	if len(explicit) > 0 {
		return dedupe(explicit)
	}

	f, err := r.familyRepo.GetByID(ctx, familyID)
	if err != nil {
		r.logger.WithError(err).Warnf("audience resolution failed for family %s, resolving to empty", familyID)
		return nil
	}

	sorted := f.SortedMembers()
	switch role {
	case event.RoleParentPrimary:
		if len(sorted) >= 1 {
			return sorted[:1]
		}
		return nil
	case event.RoleParentSecondary:
		if len(sorted) >= 2 {
			return sorted[1:2]
		}
		return nil
	case event.RoleBoth:
		return sorted
	default:
		// Fail open: an unknown role tag still reaches everyone.
		return sorted
	}
}

// OtherParent returns the family member other than actor: the first member
// not equal to the acting user, or the first member when the actor is not in
// the family. Returns false when the family is missing or has no members.
func (r *AudienceResolver) OtherParent(ctx context.Context, familyID, actor string) (string, bool) {
	f, err := r.familyRepo.GetByID(ctx, familyID)
	if err != nil {
		r.logger.WithError(err).Warnf("other-parent resolution failed for family %s", familyID)
		return "", false
	}
	members := f.SortedMembers()
	if len(members) == 0 {
		return "", false
	}
	for _, m := range members {
		if m != actor {
			return m, true
		}
	}
	return members[0], true
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
