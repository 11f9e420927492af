// internal/app/push_service.go
package app

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"coparent_notification_service/internal/domain/push"
	"coparent_notification_service/internal/domain/user"
	idb "coparent_notification_service/internal/infra/database"
)

// PushService is the push delivery gateway: it turns "notify these users"
// into one multicast send over their registered device tokens, then prunes
// tokens the provider reports as permanently invalid. Delivery is
// best-effort; nothing here ever blocks or fails the triggering mutation.
type PushService struct {
	userRepo user.Repository
	client   push.Client
	logger   *logrus.Entry
}

func NewPushService(ur user.Repository, client push.Client, logger *logrus.Entry) *PushService {
	return &PushService{userRepo: ur, client: client, logger: logger}
}

// Deliver sends one notification to a single user. Empty user ID, missing
// user record and empty token set are all silent no-ops.
func (s *PushService) Deliver(ctx context.Context, userID string, n push.Notification, data map[string]string) error {
	if userID == "" {
		return nil
	}
	_, err := s.DeliverToUsers(ctx, []string{userID}, n, data)
	return err
}

// DeliverToUsers unions the device tokens of all given users into one
// de-duplicated set and performs a single multicast send. It returns whether
// a send was attempted; an empty union is a logged no-op, not an error.
// After the attempt, provider-reported invalid tokens are removed from the
// owning users' token sets. Other per-token failures are transient and left
// alone.
func (s *PushService) DeliverToUsers(ctx context.Context, userIDs []string, n push.Notification, data map[string]string) (bool, error) {
	tokens := make([]string, 0)
	owners := make(map[string][]string) // token -> user IDs holding it
	for _, uid := range dedupe(userIDs) {
		u, err := s.userRepo.GetByID(ctx, uid)
		if err != nil {
			if err == idb.ErrUserNotFound {
				s.logger.Debugf("push delivery skipped, user %s not found", uid)
				continue
			}
			s.logger.WithError(err).Warnf("failed to load user %s for push delivery", uid)
			continue
		}
		for _, t := range u.DeviceTokens {
			if t == "" {
				continue
			}
			if _, seen := owners[t]; !seen {
				tokens = append(tokens, t)
			}
			owners[t] = append(owners[t], u.ID)
		}
	}

	if len(tokens) == 0 {
		s.logger.Debugf("push delivery skipped, no device tokens for users %v", userIDs)
		return false, nil
	}

	report, err := s.client.SendMulticast(ctx, tokens, n, data)
	if err != nil {
		// Whole-batch provider failure: surface to the caller, who treats it
		// as best-effort. No token state is touched.
		return false, fmt.Errorf("multicast send failed: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"success": report.SuccessCount,
		"failure": report.FailureCount,
		"invalid": len(report.InvalidTokens),
	}).Debugf("multicast send completed for %d tokens", len(tokens))

	s.pruneInvalidTokens(ctx, report.InvalidTokens, owners)
	return true, nil
}

// pruneInvalidTokens removes permanently invalid tokens from every user that
// registered them. Pruning failures are logged and swallowed; the tokens
// will be reported invalid again on the next send.
func (s *PushService) pruneInvalidTokens(ctx context.Context, invalid []string, owners map[string][]string) {
	if len(invalid) == 0 {
		return
	}
	perUser := make(map[string][]string)
	for _, t := range invalid {
		for _, uid := range owners[t] {
			perUser[uid] = append(perUser[uid], t)
		}
	}
	for uid, tokens := range perUser {
		if err := s.userRepo.RemoveTokens(ctx, uid, tokens); err != nil {
			s.logger.WithError(err).Warnf("failed to prune %d invalid tokens for user %s", len(tokens), uid)
			continue
		}
		s.logger.Infof("pruned %d invalid device tokens for user %s", len(tokens), uid)
	}
}
