// internal/app/reactor.go
package app

import (
	"context"

	"github.com/sirupsen/logrus"

	"coparent_notification_service/internal/domain/event"
)

// DecisionFunc computes intended side effects from a document change,
// without performing any I/O.
type DecisionFunc func(event.Change) []event.Effect

type handlerKey struct {
	collection event.Collection
	kind       event.Kind
}

// Reactor routes document changes through an explicit registration table of
// decision functions and applies the resulting effects. All failures are
// logged and swallowed: the primary mutation has already committed, and a
// notification must never roll it back.
type Reactor struct {
	audience  *AudienceResolver
	push      *PushService
	reminders *ReminderService
	logger    *logrus.Entry
	handlers  map[handlerKey]DecisionFunc
}

func NewReactor(ar *AudienceResolver, ps *PushService, rs *ReminderService, logger *logrus.Entry) *Reactor {
	r := &Reactor{
		audience:  ar,
		push:      ps,
		reminders: rs,
		logger:    logger,
		handlers:  make(map[handlerKey]DecisionFunc),
	}

	r.Handle(event.CollectionSwapRequests, event.KindCreated, decideSwapCreated)
	r.Handle(event.CollectionSwapRequests, event.KindUpdated, decideSwapUpdated)
	r.Handle(event.CollectionCalendarEvents, event.KindCreated, decideCalendarCreated)
	r.Handle(event.CollectionCalendarEvents, event.KindUpdated, decideCalendarUpdated)
	r.Handle(event.CollectionCalendarEvents, event.KindDeleted, decideCalendarDeleted)
	r.Handle(event.CollectionExpenses, event.KindCreated, decideExpenseCreated)
	r.Handle(event.CollectionExpenses, event.KindUpdated, decideExpenseUpdated)
	r.Handle(event.CollectionCustodySettings, event.KindCreated, decideCustodyChanged)
	r.Handle(event.CollectionCustodySettings, event.KindUpdated, decideCustodyChanged)

	return r
}

// Handle registers the decision function for one (collection, kind) pair.
func (r *Reactor) Handle(collection event.Collection, kind event.Kind, fn DecisionFunc) {
	r.handlers[handlerKey{collection, kind}] = fn
}

// HandleChange processes one document change end to end: decide, then apply.
// Changes with no registered handler are ignored.
func (r *Reactor) HandleChange(ctx context.Context, ch event.Change) {
	log := r.logger.WithFields(logrus.Fields{
		"change_id":  ch.ID,
		"collection": ch.Collection,
		"kind":       ch.Kind,
		"family_id":  ch.FamilyID,
		"doc_id":     ch.DocID,
	})

	fn, ok := r.handlers[handlerKey{ch.Collection, ch.Kind}]
	if !ok {
		log.Debug("no handler registered for change, ignoring")
		return
	}

	effects := fn(ch)
	if len(effects) == 0 {
		log.Debug("change produced no effects")
		return
	}

	for _, eff := range effects {
		r.apply(ctx, ch.FamilyID, eff, log)
	}
}

func (r *Reactor) apply(ctx context.Context, familyID string, eff event.Effect, log *logrus.Entry) {
	switch e := eff.(type) {
	case event.SendPush:
		recipients := r.resolveAudience(ctx, familyID, e.Audience)
		if len(recipients) == 0 {
			log.Debug("push effect resolved to empty audience, skipping")
			return
		}
		for _, uid := range recipients {
			if err := r.push.Deliver(ctx, uid, e.Notification, e.Data); err != nil {
				log.WithError(err).Warnf("push delivery to user %s failed", uid)
			}
		}
	case event.UpsertReminder:
		if err := r.reminders.Upsert(ctx, e.FamilyID, e.EventID, e.StartAt, e.ReminderMinutes, e.TargetUIDs, e.Title); err != nil {
			log.WithError(err).Warn("reminder upsert failed")
		}
	case event.DeleteReminder:
		if err := r.reminders.Delete(ctx, e.FamilyID, e.EventID); err != nil {
			log.WithError(err).Warn("reminder delete failed")
		}
	default:
		log.Warnf("unknown effect type %T", eff)
	}
}

func (r *Reactor) resolveAudience(ctx context.Context, familyID string, a event.Audience) []string {
	var recipients []string
	switch {
	case len(a.Explicit) > 0:
		recipients = r.audience.Resolve(ctx, familyID, a.Explicit, "")
	case a.OtherParentOf != "":
		if other, ok := r.audience.OtherParent(ctx, familyID, a.OtherParentOf); ok {
			recipients = []string{other}
		}
	default:
		recipients = r.audience.Resolve(ctx, familyID, nil, a.Role)
	}

	if len(a.Exclude) == 0 {
		return recipients
	}
	excluded := make(map[string]struct{}, len(a.Exclude))
	for _, id := range a.Exclude {
		excluded[id] = struct{}{}
	}
	out := recipients[:0]
	for _, id := range recipients {
		if _, skip := excluded[id]; !skip {
			out = append(out, id)
		}
	}
	return out
}
