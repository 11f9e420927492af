// internal/infra/changefeed/listener.go
package changefeed

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"coparent_notification_service/internal/domain/event"
)

const (
	minReconnectInterval = 10 * time.Second
	maxReconnectInterval = time.Minute
)

// Handler consumes one decoded document change. Each change is dispatched on
// its own goroutine, so handlers for different documents run concurrently.
type Handler func(event.Change)

// Listener bridges the document store's change notifications (Postgres
// LISTEN/NOTIFY) to reactor handlers. Writers commit the primary mutation
// first and then NOTIFY with a before/after envelope, so a dropped
// notification loses only the side effects, never the mutation.
type Listener struct {
	pl      *pq.Listener
	channel string
	handler Handler
	logger  *logrus.Entry
	done    chan struct{}
}

func NewListener(conninfo, channel string, handler Handler, logger *logrus.Entry) *Listener {
	pl := pq.NewListener(conninfo, minReconnectInterval, maxReconnectInterval, func(ev pq.ListenerEventType, err error) {
		if err != nil {
			logger.WithError(err).Warnf("changefeed listener event %d", ev)
		}
	})
	return &Listener{
		pl:      pl,
		channel: channel,
		handler: handler,
		logger:  logger,
		done:    make(chan struct{}),
	}
}

// Start subscribes to the channel and begins dispatching changes. It returns
// once the subscription is established; consumption happens on a background
// goroutine until Stop is called.
func (l *Listener) Start() error {
	if err := l.pl.Listen(l.channel); err != nil {
		return fmt.Errorf("failed to LISTEN on channel %q: %w", l.channel, err)
	}
	go l.consume()
	l.logger.Infof("changefeed listening on channel %q", l.channel)
	return nil
}

func (l *Listener) consume() {
	for {
		select {
		case <-l.done:
			return
		case n := <-l.pl.Notify:
			if n == nil {
				// Connection was re-established; missed notifications are
				// gone. Notifications are best-effort by design.
				l.logger.Warn("changefeed reconnected, notifications may have been missed")
				continue
			}
			ch, err := DecodeChange([]byte(n.Extra))
			if err != nil {
				l.logger.WithError(err).Warn("dropping malformed change envelope")
				continue
			}
			go l.handler(ch)
		case <-time.After(90 * time.Second):
			if err := l.pl.Ping(); err != nil {
				l.logger.WithError(err).Warn("changefeed ping failed")
			}
		}
	}
}

func (l *Listener) Stop() {
	close(l.done)
	if err := l.pl.Close(); err != nil {
		l.logger.WithError(err).Warn("error closing changefeed listener")
	}
}

// DecodeChange parses a change envelope. Envelopes missing routing metadata
// are rejected; snapshot payloads are left raw for the reactors to decode
// defensively.
func DecodeChange(payload []byte) (event.Change, error) {
	var ch event.Change
	if err := json.Unmarshal(payload, &ch); err != nil {
		return event.Change{}, fmt.Errorf("invalid change envelope JSON: %w", err)
	}
	if ch.Collection == "" || ch.Kind == "" || ch.FamilyID == "" || ch.DocID == "" {
		return event.Change{}, fmt.Errorf("change envelope missing routing fields (collection=%q kind=%q family=%q doc=%q)",
			ch.Collection, ch.Kind, ch.FamilyID, ch.DocID)
	}
	return ch, nil
}
