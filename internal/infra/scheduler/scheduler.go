package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// DueDispatcher is the slice of the reminder service the scheduler drives.
type DueDispatcher interface {
	DispatchDue(ctx context.Context, limit int) error
}

// DispatchScheduler invokes the due-reminder dispatcher on a fixed wall-clock
// cadence (every minute by default). Invocation is at-least-once: overlapping
// runs are tolerated because reminder selection is guarded by the sent flag.
type DispatchScheduler struct {
	cronEngine *cron.Cron
	dispatcher DueDispatcher
	logger     *logrus.Entry
	cronSpec   string
	batchLimit int
}

func NewDispatchScheduler(dispatcher DueDispatcher, logger *logrus.Entry, cronSpec string, batchLimit int) *DispatchScheduler {
	return &DispatchScheduler{
		cronEngine: cron.New(cron.WithLocation(time.Local)), // Use server's local time for cron
		dispatcher: dispatcher,
		logger:     logger,
		cronSpec:   cronSpec,
		batchLimit: batchLimit,
	}
}

func (s *DispatchScheduler) Start() error {
	_, err := s.cronEngine.AddFunc(s.cronSpec, func() {
		s.logger.Debug("cron job triggered for due-reminder dispatch")
		// The timeout stays under the cadence so a stuck run cannot pile up
		// behind the next tick indefinitely.
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Second)
		defer cancel()
		if err := s.dispatcher.DispatchDue(ctx, s.batchLimit); err != nil {
			s.logger.WithError(err).Error("due-reminder dispatch run failed")
		}
	})
	if err != nil {
		return err
	}

	s.cronEngine.Start()
	s.logger.Infof("dispatch scheduler started (spec %q, batch limit %d)", s.cronSpec, s.batchLimit)
	return nil
}

func (s *DispatchScheduler) Stop() {
	s.logger.Info("stopping dispatch scheduler...")
	ctx := s.cronEngine.Stop() // Stops scheduling new runs, waits for running jobs.
	<-ctx.Done()
	s.logger.Info("dispatch scheduler gracefully stopped")
}
