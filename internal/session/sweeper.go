package session

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Sweeper periodically removes expired sessions. Requests already delete
// expired sessions they touch; the sweep reclaims the ones never reused.
type Sweeper struct {
	store  Store
	log    logrus.FieldLogger
	cron   *cron.Cron
	now    func() time.Time
	jobTTL time.Duration
}

func NewSweeper(store Store, log logrus.FieldLogger) *Sweeper {
	return &Sweeper{
		store:  store,
		log:    log,
		cron:   cron.New(cron.WithLocation(time.Local)),
		now:    time.Now,
		jobTTL: time.Minute,
	}
}

// Sweep runs one cleanup pass.
func (s *Sweeper) Sweep(ctx context.Context) (int64, error) {
	return s.store.DeleteExpired(ctx, s.now())
}

// Start schedules Sweep with the given cron spec, e.g. "0 3 * * *".
func (s *Sweeper) Start(spec string) error {
	_, err := s.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.jobTTL)
		defer cancel()

		n, err := s.Sweep(ctx)
		if err != nil {
			s.log.WithError(err).Error("session sweep failed")
			return
		}
		s.log.WithField("deleted", n).Info("session sweep finished")
	})
	if err != nil {
		return fmt.Errorf("schedule session sweep %q: %w", spec, err)
	}
	s.cron.Start()
	s.log.WithField("spec", spec).Info("session sweep scheduled")
	return nil
}

// Stop waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	<-s.cron.Stop().Done()
}
