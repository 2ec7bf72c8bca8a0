package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Recomputer rebuilds the denormalised customer counters.
type Recomputer interface {
	RecomputeCustomers(ctx context.Context) (int, error)
}

// Purger drops expired sessions.
type Purger interface {
	PurgeExpired() (int64, error)
}

// Sweeper forgets idle rate limiter entries.
type Sweeper interface {
	Cleanup() int
}

type Options struct {
	RecomputeSchedule string
	Location          *time.Location
	Timeout           time.Duration
}

// Scheduler wraps a cron runner with the housekeeping jobs of the server.
type Scheduler struct {
	cron    *cron.Cron
	timeout time.Duration
}

// New registers the jobs. The recompute schedule is a standard five field
// cron expression evaluated in opts.Location.
func New(opts Options, stats Recomputer, sessions Purger, limiter Sweeper) (*Scheduler, error) {
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}
	printf := cron.PrintfLogger(logrus.StandardLogger())
	s := &Scheduler{
		cron:    cron.New(cron.WithLocation(loc), cron.WithChain(cron.Recover(printf), cron.SkipIfStillRunning(printf))),
		timeout: timeout,
	}

	if _, err := s.cron.AddFunc(opts.RecomputeSchedule, s.recompute(stats)); err != nil {
		return nil, fmt.Errorf("recompute schedule %q: %w", opts.RecomputeSchedule, err)
	}
	if sessions != nil {
		if _, err := s.cron.AddFunc("@every 1h", func() {
			n, err := sessions.PurgeExpired()
			if err != nil {
				logrus.WithError(err).Error("jobs: purge sessions failed")
				return
			}
			if n > 0 {
				logrus.WithField("sessions", n).Info("jobs: expired sessions purged")
			}
		}); err != nil {
			return nil, err
		}
	}
	if limiter != nil {
		if _, err := s.cron.AddFunc("@every 10m", func() {
			if n := limiter.Cleanup(); n > 0 {
				logrus.WithField("visitors", n).Debug("jobs: rate limiter swept")
			}
		}); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Scheduler) recompute(stats Recomputer) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		start := time.Now()
		n, err := stats.RecomputeCustomers(ctx)
		if err != nil {
			logrus.WithError(err).Error("jobs: customer recompute failed")
			return
		}
		logrus.WithFields(logrus.Fields{"customers": n, "took": time.Since(start).String()}).Info("jobs: customer counters recomputed")
	}
}

func (s *Scheduler) Start() { s.cron.Start() }

// Stop waits for running jobs or ctx, whichever ends first.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}

// Entries reports how many jobs are registered.
func (s *Scheduler) Entries() int { return len(s.cron.Entries()) }

// RunRecompute runs the recompute job once, outside the schedule.
func (s *Scheduler) RunRecompute(stats Recomputer) { s.recompute(stats)() }
