package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// RunTimeout bounds a single scheduled run
const RunTimeout = 30 * time.Minute

// Runner executes one ranking run
type Runner interface {
	Run(ctx context.Context) error
}

// Recorder is told about the outcome of every run
type Recorder interface {
	Record(at time.Time, err error)
}

// Scheduler runs the ranking on a cron schedule
type Scheduler struct {
	cron     *cron.Cron
	spec     string
	runner   Runner
	recorder Recorder
}

// New creates a new scheduler. recorder may be nil.
func New(spec string, loc *time.Location, runner Runner, recorder Recorder) *Scheduler {
	if loc == nil {
		loc = time.Local
	}
	return &Scheduler{
		cron:     cron.New(cron.WithLocation(loc)),
		spec:     spec,
		runner:   runner,
		recorder: recorder,
	}
}

// Start schedules the run and blocks until ctx is cancelled
func (s *Scheduler) Start(ctx context.Context) error {
	logrus.Infof("Starting scheduler with schedule: %s", s.spec)

	_, err := s.cron.AddFunc(s.spec, func() {
		logrus.Info("Running scheduled ranking")
		if err := s.RunNow(ctx); err != nil {
			logrus.Errorf("Scheduled ranking failed: %v", err)
		}
	})
	if err != nil {
		logrus.Errorf("Failed to schedule ranking job: %v", err)
		return err
	}

	s.cron.Start()

	// Wait for context cancellation
	<-ctx.Done()
	logrus.Info("Stopping scheduler...")
	<-s.cron.Stop().Done()
	return nil
}

// RunNow runs the ranking immediately and reports the outcome
func (s *Scheduler) RunNow(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, RunTimeout)
	defer cancel()

	err := s.runner.Run(ctx)
	if s.recorder != nil {
		s.recorder.Record(time.Now(), err)
	}
	return err
}

// Next returns when the job fires next, or the zero time before Start
func (s *Scheduler) Next() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}
