package scheduler

import (
	"fmt"
	"time"

	"blooddrive-backend/internal/jobs"
	"blooddrive-backend/internal/logger"

	"github.com/robfig/cron/v3"
)

// Scheduler manages cron job scheduling
type Scheduler struct {
	cron *cron.Cron
	jobs *jobs.JobRunner
}

// NewScheduler creates a scheduler and registers every job whose schedule
// is set. An unparsable schedule is an error so a bad config fails at boot.
func NewScheduler(jobRunner *jobs.JobRunner) (*Scheduler, error) {
	// Create cron with UTC timezone and seconds precision
	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithSeconds(),
	)

	s := &Scheduler{
		cron: c,
		jobs: jobRunner,
	}

	if err := s.registerJobs(); err != nil {
		return nil, err
	}
	return s, nil
}

// registerJobs registers all scheduled jobs with the cron scheduler
func (s *Scheduler) registerJobs() error {
	cfg := s.jobs.Config().Scheduler

	entries := []struct {
		name string
		spec string
		fn   func()
	}{
		{"SendEligibilityReminders", cfg.EligibilityReminders, s.jobs.SendEligibilityReminders},
		{"WarmDashboardCache", cfg.WarmDashboardCache, s.jobs.WarmDashboardCache},
		{"ProbeDatabase", cfg.DatabaseHealthProbe, s.jobs.ProbeDatabase},
		{"PurgeExpiredExports", cfg.PurgeExpiredExports, s.jobs.PurgeExpiredExports},
	}

	for _, e := range entries {
		if e.spec == "" || e.spec == "off" {
			logger.Info("Cron job disabled", "job", e.name)
			continue
		}
		if _, err := s.cron.AddFunc(e.spec, e.fn); err != nil {
			return fmt.Errorf("register %s job (%q): %w", e.name, e.spec, err)
		}
		logger.Debug("Cron job registered", "job", e.name, "schedule", e.spec)
	}

	logger.Info("Cron jobs registered", "count", len(s.cron.Entries()))
	return nil
}

// Start begins the cron scheduler
func (s *Scheduler) Start() {
	logger.Info("Starting cron scheduler...")
	s.cron.Start()
}

// Stop gracefully stops the cron scheduler, waiting for running jobs.
func (s *Scheduler) Stop() {
	logger.Info("Stopping cron scheduler...")
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.Info("Cron scheduler stopped")
}

// EntryCount returns the number of registered jobs.
func (s *Scheduler) EntryCount() int {
	return len(s.cron.Entries())
}
