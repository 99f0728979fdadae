package jobs

import (
	"context"
	"fmt"
	"sort"
	"time"

	"blooddrive-backend/internal/config"
	"blooddrive-backend/internal/logger"
	"blooddrive-backend/internal/repository"
	"blooddrive-backend/internal/service"

	"github.com/google/uuid"
)

const jobTimeout = 2 * time.Minute

// Prober checks that the database is reachable.
type Prober interface {
	Ping(ctx context.Context) error
}

// HealthReporter receives the outcome of each database probe.
type HealthReporter interface {
	SetServing(ok bool)
}

// Services holds the service dependencies needed by jobs. Email and Reports
// are optional.
type Services struct {
	Notifications service.NotificationService
	Email         service.EmailService
	Reports       service.ReportService
}

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	donors   repository.DonorRepository
	db       Prober
	health   HealthReporter
	services *Services
	config   *config.Config
	now      func() time.Time
}

// NewJobRunner creates a new job runner with all dependencies
func NewJobRunner(donors repository.DonorRepository, db Prober, services *Services, cfg *config.Config) *JobRunner {
	return &JobRunner{
		donors:   donors,
		db:       db,
		services: services,
		config:   cfg,
		now:      time.Now,
	}
}

// SetHealthReporter wires the database probe to a health endpoint.
func (jr *JobRunner) SetHealthReporter(h HealthReporter) {
	jr.health = h
}

func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// runWithRecovery wraps job execution with panic recovery
// runWithRecovery wraps job execution with panic recovery. Records logged
// through the job's context carry the job name and run id.
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func(ctx context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()
	ctx = logger.With(ctx, "job", jobName, "run_id", uuid.NewString())

	defer func() {
		if r := recover(); r != nil {
			logger.ErrorContext(ctx, "Job panicked", "panic", r)
		}
	}()

	start := time.Now()
	logger.DebugContext(ctx, "Starting job")
	if err := jobFunc(ctx); err != nil {
		logger.ErrorContext(ctx, "Job failed", "error", err, "duration_ms", time.Since(start).Milliseconds())
		return
	}
	logger.DebugContext(ctx, "Job completed", "duration_ms", time.Since(start).Milliseconds())
}

// registry maps the names accepted by Run to jobs.
func (jr *JobRunner) registry() map[string]func() {
	return map[string]func(){
		"eligibility-reminders": jr.SendEligibilityReminders,
		"warm-dashboard-cache":  jr.WarmDashboardCache,
		"database-health-probe": jr.ProbeDatabase,
		"purge-expired-exports": jr.PurgeExpiredExports,
		"all":                   jr.RunAll,
	}
}

// JobNames lists the names accepted by Run, sorted.
func (jr *JobRunner) JobNames() []string {
	names := make([]string, 0, len(jr.registry()))
	for name := range jr.registry() {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Run executes one job by name (for manual execution).
func (jr *JobRunner) Run(name string) error {
	job, ok := jr.registry()[name]
	if !ok {
		return fmt.Errorf("unknown job %q", name)
	}
	job()
	return nil
}

// RunAll runs every job once
func (jr *JobRunner) RunAll() {
	jr.ProbeDatabase()
	jr.SendEligibilityReminders()
	jr.WarmDashboardCache()
	jr.PurgeExpiredExports()
}
