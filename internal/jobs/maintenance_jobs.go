package jobs

import (
	"context"
	"fmt"
	"time"

	"blooddrive-backend/internal/logger"
)

const probeTimeout = 5 * time.Second

// WarmDashboardCache recomputes the admin dashboard so the first request
// after a change does not pay for the aggregation.
func (jr *JobRunner) WarmDashboardCache() {
	jr.runWithRecovery("WarmDashboardCache", jr.warmDashboardCache)
}

func (jr *JobRunner) warmDashboardCache(ctx context.Context) error {
	if jr.services.Reports == nil {
		logger.DebugContext(ctx, "Dashboard warm-up skipped, no report service")
		return nil
	}
	dash, err := jr.services.Reports.RefreshDashboard(ctx)
	if err != nil {
		return fmt.Errorf("refresh dashboard: %w", err)
	}
	logger.DebugContext(ctx, "Dashboard cache warmed", "total_donors", dash.TotalDonors)
	return nil
}

// PurgeExpiredExports deletes exported donor workbooks once their download
// link has expired. The workbooks hold donor contact details.
func (jr *JobRunner) PurgeExpiredExports() {
	jr.runWithRecovery("PurgeExpiredExports", jr.purgeExpiredExports)
}

func (jr *JobRunner) purgeExpiredExports(ctx context.Context) error {
	if jr.services.Reports == nil {
		return nil
	}
	n, err := jr.services.Reports.PurgeExpiredExports(ctx)
	if err != nil {
		return fmt.Errorf("purge exports: %w", err)
	}
	if n > 0 {
		logger.InfoContext(ctx, "Expired exports purged", "count", n)
	}
	return nil
}

// ProbeDatabase pings the database and publishes the result to the health
// reporter.
func (jr *JobRunner) ProbeDatabase() {
	jr.runWithRecovery("ProbeDatabase", jr.probeDatabase)
}

func (jr *JobRunner) probeDatabase(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	err := jr.db.Ping(ctx)
	if jr.health != nil {
		jr.health.SetServing(err == nil)
	}
	if err != nil {
		return fmt.Errorf("database unreachable: %w", err)
	}
	return nil
}
