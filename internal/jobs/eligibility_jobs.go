package jobs

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"blooddrive-backend/internal/domain"
	"blooddrive-backend/internal/logger"
)

// reminderWindow is how far back a donor's next eligible date may lie and
// still earn a reminder. It matches the daily schedule so each donor is
// reminded once.
const reminderWindow = 24 * time.Hour

// SendEligibilityReminders tells donors who became eligible in the last day
// that they can donate again.
func (jr *JobRunner) SendEligibilityReminders() {
	jr.runWithRecovery("SendEligibilityReminders", func(ctx context.Context) error {
		_, err := jr.sendEligibilityReminders(ctx)
		return err
	})
}

func (jr *JobRunner) sendEligibilityReminders(ctx context.Context) (int, error) {
	to := jr.now().UTC()
	from := to.Add(-reminderWindow)

	donors, err := jr.donors.ListBecameEligible(ctx, from, to)
	if err != nil {
		return 0, fmt.Errorf("list donors became eligible: %w", err)
	}

	count := 0
	for i := range donors {
		d := &donors[i]
		if d.NextEligibleDate == nil {
			continue
		}
		reached := false

		if d.UserID != nil && jr.services.Notifications != nil {
			jr.services.Notifications.Notify(ctx, *d.UserID, "You can donate again",
				fmt.Sprintf("Hi %s, you have been eligible to donate since %s.", d.Name, d.NextEligibleDate.Format("2006-01-02")),
				map[string]string{
					"type":     domain.NotificationEligibleAgain,
					"donor_id": strconv.Itoa(int(d.ID)),
				})
			reached = true
		}

		if d.Email != "" && jr.services.Email != nil {
			if err := jr.services.Email.SendEligibilityReminder(ctx, d.Email, d.Name, *d.NextEligibleDate); err != nil {
				logger.WarnContext(ctx, "Failed to send eligibility reminder email",
					"donor_id", d.ID,
					"email", d.Email,
					"error", err)
			} else {
				reached = true
			}
		}

		if reached {
			count++
			logger.DebugContext(ctx, "Sent eligibility reminder", "donor_id", d.ID)
		}
	}

	logger.InfoContext(ctx, "Eligibility reminders sent", "count", count, "candidates", len(donors))
	return count, nil
}
