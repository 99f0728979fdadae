package utils

import "time"

// DefaultCooldownDays is the minimum gap between two donations.
const DefaultCooldownDays = 90

// EligibilityStatus is the date-derived eligibility of a donor. It is
// advisory; the donor's IsEligible flag takes precedence for matching.
type EligibilityStatus struct {
	Eligible         bool       `json:"eligible"`
	DaysRemaining    int        `json:"days_remaining"`
	ProgressPercent  float64    `json:"progress_percent"`
	NextEligibleDate *time.Time `json:"next_eligible_date,omitempty"`
}

// CalculateEligibility derives eligibility from the last donation time.
// A donor who never donated is eligible with full progress.
func CalculateEligibility(lastDonation *time.Time, now time.Time, cooldownDays int) EligibilityStatus {
	if lastDonation == nil || cooldownDays <= 0 {
		return EligibilityStatus{Eligible: true, DaysRemaining: 0, ProgressPercent: 100}
	}

	next := NextEligibleDate(*lastDonation, cooldownDays)
	since := ElapsedDays(*lastDonation, now)

	remaining := cooldownDays - since
	if remaining < 0 {
		remaining = 0
	}

	progress := float64(cooldownDays-remaining) / float64(cooldownDays) * 100
	if progress < 0 {
		progress = 0
	}
	if progress > 100 {
		progress = 100
	}

	return EligibilityStatus{
		Eligible:         since >= cooldownDays,
		DaysRemaining:    remaining,
		ProgressPercent:  progress,
		NextEligibleDate: &next,
	}
}

// NextEligibleDate returns the first moment a donor may give blood again.
func NextEligibleDate(lastDonation time.Time, cooldownDays int) time.Time {
	return AddDays(lastDonation, cooldownDays)
}
