package domain

import "time"

type DonationStatus string

const (
	DonationStatusCompleted DonationStatus = "completed"
)

type Donation struct {
	ID             int32          `json:"id"`
	DonorID        int32          `json:"donor_id"`
	RequestID      *int32         `json:"request_id,omitempty"`
	RecipientName  string         `json:"recipient_name"`
	BloodType      BloodType      `json:"blood_type"`
	City           string         `json:"city"`
	Date           time.Time      `json:"date"`
	Status         DonationStatus `json:"status"`
	IdempotencyKey *string        `json:"idempotency_key,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
}

// DonorRef is the subset of donor fields joined onto donations for reporting.
type DonorRef struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// DonationWithDonor is a donation row with its donor joined in, if any.
type DonationWithDonor struct {
	Donation
	Donor *DonorRef `json:"donor,omitempty"`
}

// DonationInput is an admin-logged donation with no originating request.
type DonationInput struct {
	RecipientName  string     `json:"recipient_name"`
	BloodType      BloodType  `json:"blood_type,omitempty"`
	City           string     `json:"city,omitempty"`
	Date           *time.Time `json:"date,omitempty"`
	IdempotencyKey string     `json:"idempotency_key,omitempty"`
}
