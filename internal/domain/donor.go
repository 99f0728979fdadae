package domain

import "time"

type BloodType string

const (
	BloodTypeAPos  BloodType = "A+"
	BloodTypeANeg  BloodType = "A-"
	BloodTypeBPos  BloodType = "B+"
	BloodTypeBNeg  BloodType = "B-"
	BloodTypeABPos BloodType = "AB+"
	BloodTypeABNeg BloodType = "AB-"
	BloodTypeOPos  BloodType = "O+"
	BloodTypeONeg  BloodType = "O-"
)

// BloodTypes lists the closed set of ABO/Rh combinations in display order.
var BloodTypes = []BloodType{
	BloodTypeAPos, BloodTypeANeg,
	BloodTypeBPos, BloodTypeBNeg,
	BloodTypeABPos, BloodTypeABNeg,
	BloodTypeOPos, BloodTypeONeg,
}

func (b BloodType) Valid() bool {
	for _, t := range BloodTypes {
		if t == b {
			return true
		}
	}
	return false
}

const (
	MinDonorAge      = 18
	MaxDonorAge      = 65
	MinDonorWeightKg = 50.0
)

// Donor is a registered blood donor. IsEligible is an admin-controlled
// override; date-based eligibility is derived separately and is advisory.
type Donor struct {
	ID               int32      `json:"id"`
	UserID           *int32     `json:"user_id,omitempty"`
	Name             string     `json:"name"`
	Email            string     `json:"email,omitempty"`
	Phone            string     `json:"phone"`
	Age              int        `json:"age"`
	WeightKg         *float64   `json:"weight_kg,omitempty"`
	BloodType        BloodType  `json:"blood_type"`
	City             string     `json:"city"`
	Address          string     `json:"address,omitempty"`
	Latitude         *float64   `json:"latitude,omitempty"`
	Longitude        *float64   `json:"longitude,omitempty"`
	IsEligible       bool       `json:"is_eligible"`
	LastDonationDate *time.Time `json:"last_donation_date"`
	NextEligibleDate *time.Time `json:"next_eligible_date"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

func (d *Donor) HasLocation() bool {
	return d.Latitude != nil && d.Longitude != nil
}

// OwnedBy reports whether the donor record is linked to the given auth identity.
func (d *Donor) OwnedBy(userID int32) bool {
	return d.UserID != nil && *d.UserID == userID
}

// DonorWithCount pairs a donor with the number of donations referencing it.
type DonorWithCount struct {
	Donor
	DonationCount int `json:"donation_count"`
}

// NearbyDonor is a donor annotated with great-circle distance from a query point.
type NearbyDonor struct {
	Donor
	DistanceKm float64 `json:"distance_km"`
}
