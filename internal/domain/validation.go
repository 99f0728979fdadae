package domain

import (
	"regexp"
	"strings"
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^\+?[0-9][0-9 ()\-]*$`)
)

func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// ValidPhone accepts an optional leading '+', digits, spaces, dashes and
// parentheses, with 7 to 15 digits in total.
func ValidPhone(phone string) bool {
	if !phonePattern.MatchString(phone) {
		return false
	}
	digits := 0
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	return digits >= 7 && digits <= 15
}

// NormalizeDonor trims surrounding whitespace from free-form donor fields.
func NormalizeDonor(d *Donor) {
	d.Name = strings.TrimSpace(d.Name)
	d.Email = strings.TrimSpace(d.Email)
	d.Phone = strings.TrimSpace(d.Phone)
	d.City = strings.TrimSpace(d.City)
	d.Address = strings.TrimSpace(d.Address)
	d.BloodType = BloodType(strings.ToUpper(strings.TrimSpace(string(d.BloodType))))
}

// ValidateDonor checks every field constraint of a donor record. The first
// violation is returned.
func ValidateDonor(d *Donor) error {
	if d.Name == "" {
		return NewValidationError("name", "is required")
	}
	if d.Phone == "" {
		return NewValidationError("phone", "is required")
	}
	if d.BloodType == "" {
		return NewValidationError("blood_type", "is required")
	}
	if d.Age == 0 {
		return NewValidationError("age", "is required")
	}
	if d.City == "" {
		return NewValidationError("city", "is required")
	}
	if !d.BloodType.Valid() {
		return NewValidationError("blood_type", "must be one of A+, A-, B+, B-, AB+, AB-, O+, O-")
	}
	if d.Age < MinDonorAge || d.Age > MaxDonorAge {
		return NewValidationError("age", "must be between %d and %d", MinDonorAge, MaxDonorAge)
	}
	if d.WeightKg != nil && *d.WeightKg < MinDonorWeightKg {
		return NewValidationError("weight_kg", "must be at least %.0f kg", MinDonorWeightKg)
	}
	if d.Email != "" && !ValidEmail(d.Email) {
		return NewValidationError("email", "is not a valid email address")
	}
	if !ValidPhone(d.Phone) {
		return NewValidationError("phone", "is not a valid phone number")
	}
	if (d.Latitude == nil) != (d.Longitude == nil) {
		return NewValidationError("location", "latitude and longitude must be given together")
	}
	if d.Latitude != nil && (*d.Latitude < -90 || *d.Latitude > 90) {
		return NewValidationError("latitude", "must be between -90 and 90")
	}
	if d.Longitude != nil && (*d.Longitude < -180 || *d.Longitude > 180) {
		return NewValidationError("longitude", "must be between -180 and 180")
	}
	return nil
}

// ValidateRequestInput checks required fields and closed-set values of a
// new blood request.
func ValidateRequestInput(in *RequestInput) error {
	in.RequesterName = strings.TrimSpace(in.RequesterName)
	in.City = strings.TrimSpace(in.City)
	in.Address = strings.TrimSpace(in.Address)
	in.ContactPhone = strings.TrimSpace(in.ContactPhone)
	in.BloodType = BloodType(strings.ToUpper(strings.TrimSpace(string(in.BloodType))))
	if in.Urgency == "" {
		in.Urgency = UrgencyNormal
	}

	if in.RequesterName == "" {
		return NewValidationError("requester_name", "is required")
	}
	if in.BloodType == "" {
		return NewValidationError("blood_type", "is required")
	}
	if !in.BloodType.Valid() {
		return NewValidationError("blood_type", "must be one of A+, A-, B+, B-, AB+, AB-, O+, O-")
	}
	if in.City == "" {
		return NewValidationError("city", "is required")
	}
	if in.ContactPhone == "" {
		return NewValidationError("contact_phone", "is required")
	}
	if !ValidPhone(in.ContactPhone) {
		return NewValidationError("contact_phone", "is not a valid phone number")
	}
	if !in.Urgency.Valid() {
		return NewValidationError("urgency", "must be one of normal, critical, needed_today")
	}
	return nil
}

func ValidateDonationInput(in *DonationInput) error {
	in.RecipientName = strings.TrimSpace(in.RecipientName)
	in.City = strings.TrimSpace(in.City)
	in.BloodType = BloodType(strings.ToUpper(strings.TrimSpace(string(in.BloodType))))
	if in.RecipientName == "" {
		return NewValidationError("recipient_name", "is required")
	}
	if in.BloodType != "" && !in.BloodType.Valid() {
		return NewValidationError("blood_type", "must be one of A+, A-, B+, B-, AB+, AB-, O+, O-")
	}
	return nil
}
