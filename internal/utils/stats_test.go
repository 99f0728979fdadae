package utils

import (
	"testing"
	"time"

	"blooddrive-backend/internal/domain"

	"github.com/stretchr/testify/assert"
)

func donationOn(date time.Time, bt domain.BloodType, email string) domain.DonationWithDonor {
	d := domain.DonationWithDonor{Donation: domain.Donation{Date: date, BloodType: bt}}
	if email != "" {
		d.Donor = &domain.DonorRef{Name: email, Email: email}
	}
	return d
}

func TestSummarizeDonations(t *testing.T) {
	now := time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)

	t.Run("Monthly and yearly buckets", func(t *testing.T) {
		var donations []domain.DonationWithDonor
		for i := 0; i < 3; i++ {
			donations = append(donations, donationOn(time.Date(2024, 6, 1+i, 0, 0, 0, 0, time.UTC), domain.BloodTypeOPos, ""))
		}
		for i := 0; i < 7; i++ {
			donations = append(donations, donationOn(time.Date(2024, time.Month(1+i%5), 10, 0, 0, 0, 0, time.UTC), domain.BloodTypeANeg, ""))
		}
		donations = append(donations,
			donationOn(time.Date(2023, 6, 15, 0, 0, 0, 0, time.UTC), domain.BloodTypeANeg, ""),
			donationOn(time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC), domain.BloodTypeBPos, ""),
		)

		stats := SummarizeDonations(donations, now, 5)
		assert.Equal(t, 12, stats.Total)
		assert.Equal(t, 3, stats.MonthlyCount)
		assert.Equal(t, 10, stats.YearlyCount)
		assert.Equal(t, 3, stats.ByBloodGroup[domain.BloodTypeOPos])
		assert.Equal(t, 8, stats.ByBloodGroup[domain.BloodTypeANeg])
		assert.Equal(t, 1, stats.ByBloodGroup[domain.BloodTypeBPos])
		assert.Empty(t, stats.TopDonors)
	})

	t.Run("Same month of a different year is not monthly", func(t *testing.T) {
		stats := SummarizeDonations([]domain.DonationWithDonor{
			donationOn(time.Date(2023, 6, 15, 0, 0, 0, 0, time.UTC), domain.BloodTypeOPos, ""),
		}, now, 5)
		assert.Equal(t, 0, stats.MonthlyCount)
		assert.Equal(t, 0, stats.YearlyCount)
	})

	t.Run("Top donors dedup by email", func(t *testing.T) {
		date := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		donations := []domain.DonationWithDonor{
			donationOn(date, domain.BloodTypeOPos, "a@example.com"),
			donationOn(date, domain.BloodTypeOPos, "A@Example.com"),
			donationOn(date, domain.BloodTypeOPos, "b@example.com"),
			donationOn(date, domain.BloodTypeOPos, "c@example.com"),
			donationOn(date, domain.BloodTypeOPos, "c@example.com"),
			donationOn(date, domain.BloodTypeOPos, "c@example.com"),
			donationOn(date, domain.BloodTypeOPos, ""),
		}
		stats := SummarizeDonations(donations, now, 2)
		assert.Equal(t, []DonorTally{
			{Name: "c@example.com", Email: "c@example.com", Count: 3},
			{Name: "a@example.com", Email: "a@example.com", Count: 2},
		}, stats.TopDonors)
		assert.Equal(t, 7, stats.ByBloodGroup[domain.BloodTypeOPos])
	})
}

func TestTopDemandGroups(t *testing.T) {
	reqs := []domain.BloodRequest{
		{BloodType: domain.BloodTypeOPos, Status: domain.RequestStatusPending},
		{BloodType: domain.BloodTypeOPos, Status: domain.RequestStatusPending},
		{BloodType: domain.BloodTypeANeg, Status: domain.RequestStatusPending},
		{BloodType: domain.BloodTypeABPos, Status: domain.RequestStatusPending},
		{BloodType: domain.BloodTypeBPos, Status: domain.RequestStatusApproved},
		{BloodType: domain.BloodTypeBPos, Status: domain.RequestStatusApproved},
	}

	got := TopDemandGroups(reqs, 2)
	assert.Equal(t, []BloodGroupCount{
		{BloodType: domain.BloodTypeOPos, Count: 2},
		{BloodType: domain.BloodTypeANeg, Count: 1},
	}, got)

	assert.Len(t, TopDemandGroups(reqs, 0), 3)
	assert.Empty(t, TopDemandGroups(nil, 5))
}

func TestNearbyDonors(t *testing.T) {
	lat := func(f float64) *float64 { return &f }
	donors := []domain.Donor{
		{ID: 1, Latitude: lat(40.7128), Longitude: lat(-74.0060)}, // New York
		{ID: 2, Latitude: lat(40.7306), Longitude: lat(-73.9352)}, // Brooklyn-ish
		{ID: 3},
		{ID: 4, Latitude: lat(42.3601), Longitude: lat(-71.0589)}, // Boston
	}

	got := NearbyDonors(donors, 40.7128, -74.0060, 50)
	assert.Len(t, got, 2)
	assert.Equal(t, int32(1), got[0].ID)
	assert.InDelta(t, 0, got[0].DistanceKm, 0.001)
	assert.Equal(t, int32(2), got[1].ID)

	all := NearbyDonors(donors, 40.7128, -74.0060, 0)
	assert.Len(t, all, 3)
	assert.Equal(t, int32(4), all[2].ID)
	assert.InDelta(t, 306, all[2].DistanceKm, 5)
}

func TestBuildDashboard(t *testing.T) {
	now := time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)
	donors := []domain.Donor{{ID: 1, IsEligible: true}, {ID: 2}, {ID: 3, IsEligible: true}}
	reqs := []domain.BloodRequest{
		{BloodType: domain.BloodTypeOPos, Status: domain.RequestStatusPending},
		{BloodType: domain.BloodTypeOPos, Status: domain.RequestStatusRejected},
	}
	donations := []domain.DonationWithDonor{donationOn(now, domain.BloodTypeOPos, "a@example.com")}

	dash := BuildDashboard(donors, donations, reqs, now, 3)
	assert.Equal(t, 3, dash.TotalDonors)
	assert.Equal(t, 2, dash.EligibleDonors)
	assert.Equal(t, 1, dash.PendingRequests)
	assert.Equal(t, 1, dash.Donations.MonthlyCount)
	assert.Equal(t, []BloodGroupCount{{BloodType: domain.BloodTypeOPos, Count: 1}}, dash.TopDemand)
	assert.Equal(t, now, dash.GeneratedAt)
}
