package utils

import (
	"sort"
	"strings"
	"time"

	"blooddrive-backend/internal/domain"
)

const DefaultTopN = 5

// DonorTally is one row of the top-donor ranking.
type DonorTally struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Count int    `json:"count"`
}

// BloodGroupCount is one row of a per-blood-type ranking.
type BloodGroupCount struct {
	BloodType domain.BloodType `json:"blood_type"`
	Count     int              `json:"count"`
}

// DonationStats summarises donations for the admin dashboard. Calendar
// buckets are computed in UTC.
type DonationStats struct {
	Total        int                      `json:"total"`
	MonthlyCount int                      `json:"monthly_count"`
	YearlyCount  int                      `json:"yearly_count"`
	ByBloodGroup map[domain.BloodType]int `json:"by_blood_group"`
	TopDonors    []DonorTally             `json:"top_donors"`
}

// SummarizeDonations counts donations by calendar month/year of now, by
// blood type, and ranks donors by donation count. Donors are keyed by
// lowercased email; donations without a joined email are left out of the
// ranking only.
func SummarizeDonations(donations []domain.DonationWithDonor, now time.Time, topN int) DonationStats {
	now = now.UTC()
	stats := DonationStats{
		Total:        len(donations),
		ByBloodGroup: make(map[domain.BloodType]int),
	}

	tallies := make(map[string]*DonorTally)
	for _, d := range donations {
		date := d.Date.UTC()
		if date.Year() == now.Year() {
			stats.YearlyCount++
			if date.Month() == now.Month() {
				stats.MonthlyCount++
			}
		}

		if d.BloodType != "" {
			stats.ByBloodGroup[d.BloodType]++
		}

		if d.Donor == nil || strings.TrimSpace(d.Donor.Email) == "" {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(d.Donor.Email))
		t, ok := tallies[key]
		if !ok {
			t = &DonorTally{Name: d.Donor.Name, Email: key}
			tallies[key] = t
		}
		t.Count++
	}

	ranked := make([]DonorTally, 0, len(tallies))
	for _, t := range tallies {
		ranked = append(ranked, *t)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Email < ranked[j].Email
	})
	stats.TopDonors = truncate(ranked, topN)

	return stats
}

// TopDemandGroups ranks blood types by the number of pending requests.
func TopDemandGroups(requests []domain.BloodRequest, n int) []BloodGroupCount {
	counts := make(map[domain.BloodType]int)
	for _, r := range requests {
		if r.Status != domain.RequestStatusPending {
			continue
		}
		counts[r.BloodType]++
	}

	ranked := make([]BloodGroupCount, 0, len(counts))
	for bt, c := range counts {
		ranked = append(ranked, BloodGroupCount{BloodType: bt, Count: c})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].BloodType < ranked[j].BloodType
	})
	return truncate(ranked, n)
}

// Dashboard is the admin overview served from cache.
type Dashboard struct {
	Donations       DonationStats     `json:"donations"`
	TopDemand       []BloodGroupCount `json:"top_demand"`
	TotalDonors     int               `json:"total_donors"`
	EligibleDonors  int               `json:"eligible_donors"`
	PendingRequests int               `json:"pending_requests"`
	GeneratedAt     time.Time         `json:"generated_at"`
}

// BuildDashboard combines the donation summary with donor and request counts.
func BuildDashboard(donors []domain.Donor, donations []domain.DonationWithDonor, requests []domain.BloodRequest, now time.Time, topN int) Dashboard {
	dash := Dashboard{
		Donations:   SummarizeDonations(donations, now, topN),
		TopDemand:   TopDemandGroups(requests, topN),
		TotalDonors: len(donors),
		GeneratedAt: now.UTC(),
	}
	for _, d := range donors {
		if d.IsEligible {
			dash.EligibleDonors++
		}
	}
	for _, r := range requests {
		if r.Status == domain.RequestStatusPending {
			dash.PendingRequests++
		}
	}
	return dash
}

func truncate[T any](s []T, n int) []T {
	if n <= 0 {
		n = DefaultTopN
	}
	if len(s) > n {
		return s[:n]
	}
	return s
}
