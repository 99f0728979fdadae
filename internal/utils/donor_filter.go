package utils

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"blooddrive-backend/internal/domain"
)

type SearchField string

const (
	SearchByName  SearchField = "name"
	SearchByEmail SearchField = "email"
	SearchByPhone SearchField = "phone"
)

// BloodGroupAll disables the blood group predicate.
const BloodGroupAll = "all"

type SearchQuery struct {
	Field SearchField
	Value string
}

type LocationQuery struct {
	City    string
	Address string
}

// DonorFilter combines every supplied predicate with logical AND. Zero
// values disable a predicate.
type DonorFilter struct {
	Search     *SearchQuery
	Location   LocationQuery
	BloodGroup string
}

func ParseSearchField(s string) (SearchField, error) {
	switch SearchField(strings.ToLower(s)) {
	case "", SearchByName:
		return SearchByName, nil
	case SearchByEmail:
		return SearchByEmail, nil
	case SearchByPhone:
		return SearchByPhone, nil
	}
	return "", domain.NewValidationError("search_field", "must be one of name, email, phone")
}

// FilterDonors returns the donors matching every predicate of f, in input order.
func FilterDonors(donors []domain.Donor, f DonorFilter) []domain.Donor {
	out := make([]domain.Donor, 0, len(donors))
	for _, d := range donors {
		if matchesSearch(&d, f.Search) && matchesLocation(&d, f.Location) && matchesBloodGroup(&d, f.BloodGroup) {
			out = append(out, d)
		}
	}
	return out
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func matchesSearch(d *domain.Donor, q *SearchQuery) bool {
	if q == nil {
		return true
	}
	value := strings.TrimSpace(q.Value)
	if value == "" {
		return true
	}
	switch q.Field {
	case SearchByEmail:
		return containsFold(d.Email, value)
	case SearchByPhone:
		return containsFold(d.Phone, value)
	default:
		return containsFold(d.Name, value)
	}
}

func matchesLocation(d *domain.Donor, q LocationQuery) bool {
	if city := strings.TrimSpace(q.City); city != "" && !containsFold(d.City, city) {
		return false
	}
	if addr := strings.TrimSpace(q.Address); addr != "" && !containsFold(d.Address, addr) {
		return false
	}
	return true
}

func matchesBloodGroup(d *domain.Donor, group string) bool {
	group = strings.TrimSpace(group)
	if group == "" || strings.EqualFold(group, BloodGroupAll) {
		return true
	}
	return strings.EqualFold(string(d.BloodType), group)
}

type SortField string

const (
	SortByName             SortField = "name"
	SortByEmail            SortField = "email"
	SortByPhone            SortField = "phone"
	SortByAge              SortField = "age"
	SortByWeight           SortField = "weight_kg"
	SortByBloodType        SortField = "blood_type"
	SortByCity             SortField = "city"
	SortByAddress          SortField = "address"
	SortByLastDonationDate SortField = "last_donation_date"
	SortByNextEligibleDate SortField = "next_eligible_date"
	SortByCreatedAt        SortField = "created_at"
)

type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

func ParseSort(field, direction string) (SortField, SortDirection, error) {
	f := SortField(strings.ToLower(field))
	switch f {
	case "":
		f = SortByCreatedAt
	case SortByName, SortByEmail, SortByPhone, SortByAge, SortByWeight, SortByBloodType,
		SortByCity, SortByAddress, SortByLastDonationDate, SortByNextEligibleDate, SortByCreatedAt:
	default:
		return "", "", domain.NewValidationError("sort", "unsupported sort field %q", field)
	}

	dir := SortDirection(strings.ToLower(direction))
	switch dir {
	case "":
		dir = SortAsc
	case SortAsc, SortDesc:
	default:
		return "", "", domain.NewValidationError("direction", "must be asc or desc")
	}
	return f, dir, nil
}

// sortKey is a comparable projection of one donor field. present is false
// for missing optional values.
type sortKey struct {
	present bool
	str     string
	num     float64
	isNum   bool
}

func keyFor(d *domain.Donor, field SortField) sortKey {
	str := func(s string) sortKey { return sortKey{present: s != "", str: strings.ToLower(s)} }
	num := func(f float64) sortKey { return sortKey{present: true, num: f, isNum: true} }
	tm := func(t *time.Time) sortKey {
		if t == nil {
			return sortKey{}
		}
		return num(float64(t.UnixNano()))
	}

	switch field {
	case SortByName:
		return str(d.Name)
	case SortByEmail:
		return str(d.Email)
	case SortByPhone:
		return str(d.Phone)
	case SortByAge:
		return num(float64(d.Age))
	case SortByWeight:
		if d.WeightKg == nil {
			return sortKey{}
		}
		return num(*d.WeightKg)
	case SortByBloodType:
		return str(string(d.BloodType))
	case SortByCity:
		return str(d.City)
	case SortByAddress:
		return str(d.Address)
	case SortByLastDonationDate:
		return tm(d.LastDonationDate)
	case SortByNextEligibleDate:
		return tm(d.NextEligibleDate)
	default:
		return tm(&d.CreatedAt)
	}
}

func compareKeys(a, b sortKey) int {
	if a.isNum {
		switch {
		case a.num < b.num:
			return -1
		case a.num > b.num:
			return 1
		}
		return 0
	}
	return strings.Compare(a.str, b.str)
}

// SortDonors returns a stably sorted copy of donors. Missing values sort
// last in either direction.
func SortDonors(donors []domain.Donor, field SortField, dir SortDirection) []domain.Donor {
	out := make([]domain.Donor, len(donors))
	copy(out, donors)

	keys := make([]sortKey, len(out))
	for i := range out {
		keys[i] = keyFor(&out[i], field)
	}
	idx := make([]int, len(out))
	for i := range idx {
		idx[i] = i
	}

	sort.SliceStable(idx, func(i, j int) bool {
		a, b := keys[idx[i]], keys[idx[j]]
		if !a.present || !b.present {
			return a.present && !b.present
		}
		c := compareKeys(a, b)
		if dir == SortDesc {
			return c > 0
		}
		return c < 0
	})

	sorted := make([]domain.Donor, len(out))
	for i, k := range idx {
		sorted[i] = out[k]
	}
	return sorted
}

func (f DonorFilter) String() string {
	search := "-"
	if f.Search != nil {
		search = fmt.Sprintf("%s~%q", f.Search.Field, f.Search.Value)
	}
	return fmt.Sprintf("search=%s city=%q address=%q blood_group=%q", search, f.Location.City, f.Location.Address, f.BloodGroup)
}
