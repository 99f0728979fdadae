package utils

import (
	"math"
	"sort"

	"blooddrive-backend/internal/domain"
)

const earthRadiusKm = 6371.0

// HaversineKm calculates the great-circle distance between two lat/lng points in kilometres
func HaversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	lat1Rad := lat1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	deltaLat := (lat2 - lat1) * math.Pi / 180
	deltaLng := (lng2 - lng1) * math.Pi / 180

	a := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(deltaLng/2)*math.Sin(deltaLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

// NearbyDonors returns donors with stored coordinates within radiusKm of the
// point, closest first. A non-positive radius disables the cutoff.
func NearbyDonors(donors []domain.Donor, lat, lng, radiusKm float64) []domain.NearbyDonor {
	var out []domain.NearbyDonor
	for _, d := range donors {
		if !d.HasLocation() {
			continue
		}
		dist := HaversineKm(lat, lng, *d.Latitude, *d.Longitude)
		if radiusKm > 0 && dist > radiusKm {
			continue
		}
		out = append(out, domain.NearbyDonor{Donor: d, DistanceKm: dist})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DistanceKm < out[j].DistanceKm
	})
	return out
}
