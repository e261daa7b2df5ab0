package rules

import (
	"math"
	"time"
)

const MinAge = 18

func Age(birthdate, now time.Time) int {
	if birthdate.IsZero() {
		return 0
	}
	b := birthdate.UTC()
	n := now.UTC()
	age := n.Year() - b.Year()
	if n.Month() < b.Month() || (n.Month() == b.Month() && n.Day() < b.Day()) {
		age--
	}
	if age < 0 {
		return 0
	}
	return age
}

// DistanceKM computes the great-circle distance between two coordinates
// using the haversine formula.
func DistanceKM(lat1, lon1, lat2, lon2 float64) float64 {
	const earthRadiusKM = 6371.0

	rad := func(deg float64) float64 { return deg * math.Pi / 180 }
	dLat := rad(lat2 - lat1)
	dLon := rad(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rad(lat1))*math.Cos(rad(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	return earthRadiusKM * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// NormalizeAgePreference swaps an inverted window and clamps the lower
// bound to the minimum allowed age.
func NormalizeAgePreference(minAge, maxAge int) (int, int) {
	if minAge > maxAge {
		minAge, maxAge = maxAge, minAge
	}
	if minAge < MinAge {
		minAge = MinAge
	}
	if maxAge < minAge {
		maxAge = minAge
	}
	return minAge, maxAge
}
