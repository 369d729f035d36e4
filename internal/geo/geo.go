package geo

import "math"

const earthRadiusM = 6371000.0

// Fare and ETA defaults for bookings that don't supply their own. The fleet
// runs short fixed-area routes, so a flat per-km model is adequate.
const (
	baseFare    = 2.0  // flag-fall
	farePerKm   = 1.25 // per kilometre
	avgSpeedKmh = 18.0 // conservative urban average
)

// Haversine returns the great-circle distance in meters between two points.
func Haversine(lat1, lng1, lat2, lng2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dPhi := (lat2 - lat1) * math.Pi / 180
	dLambda := (lng2 - lng1) * math.Pi / 180

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusM * c
}

// EstimateFare returns a fare for a trip of the given distance in meters.
func EstimateFare(distanceM float64) float64 {
	return math.Round((baseFare+farePerKm*distanceM/1000)*100) / 100
}

// EstimateMinutes returns an ETA in minutes for the given distance in meters.
func EstimateMinutes(distanceM float64) float64 {
	hours := distanceM / 1000 / avgSpeedKmh
	return math.Round(hours * 60)
}
