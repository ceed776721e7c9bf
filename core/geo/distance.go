package geo

import "math"

// EarthRadiusKm is Earth's mean radius used for the haversine calculation.
const EarthRadiusKm = 6371.0

// HaversineKm returns the great-circle distance between two points on Earth
// in kilometers using the haversine formula. Inputs are decimal degrees.
func HaversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	const degToRad = math.Pi / 180
	dLat := (lat2 - lat1) * degToRad
	dLng := (lng2 - lng1) * degToRad
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*degToRad)*math.Cos(lat2*degToRad)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusKm * c
}

// RoundKm rounds a distance to one decimal, the precision used for
// dispatch decisions and display.
func RoundKm(km float64) float64 {
	return math.Round(km*10) / 10
}
