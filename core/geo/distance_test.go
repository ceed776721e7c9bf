package geo

import (
	"math"
	"testing"
)

func TestHaversineKm_Identity(t *testing.T) {
	if d := HaversineKm(13.0827, 80.2707, 13.0827, 80.2707); math.Abs(d) > 1e-6 {
		t.Fatalf("distance to self should be zero, got %v", d)
	}
}

func TestHaversineKm_Symmetry(t *testing.T) {
	points := [][4]float64{
		{13.0827, 80.2707, 13.0678, 80.2377},
		{48.8566, 2.3522, 51.5074, -0.1278},
		{-33.8688, 151.2093, 35.6762, 139.6503},
		{0, 0, 0, 180},
	}
	for _, p := range points {
		ab := HaversineKm(p[0], p[1], p[2], p[3])
		ba := HaversineKm(p[2], p[3], p[0], p[1])
		if math.Abs(ab-ba) > 1e-6 {
			t.Fatalf("asymmetric distance: %v vs %v", ab, ba)
		}
	}
}

func TestHaversineKm_Chennai(t *testing.T) {
	// T. Nagar to Chennai Central, a known ~3.9 km pair.
	d := RoundKm(HaversineKm(13.0827, 80.2707, 13.0678, 80.2377))
	if d != 3.9 {
		t.Fatalf("expected 3.9 km, got %v", d)
	}
}

func TestRoundKm(t *testing.T) {
	cases := map[float64]float64{
		3.94:  3.9,
		3.95:  4.0,
		0.04:  0.0,
		10.06: 10.1,
	}
	for in, want := range cases {
		if got := RoundKm(in); got != want {
			t.Fatalf("RoundKm(%v) = %v, want %v", in, got, want)
		}
	}
}
