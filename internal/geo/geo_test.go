package geo

import (
	"math"
	"testing"
)

func TestHaversineZeroForIdenticalPoints(t *testing.T) {
	if d := HaversineKm(48.8566, 2.3522, 48.8566, 2.3522); d != 0 {
		t.Fatalf("expected 0 for identical points, got %f", d)
	}
}

func TestHaversineParisLyon(t *testing.T) {
	d := HaversineKm(48.8566, 2.3522, 45.7640, 4.8357)
	if math.Abs(d-392) > 5 {
		t.Fatalf("expected Paris-Lyon distance around 392km, got %f", d)
	}
}

func TestHaversineSymmetry(t *testing.T) {
	a := HaversineKm(48.8566, 2.3522, 33.8935, -5.5473)
	b := HaversineKm(33.8935, -5.5473, 48.8566, 2.3522)
	if math.Abs(a-b) > 1e-9 {
		t.Fatalf("expected symmetric distances, got %f vs %f", a, b)
	}
}

func TestRoundKm(t *testing.T) {
	cases := []struct {
		in   float64
		want float64
	}{
		{0, 0},
		{1.04, 1.0},
		{1.05, 1.1},
		{391.873, 391.9},
	}
	for _, c := range cases {
		if got := RoundKm(c.in); got != c.want {
			t.Fatalf("RoundKm(%f) = %f, want %f", c.in, got, c.want)
		}
	}
}
