package geo

import (
	"math"
	"testing"
)

func TestHaversine(t *testing.T) {
	tests := []struct {
		name             string
		lat1, lon1       float64
		lat2, lon2       float64
		wantMeters       float64
		tolerancePercent float64
	}{
		{
			name: "Singapore CBD to Changi Airport",
			lat1: 1.2830, lon1: 103.8513, // Raffles Place
			lat2: 1.3644, lon2: 103.9915, // Changi Airport
			wantMeters:       18_023,
			tolerancePercent: 1,
		},
		{
			name: "Same point",
			lat1: 1.3521, lon1: 103.8198,
			lat2: 1.3521, lon2: 103.8198,
			wantMeters:       0,
			tolerancePercent: 0,
		},
		{
			name: "London to Paris",
			lat1: 51.5074, lon1: -0.1278,
			lat2: 48.8566, lon2: 2.3522,
			wantMeters:       343_500,
			tolerancePercent: 1,
		},
		{
			name: "Short distance (~100m)",
			lat1: 1.3521, lon1: 103.8198,
			lat2: 1.3530, lon2: 103.8198,
			wantMeters:       100,
			tolerancePercent: 5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Haversine(tt.lat1, tt.lon1, tt.lat2, tt.lon2)
			if tt.wantMeters == 0 {
				if got != 0 {
					t.Errorf("expected 0, got %f", got)
				}
				return
			}
			diff := math.Abs(got-tt.wantMeters) / tt.wantMeters * 100
			if diff > tt.tolerancePercent {
				t.Errorf("Haversine = %f m, want ~%f m (diff %.1f%%)", got, tt.wantMeters, diff)
			}
		})
	}
}

func TestHaversineKm(t *testing.T) {
	m := Haversine(51.5074, -0.1278, 48.8566, 2.3522)
	km := HaversineKm(51.5074, -0.1278, 48.8566, 2.3522)
	if math.Abs(m/1000-km) > 1e-9 {
		t.Errorf("HaversineKm = %f, want %f", km, m/1000)
	}
}

func TestEquirectangularDist(t *testing.T) {
	// Close to the equator the approximation should track Haversine.
	lat1, lon1 := 1.3521, 103.8198
	lat2, lon2 := 1.3600, 103.8300

	h := Haversine(lat1, lon1, lat2, lon2)
	e := EquirectangularDist(lat1, lon1, lat2, lon2)

	diffPercent := math.Abs(h-e) / h * 100
	if diffPercent > 0.5 {
		t.Errorf("EquirectangularDist differs from Haversine by %.2f%% (haversine=%f, equirect=%f)", diffPercent, h, e)
	}
}

func TestEuclidean(t *testing.T) {
	tests := []struct {
		name       string
		lat1, lon1 float64
		lat2, lon2 float64
		want       float64
	}{
		{name: "3-4-5", lat1: 0, lon1: 0, lat2: 3, lon2: 4, want: 5},
		{name: "same point", lat1: 1.5, lon1: 2.5, lat2: 1.5, lon2: 2.5, want: 0},
		{name: "negative coords", lat1: -1, lon1: -1, lat2: 2, lon2: 3, want: 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Euclidean(tt.lat1, tt.lon1, tt.lat2, tt.lon2)
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("Euclidean = %f, want %f", got, tt.want)
			}
		})
	}
}

func BenchmarkHaversine(b *testing.B) {
	for b.Loop() {
		Haversine(1.3521, 103.8198, 1.2905, 103.8520)
	}
}

func BenchmarkEquirectangularDist(b *testing.B) {
	for b.Loop() {
		EquirectangularDist(1.3521, 103.8198, 1.2905, 103.8520)
	}
}
