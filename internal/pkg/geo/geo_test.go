package geo

import (
	"math"
	"testing"
)

func TestMilesBetween(t *testing.T) {
	if d := MilesBetween(53.6458, -3.0050, 53.6458, -3.0050); d != 0 {
		t.Fatalf("expected zero distance for identical points, got %f", d)
	}

	// One degree of latitude is about 69.09 miles.
	d := MilesBetween(53.0, -3.0, 54.0, -3.0)
	if math.Abs(d-69.09) > 0.2 {
		t.Fatalf("expected ~69.09 miles per degree of latitude, got %f", d)
	}

	// Symmetric.
	a := MilesBetween(53.6458, -3.0050, 53.4084, -2.9916)
	b := MilesBetween(53.4084, -2.9916, 53.6458, -3.0050)
	if math.Abs(a-b) > 1e-9 {
		t.Fatalf("expected symmetric distances, got %f and %f", a, b)
	}
}

func TestCenterMilesFrom(t *testing.T) {
	center := Center{Lat: DefaultCenterLat, Lng: DefaultCenterLng}

	// Southport to Liverpool city centre is roughly 16.5 miles, outside the
	// default 15-mile browse radius.
	d := center.MilesFrom(53.4084, -2.9916)
	if d < 15 || d > 18 {
		t.Fatalf("expected Liverpool to fall outside the default radius, got %f miles", d)
	}

	// A point a couple of miles up the coast stays inside.
	if d := center.MilesFrom(53.67, -3.01); d > DefaultMaxDistanceMiles {
		t.Fatalf("expected nearby point inside radius, got %f miles", d)
	}
}
