package halo

import (
	"math"
	"testing"
	"time"
)

// between returns whether x is in [a, b].
func assertBetween(t *testing.T, msg string, x, a, b float64) {
	t.Helper()
	if a <= x && x <= b {
		return
	}
	t.Errorf("got %s = %v, want in range [%v, %v]", msg, x, a, b)
}

func TestSourceAt(t *testing.T) {
	// Solar noon near Boston on the June solstice. The sun is due
	// south at 90 - 42.4 + 23.4 degrees.
	when := time.Date(2022, 6, 21, 16, 46, 0, 0, time.UTC)
	s := SourceAt(when, 42.4195011, -71.2064993)
	assertBetween(t, "altitude", s.Altitude/rad, 70.5, 71.5)
	assertBetween(t, "azimuth", s.Azimuth/rad, 175, 185)
	if s.Diameter != SunDiameter {
		t.Errorf("got diameter %v, want %v", s.Diameter, SunDiameter)
	}

	// Morning sun is in the east.
	s = SourceAt(time.Date(2022, 3, 20, 13, 0, 0, 0, time.UTC), 42.4195011, -71.2064993)
	assertBetween(t, "morning azimuth", s.Azimuth/rad, 90, 135)

	// Midnight sun is below the horizon.
	s = SourceAt(time.Date(2022, 6, 21, 4, 46, 0, 0, time.UTC), 42.4195011, -71.2064993)
	if s.Altitude >= 0 {
		t.Errorf("got midnight altitude %v°, want < 0", s.Altitude/rad)
	}
	if s.Azimuth < 0 || s.Azimuth >= 2*math.Pi {
		t.Errorf("got azimuth %v, want in [0, 2π)", s.Azimuth)
	}
}
