package halo

import (
	"fmt"
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

var up = r3.Vec{Z: 1}

// incoming returns the travel direction of a ray striking a facet with
// normal +Z at the given angle of incidence.
func incoming(angle float64) r3.Vec {
	return r3.Vec{X: math.Sin(angle), Z: -math.Cos(angle)}
}

func TestFresnelNormalIncidence(t *testing.T) {
	s := Fresnel(up, incoming(0), IndexAir, IndexIce)
	want := math.Pow((IndexIce-IndexAir)/(IndexIce+IndexAir), 2)
	assertBetween(t, "reflectance", s.Reflectance, want-1e-12, want+1e-12)
	assertBetween(t, "reflectance", s.Reflectance, 0.017, 0.019)
	assertBetween(t, "incident", s.Incident, 0, 1e-12)
	assertBetween(t, "transmitted", s.Transmitted, 0, 1e-12)
	if s.TIR {
		t.Error("got TIR at normal incidence")
	}

	// The same holds leaving the ice.
	s = Fresnel(up, incoming(0), IndexIce, IndexAir)
	assertBetween(t, "reflectance leaving", s.Reflectance, want-1e-12, want+1e-12)
}

func TestFresnelTIR(t *testing.T) {
	critical := math.Asin(IndexAir / IndexIce)
	assertBetween(t, "critical angle", critical/rad, 49.7, 49.8)

	for _, deg := range []float64{50, 60, 89} {
		s := Fresnel(up, incoming(deg*rad), IndexIce, IndexAir)
		if !s.TIR || s.Reflectance != 1 || !math.IsNaN(s.Transmitted) {
			t.Errorf("at %v°: got %+v, want TIR", deg, s)
		}
	}
	s := Fresnel(up, incoming(45*rad), IndexIce, IndexAir)
	if s.TIR || s.Reflectance >= 1 {
		t.Errorf("at 45°: got %+v, want partial reflection", s)
	}

	// Entering the denser medium never totally reflects.
	s = Fresnel(up, incoming(89*rad), IndexAir, IndexIce)
	if s.TIR {
		t.Errorf("entering ice at 89°: got TIR")
	}
}

func TestFresnelRange(t *testing.T) {
	for deg := 0.0; deg <= 90; deg += 0.5 {
		for _, n := range [][2]float64{{IndexAir, IndexIce}, {IndexIce, IndexAir}} {
			s := Fresnel(up, incoming(deg*rad), n[0], n[1])
			assertBetween(t, fmt.Sprintf("reflectance at %v° from %v to %v", deg, n[0], n[1]), s.Reflectance, 0, 1)
		}
	}
	// Grazing light is almost all reflected.
	s := Fresnel(up, incoming(89.9*rad), IndexAir, IndexIce)
	assertBetween(t, "grazing reflectance", s.Reflectance, 0.95, 1)
}

func TestReflect(t *testing.T) {
	for _, deg := range []float64{0, 10, 45, 80} {
		in := incoming(deg * rad)
		s := Fresnel(up, in, IndexAir, IndexIce)
		out := Reflect(up, s.Incident, in)
		assertBetween(t, "|reflected|", r3.Norm(out), 1-1e-12, 1+1e-12)
		// Mirror image: Z flips and X is unchanged.
		want := r3.Vec{X: in.X, Z: -in.Z}
		if r3.Norm(r3.Sub(out, want)) > 1e-12 {
			t.Errorf("at %v°: got %v, want %v", deg, out, want)
		}
	}
}

func TestRefract(t *testing.T) {
	for _, n := range [][2]float64{{IndexAir, IndexIce}, {IndexIce, IndexAir}} {
		n1, n2 := n[0], n[1]
		for _, deg := range []float64{0, 10, 30, 45} {
			in := incoming(deg * rad)
			s := Fresnel(up, in, n1, n2)
			out := Refract(up, s.Incident, s.Transmitted, in, n1, n2)
			assertBetween(t, "|refracted|", r3.Norm(out), 1-1e-12, 1+1e-12)
			if out.Z >= 0 {
				t.Errorf("%v→%v at %v°: refracted ray %v doesn't cross the facet", n1, n2, deg, out)
			}
			if math.Abs(out.Y) > 1e-12 || out.X < 0 {
				t.Errorf("%v→%v at %v°: refracted ray %v left the plane of incidence", n1, n2, deg, out)
			}
			// Snell's law.
			sinT := math.Sqrt(out.X*out.X + out.Y*out.Y)
			got, want := n2*sinT, n1*math.Sin(deg*rad)
			assertBetween(t, fmt.Sprintf("%v→%v at %v°: n2 sin t", n1, n2, deg), got, want-1e-12, want+1e-12)
		}
	}
}

func TestRefractTIRPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("want panic")
		}
	}()
	s := Fresnel(up, incoming(70*rad), IndexIce, IndexAir)
	Refract(up, s.Incident, s.Transmitted, incoming(70*rad), IndexIce, IndexAir)
}
