package halo

import (
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/spatial/r3"
)

// A Scatter is the outcome of light meeting the interface between two
// media at a facet.
type Scatter struct {
	// Incident is the angle of incidence in radians.
	Incident float64

	// Reflectance is the fraction of light reflected, averaged over
	// polarizations, in the range 0 to 1.
	Reflectance float64

	// Transmitted is the angle of refraction in radians. It is NaN if
	// TIR is set.
	Transmitted float64

	// TIR is set if the light is totally internally reflected.
	TIR bool
}

// Fresnel computes the scattering of light traveling in direction dir
// from a medium with refractive index n1 into one with index n2.
// normal is the unit facet normal on the side the light comes from.
func Fresnel(normal, dir r3.Vec, n1, n2 float64) Scatter {
	cosI := math.Max(-1, math.Min(1, -r3.Dot(dir, normal)))
	incident := math.Acos(cosI)
	sinI := math.Sin(incident)
	if n2/n1 < sinI {
		return Scatter{Incident: incident, Reflectance: 1, Transmitted: math.NaN(), TIR: true}
	}
	transmitted := math.Asin(n1 * sinI / n2)
	cosT := math.Cos(transmitted)

	// s- and p-polarized reflectances.
	rs := (n1*cosI - n2*cosT) / (n1*cosI + n2*cosT)
	rp := (n1*cosT - n2*cosI) / (n1*cosT + n2*cosI)
	r := 0.5 * (rs*rs + rp*rp)
	switch {
	case math.IsNaN(r) || r > 1:
		// Grazing incidence between equal media.
		r = 1
	case r < 0:
		r = 0
	}
	return Scatter{Incident: incident, Reflectance: r, Transmitted: transmitted}
}

// Reflects draws whether the light is reflected (as opposed to
// refracted).
func (s Scatter) Reflects(rng *rand.Rand) bool {
	return rng.Float64() < s.Reflectance
}

// Reflect returns the direction of light traveling in direction dir
// after reflecting off a facet with the given normal and angle of
// incidence.
func Reflect(normal r3.Vec, incident float64, dir r3.Vec) r3.Vec {
	return r3.Unit(r3.Add(r3.Scale(2*math.Cos(incident), normal), dir))
}

// Refract returns the direction of light traveling in direction dir
// after refracting from index n1 to n2 through a facet with the given
// normal. It panics under total internal reflection.
func Refract(normal r3.Vec, incident, transmitted float64, dir r3.Vec, n1, n2 float64) r3.Vec {
	if math.IsNaN(transmitted) {
		panic("refraction under total internal reflection")
	}
	sinT := math.Sin(transmitted)
	k := n1*math.Cos(incident)/n2 - math.Sqrt(1-sinT*sinT)
	return r3.Unit(r3.Add(r3.Scale(k, normal), r3.Scale(n1/n2, dir)))
}
