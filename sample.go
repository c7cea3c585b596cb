package halo

import (
	"errors"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/gonum/stat/distuv"
)

// ErrNoIlluminatedFacet is returned when no facet of a crystal faces
// the light source.
var ErrNoIlluminatedFacet = errors.New("no illuminated facet")

// SunDiameter is the angular diameter of the sun in radians (about
// 0.5°).
const SunDiameter = 0.00873

// A Source is a light source disk in the sky.
type Source struct {
	// Azimuth is in radians, where 0 is north and π/2 is east.
	Azimuth float64
	// Altitude is in radians above the horizon.
	Altitude float64
	// Diameter is the angular diameter of the disk in radians.
	Diameter float64
}

// Toward returns the unit vector pointing at the center of s.
func (s Source) Toward() r3.Vec {
	return skyVec(s.Azimuth, s.Altitude)
}

// Sample returns the travel direction of a ray from a random point on
// the disk of s. Azimuth and altitude are each jittered uniformly by up
// to half the diameter.
func (s Source) Sample(rng *rand.Rand) r3.Vec {
	jitter := distuv.Uniform{Min: -s.Diameter / 2, Max: s.Diameter / 2, Src: rng}
	az := s.Azimuth + jitter.Rand()
	alt := s.Altitude + jitter.Rand()
	return r3.Scale(-1, skyVec(az, alt))
}

// skyVec returns the unit vector toward the given azimuth and altitude.
// It rotates north (+Y) up by the altitude and then clockwise by the
// azimuth.
func skyVec(azimuth, altitude float64) r3.Vec {
	v := r3.Vec{Y: 1}
	v = r3.NewRotation(altitude, r3.Vec{X: 1}).Rotate(v)
	v = r3.NewRotation(-azimuth, r3.Vec{Z: 1}).Rotate(v)
	return v
}

// skyAngles is the inverse of skyVec. It returns the azimuth in [0, 2π)
// and the altitude in [-π/2, π/2] of v.
func skyAngles(v r3.Vec) (azimuth, altitude float64) {
	v = r3.Unit(v)
	altitude = math.Asin(math.Max(-1, math.Min(1, v.Z)))
	azimuth = math.Atan2(v.X, v.Y)
	if azimuth < 0 {
		azimuth += 2 * math.Pi
	}
	if azimuth >= 2*math.Pi {
		azimuth = 0
	}
	return
}

// WeightedChoice returns a random index into weights, chosen with
// probability proportional to its weight. Weights must be
// non-negative. It returns -1 if the weights sum to 0.
func WeightedChoice(rng *rand.Rand, weights []float64) int {
	total := floats.Sum(weights)
	if !(total > 0) {
		return -1
	}
	rnd := rng.Float64() * total
	for i, w := range weights {
		rnd -= w
		if rnd < 0 {
			return i
		}
	}
	// Rounding left a sliver at the end.
	for i := len(weights) - 1; i >= 0; i-- {
		if weights[i] > 0 {
			return i
		}
	}
	return -1
}

// SampleEntryFacet chooses the facet of c struck by a ray traveling in
// direction dir. Facets facing the source are chosen in proportion to
// their projected area, so grazing facets are hit less often.
func SampleEntryFacet(rng *rand.Rand, c *Crystal, dir r3.Vec) (int, error) {
	var (
		facets  [len(prototypeTris)]int
		weights [len(prototypeTris)]float64
	)
	lit, w := facets[:0], weights[:0]
	for i, n := range c.Normals {
		if d := -r3.Dot(n, dir); d > 0 {
			lit = append(lit, i)
			w = append(w, d*c.Areas[i])
		}
	}
	k := WeightedChoice(rng, w)
	if k < 0 {
		return -1, ErrNoIlluminatedFacet
	}
	return lit[k], nil
}

// SampleEntryPoint returns a random point on facet i of c.
//
// The barycentric weights are u, v and 1-u-v with u uniform in [0, 1)
// and v uniform in [0, 1-u). This is not uniform over the triangle's
// area: points cluster toward the first vertex.
func SampleEntryPoint(rng *rand.Rand, c *Crystal, i int) r3.Vec {
	u := rng.Float64()
	v := rng.Float64() * (1 - u)
	tri := c.Triangle(i)
	p := r3.Scale(u, tri[0])
	p = r3.Add(p, r3.Scale(v, tri[1]))
	return r3.Add(p, r3.Scale(1-u-v, tri[2]))
}
