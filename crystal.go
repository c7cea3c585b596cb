package halo

import (
	"errors"
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/gonum/stat/distuv"
)

// ErrDegenerateGeometry is returned when a crystal mesh has a facet
// with no well-defined outward normal. The crystal should be discarded
// and rebuilt with fresh random parameters.
var ErrDegenerateGeometry = errors.New("degenerate crystal geometry")

// A Crystal is a closed convex hexagonal prism. Once built, a Crystal
// is not modified.
//
// The prototype crystal has its c-axis along Z:
//
//	Z/c-axis
//	|  Y
//	| /
//	|/____ X
type Crystal struct {
	Verts []r3.Vec
	Tris  [][3]int

	// Normals is the unit outward normal of each triangle in Tris.
	Normals []r3.Vec

	// Areas is the fraction of the total surface area covered by each
	// triangle in Tris. These sum to 1.
	Areas []float64

	// Ratio is the c/a aspect ratio: the prism height relative to the
	// radius of the basal hexagon.
	Ratio float64
}

// prototypeTris is the triangulation of the prototype prism. Vertexes
// 0-5 are the top hexagon and 6-11 the bottom one. The winding is such
// that (v2-v0)×(v1-v0) points out of the crystal.
var prototypeTris = [...][3]int{
	// Top basal face
	{0, 1, 2}, {0, 2, 5}, {2, 3, 5}, {3, 4, 5},
	// Bottom basal face
	{6, 8, 7}, {6, 11, 8}, {8, 11, 9}, {9, 11, 10},
	// Prism faces
	{0, 5, 11}, {0, 11, 6},
	{4, 10, 5}, {5, 10, 11},
	{3, 9, 4}, {4, 9, 10},
	{2, 8, 3}, {3, 8, 9},
	{1, 7, 2}, {2, 7, 8},
	{0, 6, 1}, {1, 6, 7},
}

// NewPrototype returns the canonical hexagonal prism with unit basal
// radius and unit height (so a c/a ratio of 1). The returned crystal
// has no normals; see ComputeNormals.
func NewPrototype() *Crystal {
	c := &Crystal{
		Verts: make([]r3.Vec, 12),
		Tris:  make([][3]int, len(prototypeTris)),
		Ratio: 1,
	}
	for k := 0; k < 6; k++ {
		s, co := math.Sincos(float64(k) * math.Pi / 3)
		c.Verts[k] = r3.Vec{X: co, Y: -s, Z: 0.5}
		c.Verts[k+6] = r3.Vec{X: co, Y: -s, Z: -0.5}
	}
	copy(c.Tris, prototypeTris[:])
	c.Areas = HexAreas(1)
	return c
}

// ApplyAspectRatio stretches the c-axis of a prototype crystal by ratio
// and then rescales the whole crystal so the largest absolute
// coordinate is 1.
func (c *Crystal) ApplyAspectRatio(ratio float64) {
	maxAbs := 0.0
	for i := range c.Verts {
		c.Verts[i].Z *= ratio
		maxAbs = math.Max(maxAbs, math.Abs(c.Verts[i].X))
		maxAbs = math.Max(maxAbs, math.Abs(c.Verts[i].Y))
		maxAbs = math.Max(maxAbs, math.Abs(c.Verts[i].Z))
	}
	if maxAbs > 0 {
		for i := range c.Verts {
			c.Verts[i] = r3.Scale(1/maxAbs, c.Verts[i])
		}
	}
	c.Ratio = ratio
	c.Areas = HexAreas(ratio)
}

// HexAreas returns the area fractions of the triangles of a hexagonal
// prism with c/a ratio ratio, in the order of the prototype's
// triangles.
//
// Each basal hexagon is split into two small and two big triangles.
// Uniform rescaling doesn't change the fractions, so these are
// computed for unit basal radius.
func HexAreas(ratio float64) []float64 {
	big := 0.5 * math.Sqrt(3)
	small := 0.5 * (1.5*math.Sqrt(3) - 2*big)
	side := 0.5 * ratio

	areas := make([]float64, 0, len(prototypeTris))
	for basal := 0; basal < 2; basal++ {
		areas = append(areas, small, big, big, small)
	}
	for len(areas) < len(prototypeTris) {
		areas = append(areas, side)
	}
	floats.Scale(1/floats.Sum(areas), areas)
	return areas
}

// Rotate rotates the crystal about X by a, then about Y by b, then
// about Z by spin. All angles are in radians.
func (c *Crystal) Rotate(a, b, spin float64) {
	rots := [...]r3.Rotation{
		r3.NewRotation(a, r3.Vec{X: 1}),
		r3.NewRotation(b, r3.Vec{Y: 1}),
		r3.NewRotation(spin, r3.Vec{Z: 1}),
	}
	for i, v := range c.Verts {
		for _, rot := range rots {
			v = rot.Rotate(v)
		}
		c.Verts[i] = v
	}
}

// degenerateNormal is the shortest cross product ComputeNormals
// accepts.
const degenerateNormal = 1e-9

// ComputeNormals computes the unit outward normal of each triangle. It
// returns an error wrapping ErrDegenerateGeometry if any triangle has
// collapsed or is turned inside out.
func (c *Crystal) ComputeNormals() error {
	center := c.Centroid()
	normals := make([]r3.Vec, len(c.Tris))
	for i := range c.Tris {
		tri := c.Triangle(i)
		n := r3.Cross(r3.Sub(tri[2], tri[0]), r3.Sub(tri[1], tri[0]))
		l := r3.Norm(n)
		if !(l > degenerateNormal) {
			return fmt.Errorf("facet %d has zero-length normal: %w", i, ErrDegenerateGeometry)
		}
		n = r3.Scale(1/l, n)
		if r3.Dot(n, r3.Sub(triCentroid(&tri), center)) <= 0 {
			return fmt.Errorf("facet %d normal points inward: %w", i, ErrDegenerateGeometry)
		}
		normals[i] = n
	}
	c.Normals = normals
	return nil
}

// Triangle returns the vertexes of triangle i.
func (c *Crystal) Triangle(i int) r3.Triangle {
	var tri r3.Triangle
	for j, idx := range c.Tris[i] {
		tri[j] = c.Verts[idx]
	}
	return tri
}

// Centroid returns the mean of the crystal's vertexes.
func (c *Crystal) Centroid() r3.Vec {
	var sum r3.Vec
	for _, v := range c.Verts {
		sum = r3.Add(sum, v)
	}
	return r3.Scale(1/float64(len(c.Verts)), sum)
}

func triCentroid(tri *r3.Triangle) r3.Vec {
	return r3.Scale(1.0/3, r3.Add(r3.Add(tri[0], tri[1]), tri[2]))
}

// A Habit describes the distribution of crystal shapes and
// orientations.
//
// The c/a ratio is drawn from a normal distribution. The crystal then
// wobbles about the X and Y axes by normally distributed angles and
// spins freely about Z, which models a crystal falling in a nearly
// stable orientation.
type Habit struct {
	RatioMean, RatioStdDev float64

	// TiltA and TiltB are the standard deviations, in radians, of the
	// wobble about X and Y.
	TiltA, TiltB float64
}

// Build draws a random crystal from h.
func (h Habit) Build(rng *rand.Rand) (*Crystal, error) {
	ratio := distuv.Normal{Mu: h.RatioMean, Sigma: h.RatioStdDev, Src: rng}.Rand()
	if !(ratio > 0) {
		return nil, fmt.Errorf("c/a ratio %v: %w", ratio, ErrDegenerateGeometry)
	}
	a := distuv.Normal{Mu: 0, Sigma: h.TiltA, Src: rng}.Rand()
	b := distuv.Normal{Mu: 0, Sigma: h.TiltB, Src: rng}.Rand()
	spin := distuv.Uniform{Min: 0, Max: 2 * math.Pi, Src: rng}.Rand()

	c := NewPrototype()
	c.ApplyAspectRatio(ratio)
	c.Rotate(a, b, spin)
	if err := c.ComputeNormals(); err != nil {
		return nil, err
	}
	return c, nil
}
