package halo

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"
)

func checkNormals(t *testing.T, c *Crystal) {
	t.Helper()
	center := c.Centroid()
	for i, n := range c.Normals {
		assertBetween(t, fmt.Sprintf("|normal %d|", i), r3.Norm(n), 1-1e-9, 1+1e-9)
		tri := c.Triangle(i)
		if d := r3.Dot(n, r3.Sub(triCentroid(&tri), center)); d <= 0 {
			t.Errorf("normal %d = %v points inward", i, n)
		}
	}
}

func TestPrototype(t *testing.T) {
	c := NewPrototype()
	if len(c.Verts) != 12 || len(c.Tris) != 20 {
		t.Fatalf("got %d vertexes, %d triangles, want 12, 20", len(c.Verts), len(c.Tris))
	}
	if err := c.ComputeNormals(); err != nil {
		t.Fatal(err)
	}
	checkNormals(t, c)

	// Basal normals are ±Z and prism normals are horizontal.
	for i, n := range c.Normals {
		switch {
		case i < 4:
			assertBetween(t, "top normal Z", n.Z, 1-1e-12, 1+1e-12)
		case i < 8:
			assertBetween(t, "bottom normal Z", n.Z, -1-1e-12, -1+1e-12)
		default:
			assertBetween(t, "prism normal Z", n.Z, -1e-12, 1e-12)
		}
	}
}

func TestHexAreas(t *testing.T) {
	for _, ratio := range []float64{0.01, 0.3, 1, 3, 100} {
		areas := HexAreas(ratio)
		if len(areas) != 20 {
			t.Fatalf("got %d areas, want 20", len(areas))
		}
		assertBetween(t, fmt.Sprintf("sum of areas for ratio %v", ratio), floats.Sum(areas), 1-1e-9, 1+1e-9)
		if min := floats.Min(areas); min < 0 {
			t.Errorf("ratio %v: got negative area %v", ratio, min)
		}
	}
}

func TestHexAreasMatchMesh(t *testing.T) {
	// The closed-form areas should agree with the actual triangles.
	for _, ratio := range []float64{0.2, 0.7, 1, 4} {
		c := NewPrototype()
		c.ApplyAspectRatio(ratio)
		actual := make([]float64, len(c.Tris))
		for i := range c.Tris {
			tri := c.Triangle(i)
			actual[i] = 0.5 * r3.Norm(r3.Cross(r3.Sub(tri[1], tri[0]), r3.Sub(tri[2], tri[0])))
		}
		floats.Scale(1/floats.Sum(actual), actual)
		for i, want := range c.Areas {
			assertBetween(t, fmt.Sprintf("ratio %v area %d", ratio, i), actual[i], want-1e-9, want+1e-9)
		}
	}
}

func TestApplyAspectRatio(t *testing.T) {
	maxAbs := func(c *Crystal) (xy, z float64) {
		for _, v := range c.Verts {
			xy = math.Max(xy, math.Max(math.Abs(v.X), math.Abs(v.Y)))
			z = math.Max(z, math.Abs(v.Z))
		}
		return
	}

	// Long column: the c-axis is scaled to 1.
	c := NewPrototype()
	c.ApplyAspectRatio(3)
	xy, z := maxAbs(c)
	assertBetween(t, "column max |Z|", z, 1-1e-12, 1+1e-12)
	assertBetween(t, "column max |XY|", xy, 1/1.5-1e-12, 1/1.5+1e-12)

	// Plate: the basal radius stays 1.
	c = NewPrototype()
	c.ApplyAspectRatio(0.5)
	xy, z = maxAbs(c)
	assertBetween(t, "plate max |XY|", xy, 1-1e-12, 1+1e-12)
	assertBetween(t, "plate max |Z|", z, 0.25-1e-12, 0.25+1e-12)
	if c.Ratio != 0.5 {
		t.Errorf("got ratio %v, want 0.5", c.Ratio)
	}
}

func TestRotate(t *testing.T) {
	// A sixth of a turn about the c-axis maps the hexagon onto itself.
	c := NewPrototype()
	want := c.Verts[0]
	c.Rotate(0, 0, math.Pi/3)
	if d := r3.Norm(r3.Sub(c.Verts[1], want)); d > 1e-12 {
		t.Errorf("vertex 1 rotated to %v, want %v", c.Verts[1], want)
	}

	// Rotations preserve edge lengths.
	p := NewPrototype()
	c = NewPrototype()
	c.Rotate(0.3, -1.2, 2.5)
	for _, tri := range c.Tris {
		for j := range tri {
			a, b := tri[j], tri[(j+1)%3]
			want := r3.Norm(r3.Sub(p.Verts[a], p.Verts[b]))
			got := r3.Norm(r3.Sub(c.Verts[a], c.Verts[b]))
			assertBetween(t, "edge length", got, want-1e-12, want+1e-12)
		}
	}
	if err := c.ComputeNormals(); err != nil {
		t.Fatal(err)
	}
	checkNormals(t, c)
}

func TestComputeNormalsDegenerate(t *testing.T) {
	c := NewPrototype()
	c.ApplyAspectRatio(0)
	if err := c.ComputeNormals(); !errors.Is(err, ErrDegenerateGeometry) {
		t.Errorf("flat crystal: got %v, want %v", err, ErrDegenerateGeometry)
	}

	// Inside out.
	c = NewPrototype()
	for i := range c.Verts {
		c.Verts[i].Z = -c.Verts[i].Z
	}
	if err := c.ComputeNormals(); !errors.Is(err, ErrDegenerateGeometry) {
		t.Errorf("inverted crystal: got %v, want %v", err, ErrDegenerateGeometry)
	}
}

func TestHabitBuild(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	h := Habit{RatioMean: 1, RatioStdDev: 0.1, TiltA: 0.1, TiltB: 0.2}
	for i := 0; i < 100; i++ {
		c, err := h.Build(rng)
		if err != nil {
			t.Fatal(err)
		}
		checkNormals(t, c)
		assertBetween(t, "sum of areas", floats.Sum(c.Areas), 1-1e-9, 1+1e-9)
		if len(c.Normals) != len(c.Tris) || len(c.Areas) != len(c.Tris) {
			t.Fatalf("got %d normals, %d areas for %d triangles", len(c.Normals), len(c.Areas), len(c.Tris))
		}
	}

	h = Habit{RatioMean: -1}
	if _, err := h.Build(rng); !errors.Is(err, ErrDegenerateGeometry) {
		t.Errorf("negative ratio: got %v, want %v", err, ErrDegenerateGeometry)
	}
}
