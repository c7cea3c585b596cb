package halo

import "gonum.org/v1/gonum/spatial/r3"

type Ray struct {
	Origin r3.Vec
	Dir    r3.Vec // Must be normalized
}

const (
	// parallelEpsilon is the smallest Möller–Trumbore determinant that
	// is not treated as a ray parallel to the triangle.
	parallelEpsilon = 1e-9

	// hitEpsilon is the smallest distance along a ray that counts as a
	// hit. This keeps a ray leaving a facet from hitting that facet
	// again.
	hitEpsilon = 1e-6
)

// IntersectCrystal returns the distance to the nearest facet of c hit
// by r and the index of that facet.
func (r *Ray) IntersectCrystal(c *Crystal) (t float64, facet int, ok bool) {
	var minT float64
	minFacet := -1
	for i := range c.Tris {
		tri := c.Triangle(i)
		t, _, _, ok := r.IntersectTriangle(&tri)
		if !ok {
			continue
		}
		if minFacet < 0 || t < minT {
			minT, minFacet = t, i
		}
	}
	return minT, minFacet, minFacet >= 0
}

// IntersectTriangle returns the distance t along r to tri and the
// barycentric weights u and v of tri[1] and tri[2] at the hit point.
// The weight of tri[0] is 1-u-v. Triangles are two-sided.
func (r *Ray) IntersectTriangle(tri *r3.Triangle) (t, u, v float64, ok bool) {
	// Möller–Trumbore intersection, based on Wikipedia implementation
	// and the Scratchapixel implementation.
	edge1 := r3.Sub(tri[1], tri[0])
	edge2 := r3.Sub(tri[2], tri[0])
	h := r3.Cross(r.Dir, edge2)
	det := r3.Dot(edge1, h)
	// If the determinant is close to 0, the ray is parallel to the plane
	// of the triangle.
	if det > -parallelEpsilon && det < parallelEpsilon {
		return 0, 0, 0, false
	}
	invDet := 1 / det
	s := r3.Sub(r.Origin, tri[0])
	u = invDet * r3.Dot(s, h)
	if u < 0 || u > 1 {
		return 0, 0, 0, false
	}
	q := r3.Cross(s, edge1)
	v = invDet * r3.Dot(r.Dir, q)
	if v < 0 || u+v > 1 {
		return 0, 0, 0, false
	}
	// t is the distance on the ray to the intersection point.
	t = invDet * r3.Dot(edge2, q)
	if t < hitEpsilon {
		// There is a line intersection but not a ray intersection.
		return 0, 0, 0, false
	}
	return t, u, v, true
}

func (r *Ray) Along(t float64) r3.Vec {
	return r3.Add(r.Origin, r3.Scale(t, r.Dir))
}
