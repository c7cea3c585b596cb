package halo

import (
	"image/color"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// A view is an orthographic projection onto the plane perpendicular to
// a viewing direction.
type view struct {
	dir, right, up r3.Vec
}

func newView(dir r3.Vec) view {
	dir = r3.Unit(dir)
	right := r3.Cross(dir, r3.Vec{Z: 1})
	if r3.Norm(right) < 1e-6 {
		// Looking straight up or down.
		right = r3.Vec{X: 1}
	}
	right = r3.Unit(right)
	up := r3.Cross(right, dir)
	return view{dir, right, up}
}

func (v view) project(p r3.Vec) plotter.XY {
	return plotter.XY{X: r3.Dot(p, v.right), Y: r3.Dot(p, v.up)}
}

// PlotCrystal draws c as seen looking in direction dir. If trial is not
// nil, it also draws the photon's path through the crystal.
func PlotCrystal(c *Crystal, dir r3.Vec, trial *Trial) *plot.Plot {
	v := newView(dir)
	plt := newPlot()
	plt.HideAxes()

	// Back faces first, so front faces draw over them.
	for _, front := range []bool{false, true} {
		for i := range c.Tris {
			facing := r3.Dot(c.Normals[i], v.dir) < 0
			if facing != front {
				continue
			}
			tri := c.Triangle(i)
			xys := make(plotter.XYs, 3)
			for j := range tri {
				xys[j] = v.project(tri[j])
			}
			poly, err := plotter.NewPolygon(xys)
			if err != nil {
				continue
			}
			poly.Color = color.NRGBA{R: 120, G: 180, B: 255, A: 40}
			poly.LineStyle.Color = color.NRGBA{R: 120, G: 180, B: 255, A: 160}
			if !front {
				poly.LineStyle.Dashes = []vg.Length{vg.Points(2), vg.Points(2)}
			}
			plt.Add(poly)
		}
	}

	lim := 1.1 * crystalExtent(c)
	if trial != nil {
		addPath(plt, v, trial)
		lim += pathTail
	}

	// Use the same range on both axes so the crystal isn't distorted.
	plt.X.Min, plt.X.Max = -lim, lim
	plt.Y.Min, plt.Y.Max = -lim, lim
	return plt
}

// pathTail is the length drawn of the rays outside the crystal.
const pathTail = 1.5

// addPath draws the incoming ray, the internal path, and the outgoing
// ray of trial.
func addPath(plt *plot.Plot, v view, trial *Trial) {
	var pts []r3.Vec
	first := trial.Events[0].Point
	pts = append(pts, r3.Sub(first, r3.Scale(pathTail, trial.In)))
	for _, ev := range trial.Events {
		pts = append(pts, ev.Point)
	}
	if trial.State == StateExited {
		last := pts[len(pts)-1]
		pts = append(pts, r3.Add(last, r3.Scale(pathTail, trial.Out)))
	}

	xys := make(plotter.XYs, len(pts))
	for i, p := range pts {
		xys[i] = v.project(p)
	}
	l, err := plotter.NewLine(xys)
	if err != nil {
		return
	}
	l.LineStyle.Color = color.RGBA{R: 255, G: 255, B: 0, A: 255}
	plt.Add(l)
}

// crystalExtent returns the largest distance of a vertex of c from the
// origin.
func crystalExtent(c *Crystal) float64 {
	m := 0.0
	for _, p := range c.Verts {
		m = math.Max(m, r3.Norm(p))
	}
	return m
}
