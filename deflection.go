package halo

import (
	"image/color"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
)

// A Deflection is a histogram of the angles between the incoming sun
// ray and outgoing rays. Halos show up as peaks at their angular
// radius.
type Deflection struct {
	// Dividers are the bin edges in degrees, from 0 to 180.
	Dividers []float64
	// Counts has one entry per bin.
	Counts []float64
}

// NewDeflection bins the deflection of each of dirs from in into bins
// equal bins.
func NewDeflection(in r3.Vec, dirs []r3.Vec, bins int) *Deflection {
	in = r3.Unit(in)
	angles := make([]float64, len(dirs))
	for i, d := range dirs {
		cos := math.Max(-1, math.Min(1, r3.Dot(in, r3.Unit(d))))
		angles[i] = math.Acos(cos) / rad
	}
	sort.Float64s(angles)

	dividers := make([]float64, bins+1)
	floats.Span(dividers, 0, 180)
	// stat.Histogram's last bin is half-open, so nudge it to include
	// exact back-scatter.
	dividers[bins] = math.Nextafter(180, math.Inf(1))
	counts := stat.Histogram(nil, dividers, angles, nil)
	return &Deflection{dividers, counts}
}

// Peak returns the center, in degrees, of the fullest bin whose center
// is in [lo, hi].
func (d *Deflection) Peak(lo, hi float64) float64 {
	best, bestN := math.NaN(), -1.0
	for i, n := range d.Counts {
		c := 0.5 * (d.Dividers[i] + d.Dividers[i+1])
		if c < lo || c > hi {
			continue
		}
		if n > bestN {
			best, bestN = c, n
		}
	}
	return best
}

// Plot returns a line plot of d.
func (d *Deflection) Plot() *plot.Plot {
	plt := newPlot()
	plt.Title.Text = "Deflection"
	plt.X.Label.Text = "Angle from sun"
	plt.Y.Label.Text = "Rays"
	plt.X.Tick.Marker = haloTicks{}

	xys := make(plotter.XYs, len(d.Counts))
	for i, n := range d.Counts {
		xys[i].X = 0.5 * (d.Dividers[i] + d.Dividers[i+1])
		xys[i].Y = n
	}
	if l, err := plotter.NewLine(xys); err == nil {
		l.LineStyle.Color = color.RGBA{R: 255, G: 255, B: 0, A: 255}
		plt.Add(l)
	}
	return plt
}
