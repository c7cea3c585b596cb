package halo

import (
	"image/color"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg/draw"
)

// A SkyMap counts outgoing rays by where in the sky an observer would
// see them come from.
type SkyMap struct {
	// counts is indexed by [azimuth column][altitude row].
	counts [][]float64
	max    float64

	azStep, altStep float64 // Degrees per cell
}

// NewSkyMap bins outgoing ray directions into cells of the given size
// in degrees.
func NewSkyMap(dirs []r3.Vec, cellDegrees float64) *SkyMap {
	cols := int(math.Ceil(360 / cellDegrees))
	rows := int(math.Ceil(180 / cellDegrees))
	m := &SkyMap{
		counts:  make([][]float64, cols),
		azStep:  360 / float64(cols),
		altStep: 180 / float64(rows),
	}
	for i := range m.counts {
		m.counts[i] = make([]float64, rows)
	}
	for _, d := range dirs {
		// A ray traveling in direction d appears to come from -d.
		az, alt := skyAngles(r3.Scale(-1, d))
		col := clampIndex(int(az/rad/m.azStep), cols)
		row := clampIndex(int((alt/rad+90)/m.altStep), rows)
		m.counts[col][row]++
		if c := m.counts[col][row]; c > m.max {
			m.max = c
		}
	}
	return m
}

const rad = math.Pi / 180

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// Count returns the number of rays that appear to come from the given
// azimuth and altitude, in radians.
func (m *SkyMap) Count(azimuth, altitude float64) float64 {
	col := clampIndex(int(azimuth/rad/m.azStep), len(m.counts))
	row := clampIndex(int((altitude/rad+90)/m.altStep), len(m.counts[0]))
	return m.counts[col][row]
}

func (m *SkyMap) Dims() (c, r int) {
	if len(m.counts) == 0 {
		return 0, 0
	}
	return len(m.counts), len(m.counts[0])
}

func (m *SkyMap) Z(c, r int) float64 {
	return m.counts[c][r]
}

func (m *SkyMap) X(c int) float64 {
	return (float64(c) + 0.5) * m.azStep
}

func (m *SkyMap) Y(r int) float64 {
	return (float64(r)+0.5)*m.altStep - 90
}

func (m *SkyMap) Min() float64 {
	// Return 1 rather than 0 so that empty cells render in the
	// underflow color.
	return 1
}

func (m *SkyMap) Max() float64 {
	return math.Max(m.max, 1)
}

// Plot returns a heat map of m with the sun marked.
func (m *SkyMap) Plot(sun Source) *plot.Plot {
	plt := newPlot()
	plt.Title.Text = "Halo"
	plt.X.Label.Text = "Azimuth"
	plt.Y.Label.Text = "Altitude"
	plt.X.Tick.Marker = degreeTicks{major: 45, minor: 15}
	plt.Y.Tick.Marker = degreeTicks{major: 30, minor: 10}

	pal := palette.Heat(256, 1)
	hm := plotter.NewHeatMap(m, pal)
	hm.Min, hm.Max = m.Min(), m.Max()
	hm.Underflow = color.Black
	hm.Rasterized = true
	plt.Add(hm)

	sunXY := plotter.XYs{{X: sun.Azimuth / rad, Y: sun.Altitude / rad}}
	if s, err := plotter.NewScatter(sunXY); err == nil {
		s.GlyphStyle.Color = color.White
		s.GlyphStyle.Shape = draw.RingGlyph{}
		plt.Add(s)
	}
	return plt
}

// newPlot returns a plot with white-on-black styling.
func newPlot() *plot.Plot {
	plt := plot.New()
	plt.BackgroundColor = color.Black
	for _, elt := range []*color.Color{
		&plt.Title.TextStyle.Color,
		&plt.X.Color,
		&plt.X.Tick.Color,
		&plt.X.Tick.Label.Color,
		&plt.X.Label.TextStyle.Color,
		&plt.Y.Color,
		&plt.Y.Tick.Color,
		&plt.Y.Tick.Label.Color,
		&plt.Y.Label.TextStyle.Color,
	} {
		*elt = color.White
	}
	return plt
}
