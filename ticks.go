package halo

import (
	"fmt"
	"math"

	"gonum.org/v1/plot"
)

// degreeTicks marks angles in degrees, labeling every major step.
type degreeTicks struct {
	major, minor float64
}

func (o degreeTicks) Ticks(min, max float64) []plot.Tick {
	var ticks []plot.Tick
	first := math.Ceil(min / o.minor)
	last := math.Floor(max / o.minor)
	minorFactor := int(math.Round(o.major / o.minor))
	for i := first; i <= last; i++ {
		label := ""
		if minorFactor <= 1 || int(i)%minorFactor == 0 {
			label = fmt.Sprintf("%g°", i*o.minor)
		}
		ticks = append(ticks, plot.Tick{
			Value: i * o.minor,
			Label: label,
		})
	}
	return ticks
}

// haloRadii are the angular radii, in degrees, of the common halos:
// the 22° halo from 60° prism wedges and the 46° halo from 90° wedges.
var haloRadii = []float64{22, 46}

// haloTicks marks angles in degrees every 10°, labeling the halo
// radii and every 30°.
type haloTicks struct{}

func (haloTicks) Ticks(min, max float64) []plot.Tick {
	ticks := degreeTicks{major: 30, minor: 10}.Ticks(min, max)
	for _, r := range haloRadii {
		if r < min || r > max {
			continue
		}
		ticks = append(ticks, plot.Tick{Value: r, Label: fmt.Sprintf("%g°", r)})
	}
	return ticks
}
