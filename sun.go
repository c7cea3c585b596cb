package halo

import (
	"math"
	"time"

	"github.com/sixdouglas/suncalc"
)

// SourceAt returns the sun as seen at the given time and location.
// Latitude and longitude are in degrees, where north and east are
// positive, respectively.
func SourceAt(t time.Time, latitude, longitude float64) Source {
	p := suncalc.GetPosition(t, latitude, longitude)
	// suncalc returns angles in radians (even though it takes latitude
	// and longitude in degrees). Also, it uses a non-standard
	// convention for azimuth where -90 is east, 0 is south, 90 is west,
	// and 180 is north.
	az := math.Mod(p.Azimuth+math.Pi, 2*math.Pi)
	if az < 0 {
		az += 2 * math.Pi
	}
	return Source{Azimuth: az, Altitude: p.Altitude, Diameter: SunDiameter}
}
