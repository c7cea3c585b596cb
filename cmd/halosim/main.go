// Command halosim simulates the halos formed by sunlight passing
// through falling ice crystals.
//
// It writes a heat map of where outgoing light appears in the sky and a
// histogram of its angle from the sun. Halos appear as rings or spots
// at their characteristic angles, such as 22° and 46°.
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"time"

	"github.com/aclements/halo"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/plot/vg"
)

const (
	lat = 42.4195011
	lon = -71.2064993
)

const deg = math.Pi / 180

func main() {
	cfg := halo.DefaultConfig()

	var (
		az       = flag.Float64("az", cfg.Source.Azimuth/deg, "sun `azimuth` in degrees (0 is north, 90 is east)")
		alt      = flag.Float64("alt", cfg.Source.Altitude/deg, "sun `altitude` in degrees")
		when     = flag.String("time", "", "compute the sun position at `time` (RFC 3339) instead of using -az and -alt")
		latitude = flag.Float64("lat", lat, "observer `latitude` in degrees, for -time")
		longit   = flag.Float64("lon", lon, "observer `longitude` in degrees, for -time")
		diameter = flag.Float64("diameter", cfg.Source.Diameter/deg, "sun angular `diameter` in degrees")

		ratio   = flag.Float64("ratio", cfg.Habit.RatioMean, "mean crystal c/a `ratio`")
		ratioSD = flag.Float64("ratio-sd", cfg.Habit.RatioStdDev, "standard deviation of crystal c/a ratio")
		tilt    = flag.Float64("tilt", cfg.Habit.TiltA/deg, "standard deviation of crystal tilt in `degrees`")

		ice        = flag.Float64("ice", cfg.Inside, "refractive `index` of ice")
		air        = flag.Float64("air", cfg.Outside, "refractive `index` of air")
		maxBounces = flag.Int("max-bounces", cfg.MaxBounces, "drop photons after `n` internal reflections")

		trials  = flag.Int("n", cfg.Trials, "number of `trials`")
		seed    = flag.Uint64("seed", cfg.Seed, "random `seed`")
		workers = flag.Int("workers", 0, "number of worker goroutines (0 for one per CPU)")
		cache   = flag.String("cache", "", "cache results in `dir`")

		skyOut     = flag.String("o", "halo.png", "write sky heat map to `file`")
		cell       = flag.Float64("cell", 0.5, "sky heat map cell size in `degrees`")
		histOut    = flag.String("hist", "", "write deflection histogram to `file`")
		crystalOut = flag.String("crystal", "", "write a plot of one sample crystal and photon path to `file`")
		stlOut     = flag.String("stl", "", "write one sample crystal as STL to `file`")
	)
	flag.Parse()

	if *when != "" {
		t, err := time.Parse(time.RFC3339, *when)
		if err != nil {
			log.Fatal(err)
		}
		cfg.Source = halo.SourceAt(t, *latitude, *longit)
		log.Printf("sun at azimuth %.2f°, altitude %.2f°", cfg.Source.Azimuth/deg, cfg.Source.Altitude/deg)
		if cfg.Source.Altitude < 0 {
			log.Fatal("sun is below the horizon")
		}
	} else {
		cfg.Source.Azimuth, cfg.Source.Altitude = *az*deg, *alt*deg
	}
	cfg.Source.Diameter = *diameter * deg
	cfg.Habit = halo.Habit{RatioMean: *ratio, RatioStdDev: *ratioSD, TiltA: *tilt * deg, TiltB: *tilt * deg}
	cfg.Inside, cfg.Outside = *ice, *air
	cfg.MaxBounces = *maxBounces
	cfg.Trials, cfg.Seed, cfg.Workers = *trials, *seed, *workers

	if *crystalOut != "" || *stlOut != "" {
		if err := sample(cfg, *crystalOut, *stlOut); err != nil {
			log.Fatal(err)
		}
	}

	start := time.Now()
	var res *halo.Result
	if *cache != "" {
		res = halo.RunCached(cfg, *cache)
	} else {
		res = halo.Run(cfg)
	}
	log.Printf("%s in %s", res.Summary(), time.Since(start).Round(time.Millisecond))

	dirs := res.Directions()
	if *skyOut != "" {
		plt := halo.NewSkyMap(dirs, *cell).Plot(cfg.Source)
		if err := plt.Save(30*vg.Centimeter, 15*vg.Centimeter, *skyOut); err != nil {
			log.Fatal(err)
		}
	}
	if *histOut != "" {
		d := halo.NewDeflection(r3.Scale(-1, cfg.Source.Toward()), dirs, 360)
		if err := d.Plot().Save(20*vg.Centimeter, 10*vg.Centimeter, *histOut); err != nil {
			log.Fatal(err)
		}
	}
}

// sample traces a single photon that exits the crystal and writes its
// crystal and path.
func sample(cfg halo.Config, plotPath, stlPath string) error {
	rng := rand.New(rand.NewSource(cfg.Seed))
	tr := &halo.Tracer{Outside: cfg.Outside, Inside: cfg.Inside, MaxBounces: cfg.MaxBounces}
	const attempts = 100
	for i := 0; i < attempts; i++ {
		c, err := cfg.Habit.Build(rng)
		if err != nil {
			continue
		}
		trial, err := tr.Trace(rng, c, cfg.Source.Sample(rng))
		if err != nil || len(trial.Events) < 2 {
			// Prefer a photon that went through the crystal.
			continue
		}
		log.Printf("sample photon: %d events, %d internal reflections", len(trial.Events), trial.Bounces())
		if plotPath != "" {
			// Look at the crystal from beside the sun.
			view := r3.Add(r3.Scale(-1, cfg.Source.Toward()), r3.Vec{X: 0.3, Y: 0.3})
			plt := halo.PlotCrystal(c, view, trial)
			if err := plt.Save(15*vg.Centimeter, 15*vg.Centimeter, plotPath); err != nil {
				return err
			}
		}
		if stlPath != "" {
			f, err := os.Create(stlPath)
			if err != nil {
				return err
			}
			header := fmt.Sprintf("halosim crystal c/a=%.3f", c.Ratio)
			if err := c.WriteSTL(f, header); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
		}
		return nil
	}
	return fmt.Errorf("no photon passed through a crystal in %d attempts", attempts)
}
