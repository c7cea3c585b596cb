package halo

import (
	"errors"
	"fmt"
	"math"
	"runtime"
	"sort"
	"strings"
	"sync"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/spatial/r3"
)

// Config is the configuration of a batch of trials.
type Config struct {
	Source Source
	Habit  Habit

	// Outside and Inside are the refractive indices of air and ice.
	Outside, Inside float64

	MaxBounces int

	Trials int
	Seed   uint64

	// Workers is the number of goroutines to run trials on. If 0, it
	// uses one per CPU. The results don't depend on Workers.
	Workers int
}

// DefaultConfig returns a configuration for plate crystals falling
// nearly flat, lit by the sun 20° above the southern horizon.
func DefaultConfig() Config {
	const deg = math.Pi / 180
	return Config{
		Source: Source{Azimuth: 180 * deg, Altitude: 20 * deg, Diameter: SunDiameter},
		Habit: Habit{
			RatioMean:   0.3,
			RatioStdDev: 0.05,
			TiltA:       1 * deg,
			TiltB:       1 * deg,
		},
		Outside:    IndexAir,
		Inside:     IndexIce,
		MaxBounces: 1000,
		Trials:     100000,
		Seed:       1,
	}
}

// DropReason records why a trial produced no outgoing ray.
type DropReason uint8

const (
	DropNone DropReason = iota
	DropDegenerate
	DropNoIlluminatedFacet
	DropBounceCap
	DropNoExit
)

func (d DropReason) String() string {
	switch d {
	case DropNone:
		return "none"
	case DropDegenerate:
		return "degenerate geometry"
	case DropNoIlluminatedFacet:
		return "no illuminated facet"
	case DropBounceCap:
		return "bounce limit exceeded"
	case DropNoExit:
		return "no exit facet"
	}
	return fmt.Sprintf("DropReason(%d)", uint8(d))
}

func dropReason(err error) DropReason {
	switch {
	case err == nil:
		return DropNone
	case errors.Is(err, ErrDegenerateGeometry):
		return DropDegenerate
	case errors.Is(err, ErrNoIlluminatedFacet):
		return DropNoIlluminatedFacet
	case errors.Is(err, ErrBounceCapExceeded):
		return DropBounceCap
	}
	return DropNoExit
}

// An Outcome is the result of one trial.
type Outcome struct {
	Dir  r3.Vec // Outgoing direction, if Drop is DropNone
	Drop DropReason
}

type Result struct {
	Config   Config
	Outcomes []Outcome // Indexed by trial
}

const (
	// blockSize is the number of trials that share a random stream.
	blockSize = 1024

	// maxResamples is the number of times a trial redraws its crystal
	// and ray after a geometry or sampling failure before giving up.
	maxResamples = 16
)

// Run runs cfg.Trials independent trials in parallel.
//
// Trials are divided into fixed blocks, each with its own random
// stream derived from cfg.Seed, so a given configuration always
// produces the same result.
func Run(cfg Config) *Result {
	n := cfg.Trials
	if n < 0 {
		n = 0
	}
	res := &Result{Config: cfg, Outcomes: make([]Outcome, n)}
	nBlocks := (n + blockSize - 1) / blockSize

	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > nBlocks {
		workers = nBlocks
	}

	blocks := make(chan int, nBlocks)
	for b := 0; b < nBlocks; b++ {
		blocks <- b
	}
	close(blocks)

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			tr := &Tracer{Outside: cfg.Outside, Inside: cfg.Inside, MaxBounces: cfg.MaxBounces}
			for b := range blocks {
				lo, hi := b*blockSize, (b+1)*blockSize
				if hi > n {
					hi = n
				}
				// Each block writes only its own slots.
				rng := rand.New(rand.NewSource(blockSeed(cfg.Seed, b)))
				for i := lo; i < hi; i++ {
					res.Outcomes[i] = cfg.trial(rng, tr)
				}
			}
		}()
	}
	wg.Wait()
	return res
}

func blockSeed(seed uint64, block int) uint64 {
	return seed ^ (uint64(block)+1)*0x9e3779b97f4a7c15
}

func (cfg *Config) trial(rng *rand.Rand, tr *Tracer) Outcome {
	var err error
	for attempt := 0; attempt < maxResamples; attempt++ {
		var c *Crystal
		c, err = cfg.Habit.Build(rng)
		if err != nil {
			continue
		}
		var trial *Trial
		trial, err = tr.Trace(rng, c, cfg.Source.Sample(rng))
		if errors.Is(err, ErrNoIlluminatedFacet) {
			continue
		}
		if err != nil {
			return Outcome{Drop: dropReason(err)}
		}
		return Outcome{Dir: trial.Out}
	}
	return Outcome{Drop: dropReason(err)}
}

// Directions returns the outgoing directions of the successful trials.
func (r *Result) Directions() []r3.Vec {
	dirs := make([]r3.Vec, 0, len(r.Outcomes))
	for _, o := range r.Outcomes {
		if o.Drop == DropNone {
			dirs = append(dirs, o.Dir)
		}
	}
	return dirs
}

// A Summary counts the outcomes of a batch.
type Summary struct {
	Trials, Successes int
	Drops             map[DropReason]int
}

func (r *Result) Summary() Summary {
	s := Summary{Trials: len(r.Outcomes), Drops: make(map[DropReason]int)}
	for _, o := range r.Outcomes {
		if o.Drop == DropNone {
			s.Successes++
		} else {
			s.Drops[o.Drop]++
		}
	}
	return s
}

// Dropped returns the total number of dropped trials.
func (s Summary) Dropped() int {
	n := 0
	for _, c := range s.Drops {
		n += c
	}
	return n
}

func (s Summary) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d trials, %d exited, %d dropped", s.Trials, s.Successes, s.Dropped())
	reasons := make([]DropReason, 0, len(s.Drops))
	for d := range s.Drops {
		reasons = append(reasons, d)
	}
	sort.Slice(reasons, func(i, j int) bool { return reasons[i] < reasons[j] })
	for _, d := range reasons {
		fmt.Fprintf(&b, "; %s: %d", d, s.Drops[d])
	}
	return b.String()
}
