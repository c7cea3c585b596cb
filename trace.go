package halo

import (
	"errors"
	"fmt"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/spatial/r3"
)

var (
	// ErrBounceCapExceeded is returned when a photon is still inside a
	// crystal after the maximum number of internal bounces.
	ErrBounceCapExceeded = errors.New("bounce limit exceeded")

	// ErrNoExit is returned when a photon inside a crystal doesn't hit
	// any facet. This only happens through rounding error.
	ErrNoExit = errors.New("no exit facet")
)

// Refractive indices.
const (
	IndexAir = 1.0
	IndexIce = 1.31
)

// State is the state of a photon traced through a crystal.
type State uint8

const (
	// StateEntered means the photon has just struck the outer surface.
	StateEntered State = iota
	// StateInside means the photon is bouncing among internal facets.
	StateInside
	// StateExited means the photon has left the crystal.
	StateExited
)

func (s State) String() string {
	switch s {
	case StateEntered:
		return "entered"
	case StateInside:
		return "inside"
	case StateExited:
		return "exited"
	}
	return fmt.Sprintf("State(%d)", uint8(s))
}

// A Tracer follows photons through crystals.
type Tracer struct {
	// Outside and Inside are the refractive indices of the medium
	// around the crystal and of the crystal.
	Outside, Inside float64

	// MaxBounces limits the number of internal bounces.
	MaxBounces int
}

// An Event is one reflection or refraction at a facet.
type Event struct {
	Scatter

	Facet     int
	Point     r3.Vec
	Reflected bool
}

// A Trial is the history of one photon.
type Trial struct {
	Crystal *Crystal
	In      r3.Vec // Direction of the primary ray
	Events  []Event
	State   State

	// Out is the direction the photon leaves in. It is only valid if
	// State is StateExited.
	Out r3.Vec
}

// Bounces returns the number of internal reflections in t.
func (t *Trial) Bounces() int {
	n := 0
	for _, ev := range t.Events[1:] {
		if ev.Reflected {
			n++
		}
	}
	return n
}

// Trace follows a photon traveling in direction dir that strikes c.
// It chooses the entry facet and point at random.
func (tr *Tracer) Trace(rng *rand.Rand, c *Crystal, dir r3.Vec) (*Trial, error) {
	facet, err := SampleEntryFacet(rng, c, dir)
	if err != nil {
		return nil, err
	}
	p := SampleEntryPoint(rng, c, facet)
	return tr.TraceFrom(rng, c, Ray{p, dir}, facet)
}

// TraceFrom follows a photon that strikes facet of c from outside
// along ray, until it leaves c.
//
// If the photon bounces more than tr.MaxBounces times, TraceFrom
// returns the partial trial and an error wrapping ErrBounceCapExceeded.
func (tr *Tracer) TraceFrom(rng *rand.Rand, c *Crystal, ray Ray, facet int) (*Trial, error) {
	trial := &Trial{Crystal: c, In: ray.Dir, State: StateEntered}
	n1, n2 := tr.Outside, tr.Inside

	normal := c.Normals[facet]
	s := Fresnel(normal, ray.Dir, n1, n2)
	ev := Event{Scatter: s, Facet: facet, Point: ray.Origin, Reflected: s.Reflects(rng)}
	trial.Events = append(trial.Events, ev)
	if ev.Reflected {
		trial.Out = Reflect(normal, s.Incident, ray.Dir)
		trial.State = StateExited
		return trial, nil
	}
	ray.Dir = Refract(normal, s.Incident, s.Transmitted, ray.Dir, n1, n2)
	n1, n2 = n2, n1
	trial.State = StateInside

	for bounce := 0; bounce <= tr.MaxBounces; bounce++ {
		t, facet, ok := ray.IntersectCrystal(c)
		if !ok {
			return trial, fmt.Errorf("after %d bounces: %w", bounce, ErrNoExit)
		}
		hit := ray.Along(t)
		// From inside, the facet's normal points away from the ray.
		normal := r3.Scale(-1, c.Normals[facet])
		s := Fresnel(normal, ray.Dir, n1, n2)
		ev := Event{Scatter: s, Facet: facet, Point: hit, Reflected: s.Reflects(rng)}
		trial.Events = append(trial.Events, ev)
		if ev.Reflected {
			ray = Ray{hit, Reflect(normal, s.Incident, ray.Dir)}
			continue
		}
		trial.Out = Refract(normal, s.Incident, s.Transmitted, ray.Dir, n1, n2)
		trial.State = StateExited
		return trial, nil
	}
	return trial, fmt.Errorf("%d bounces: %w", tr.MaxBounces, ErrBounceCapExceeded)
}
