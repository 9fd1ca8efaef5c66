package sim

import (
	"time"

	"github.com/san-kum/pendulab/internal/chain"
	"gonum.org/v1/gonum/spatial/r2"
)

// Clock supplies frame timestamps.
type Clock interface {
	Now() time.Time
}

// Scheduler arranges for Driver.Tick to be called once on the next frame.
type Scheduler interface {
	RequestFrame()
}

type Renderer interface {
	Render(f Frame)
}

// ParameterSource supplies the angles, in degrees, a chain returns to on
// reset.
type ParameterSource interface {
	InitialAngles() []float64
}

type Observer interface {
	OnStep(s *chain.State, t float64)
}

type Metric interface {
	Name() string
	Observe(s *chain.State, t float64)
	Value() float64
	Reset()
}

// Frame is everything a renderer needs to draw one chain. Positions are in
// internal units relative to the canvas.
type Frame struct {
	ID         string
	Origin     r2.Vec
	Bobs       []r2.Vec
	Velocities []r2.Vec
	// Trails is nil when the path display is off.
	Trails  [][]r2.Vec
	Masses  []float64
	Scale   float64
	Running bool
	Time    float64
	Energy  float64
}

// Params holds a chain's setup in user units: meters, kilograms, degrees
// and m/s². Every per-link slice has one entry per link.
type Params struct {
	Lengths       []float64
	Masses        []float64
	Angles        []float64
	Gravity       float64
	Damping       float64
	ShowPath      bool
	MaxPathPoints int
	Scale         float64
	Origin        r2.Vec
}

// DefaultParams returns the stock setup for an n-link chain.
func DefaultParams(n int) Params {
	if n < chain.MinLinks {
		n = chain.MinLinks
	}
	if n > chain.MaxLinks {
		n = chain.MaxLinks
	}
	p := Params{
		Lengths:       make([]float64, n),
		Masses:        make([]float64, n),
		Angles:        make([]float64, n),
		Gravity:       chain.DefaultGravity,
		Damping:       chain.DefaultDamping,
		ShowPath:      true,
		MaxPathPoints: 1000,
		Scale:         chain.DefaultScale,
	}
	for i := 0; i < n; i++ {
		p.Lengths[i] = chain.DefaultLength
		p.Masses[i] = chain.DefaultMass
		p.Angles[i] = chain.DefaultAngles[i]
	}
	return p
}

// InitialAngles makes Params usable as a ParameterSource.
func (p Params) InitialAngles() []float64 {
	out := make([]float64, len(p.Angles))
	copy(out, p.Angles)
	return out
}
