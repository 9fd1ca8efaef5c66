package chain

import (
	"fmt"
	"math"
)

const (
	MinLinks = 1
	MaxLinks = 3

	// DefaultScale converts meters to internal length units (pixels).
	DefaultScale   = 50.0
	DefaultLength  = 1.5
	DefaultMass    = 20.0
	DefaultGravity = 9.81
	DefaultDamping = 0.02
)

// DefaultAngles are the initial angles of links 1 to 3, in degrees.
var DefaultAngles = [MaxLinks]float64{90, 60, -90}

type LinkConfig struct {
	Length float64
	Mass   float64
}

type LinkState struct {
	Angle               float64
	AngularVelocity     float64
	AngularAcceleration float64
}

type State struct {
	Config  []LinkConfig
	Links   []LinkState
	Gravity float64
	Damping float64
}

// New returns a chain of n links built from the package defaults, with
// lengths and gravity multiplied by scale.
func New(n int, scale float64) (*State, error) {
	if n < MinLinks || n > MaxLinks {
		return nil, fmt.Errorf("%w: got %d", ErrLinkCount, n)
	}
	s := &State{
		Config:  make([]LinkConfig, n),
		Links:   make([]LinkState, n),
		Gravity: DefaultGravity * scale,
		Damping: DefaultDamping,
	}
	for i := 0; i < n; i++ {
		s.Config[i] = LinkConfig{Length: DefaultLength * scale, Mass: DefaultMass}
		s.Links[i].Angle = Radians(DefaultAngles[i])
	}
	return s, nil
}

func (s *State) N() int { return len(s.Links) }

func (s *State) Clone() *State {
	c := &State{
		Config:  make([]LinkConfig, len(s.Config)),
		Links:   make([]LinkState, len(s.Links)),
		Gravity: s.Gravity,
		Damping: s.Damping,
	}
	copy(c.Config, s.Config)
	copy(c.Links, s.Links)
	return c
}

// IsFinite reports whether every angle and angular velocity is a finite number.
func (s *State) IsFinite() bool {
	for _, l := range s.Links {
		if math.IsNaN(l.Angle) || math.IsInf(l.Angle, 0) {
			return false
		}
		if math.IsNaN(l.AngularVelocity) || math.IsInf(l.AngularVelocity, 0) {
			return false
		}
	}
	return true
}

// Halt zeroes every angular velocity and acceleration, leaving angles alone.
func (s *State) Halt() {
	for i := range s.Links {
		s.Links[i].AngularVelocity = 0
		s.Links[i].AngularAcceleration = 0
	}
}

func (s *State) Angles() []float64 {
	out := make([]float64, len(s.Links))
	for i, l := range s.Links {
		out[i] = l.Angle
	}
	return out
}

func (s *State) Velocities() []float64 {
	out := make([]float64, len(s.Links))
	for i, l := range s.Links {
		out[i] = l.AngularVelocity
	}
	return out
}

func Radians(deg float64) float64 { return deg * math.Pi / 180 }
func Degrees(rad float64) float64 { return rad * 180 / math.Pi }
