// Package kinematics converts chain angles into screen-space geometry.
//
// Screen coordinates grow to the right and downward, so a link hanging at
// angle zero points along +y.
package kinematics

import (
	"math"

	"github.com/san-kum/pendulab/internal/chain"
	"gonum.org/v1/gonum/spatial/r2"
)

// ArrowScale is the factor renderers apply to Velocities before drawing
// them as arrows at the bobs.
const ArrowScale = 0.2

// Project returns the position of every bob, in link order. Bob i hangs from
// bob i-1, and bob 1 from origin.
func Project(s *chain.State, origin r2.Vec) []r2.Vec {
	out := make([]r2.Vec, s.N())
	p := origin
	for i, l := range s.Links {
		length := s.Config[i].Length
		p = r2.Add(p, r2.Vec{X: length * math.Sin(l.Angle), Y: length * math.Cos(l.Angle)})
		out[i] = p
	}
	return out
}

// Velocities returns each link's tangential velocity relative to the pivot
// it swings from: L·ω along the direction perpendicular to the rod.
func Velocities(s *chain.State) []r2.Vec {
	out := make([]r2.Vec, s.N())
	for i, l := range s.Links {
		dir := r2.Vec{X: math.Cos(l.Angle), Y: -math.Sin(l.Angle)}
		out[i] = r2.Scale(s.Config[i].Length*l.AngularVelocity, dir)
	}
	return out
}

// Arrow returns the tip of the velocity arrow drawn at bob.
func Arrow(bob, velocity r2.Vec) r2.Vec {
	return r2.Add(bob, r2.Scale(ArrowScale, velocity))
}

// Extent returns the farthest distance any bob of s can reach from the
// origin, which is the sum of the link lengths.
func Extent(s *chain.State) float64 {
	total := 0.0
	for _, c := range s.Config {
		total += c.Length
	}
	return total
}
