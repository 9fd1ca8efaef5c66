package dynamics

import (
	"math"

	"github.com/san-kum/pendulab/internal/chain"
)

// Energy returns kinetic plus potential energy of the chain, with the
// potential measured from the configuration hanging straight down.
func Energy(s *chain.State) float64 {
	var vx, vy, drop, ke, pe float64
	for i, l := range s.Links {
		length := s.Config[i].Length
		m := s.Config[i].Mass

		vx += length * l.AngularVelocity * math.Cos(l.Angle)
		vy -= length * l.AngularVelocity * math.Sin(l.Angle)
		drop += length * (1 - math.Cos(l.Angle))

		ke += 0.5 * m * (vx*vx + vy*vy)
		pe += m * s.Gravity * drop
	}
	return ke + pe
}
