package dynamics

import (
	"math"

	"github.com/san-kum/pendulab/internal/chain"
)

// Accelerations writes the angular acceleration of every link from the
// current angles, velocities, lengths, masses, gravity and damping.
// Degenerate inputs (zero length, zero total mass) yield Inf or NaN.
func Accelerations(s *chain.State) {
	switch s.N() {
	case 1:
		single(s)
	case 2:
		double(s)
	case 3:
		triple(s)
	default:
		return
	}
	for i := range s.Links {
		s.Links[i].AngularAcceleration -= s.Damping * s.Links[i].AngularVelocity
	}
}

func single(s *chain.State) {
	l := &s.Links[0]
	l.AngularAcceleration = -(s.Gravity / s.Config[0].Length) * math.Sin(l.Angle)
}

func double(s *chain.State) {
	g := s.Gravity
	m1, m2 := s.Config[0].Mass, s.Config[1].Mass
	l1, l2 := s.Config[0].Length, s.Config[1].Length
	t1, t2 := s.Links[0].Angle, s.Links[1].Angle
	w1, w2 := s.Links[0].AngularVelocity, s.Links[1].AngularVelocity

	s12, c12 := math.Sin(t1-t2), math.Cos(t1-t2)
	den := 2*m1 + m2 - m2*math.Cos(2*t1-2*t2)

	s.Links[0].AngularAcceleration = (-g*(2*m1+m2)*math.Sin(t1) -
		m2*g*math.Sin(t1-2*t2) -
		2*s12*m2*(w2*w2*l2+w1*w1*l1*c12)) / (l1 * den)

	s.Links[1].AngularAcceleration = (2 * s12 * (w1*w1*l1*(m1+m2) +
		g*(m1+m2)*math.Cos(t1) +
		w2*w2*l2*m2*c12)) / (l2 * den)
}

// triple solves M(θ)·α = b(θ, ω) for three point masses by Cramer's rule.
// Row i is divided by the mass hanging at or below link i and the unknowns
// are x_i = L_i·α_i, which keeps the system well conditioned as the last
// mass goes to zero: rows 1 and 2 then reduce to the two-link solution.
func triple(s *chain.State) {
	g := s.Gravity
	l1, l2, l3 := s.Config[0].Length, s.Config[1].Length, s.Config[2].Length
	mu1 := s.Config[0].Mass + s.Config[1].Mass + s.Config[2].Mass
	mu2 := s.Config[1].Mass + s.Config[2].Mass
	mu3 := s.Config[2].Mass
	t1, t2, t3 := s.Links[0].Angle, s.Links[1].Angle, s.Links[2].Angle
	w1, w2, w3 := s.Links[0].AngularVelocity, s.Links[1].AngularVelocity, s.Links[2].AngularVelocity

	s12, c12 := math.Sin(t1-t2), math.Cos(t1-t2)
	s13, c13 := math.Sin(t1-t3), math.Cos(t1-t3)
	s23, c23 := math.Sin(t2-t3), math.Cos(t2-t3)

	r21, r31, r32 := mu2/mu1, mu3/mu1, mu3/mu2

	a := [3][3]float64{
		{1, r21 * c12, r31 * c13},
		{c12, 1, r32 * c23},
		{c13, c23, 1},
	}
	y := [3]float64{
		-r21*l2*s12*w2*w2 - r31*l3*s13*w3*w3 - g*math.Sin(t1),
		l1*s12*w1*w1 - r32*l3*s23*w3*w3 - g*math.Sin(t2),
		l1*s13*w1*w1 + l2*s23*w2*w2 - g*math.Sin(t3),
	}

	det := det3(a)
	lengths := [3]float64{l1, l2, l3}
	for k := 0; k < 3; k++ {
		m := a
		for r := 0; r < 3; r++ {
			m[r][k] = y[r]
		}
		s.Links[k].AngularAcceleration = det3(m) / det / lengths[k]
	}
}

func det3(m [3][3]float64) float64 {
	return m[0][0]*(m[1][1]*m[2][2]-m[1][2]*m[2][1]) -
		m[0][1]*(m[1][0]*m[2][2]-m[1][2]*m[2][0]) +
		m[0][2]*(m[1][0]*m[2][1]-m[1][1]*m[2][0])
}
