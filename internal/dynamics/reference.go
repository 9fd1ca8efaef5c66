package dynamics

import (
	"math"

	"github.com/san-kum/pendulab/internal/chain"
	"gonum.org/v1/gonum/mat"
)

// MassMatrixAccelerations assembles the chain's Lagrangian as M·α = b and
// solves it densely. It does not modify s. Damping is applied as in
// [Accelerations].
func MassMatrixAccelerations(s *chain.State) ([]float64, error) {
	n := s.N()

	// tail[i] is the mass hanging at or below link i.
	tail := make([]float64, n)
	sum := 0.0
	for i := n - 1; i >= 0; i-- {
		sum += s.Config[i].Mass
		tail[i] = sum
	}

	m := mat.NewDense(n, n, nil)
	b := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		li := s.Config[i].Length
		ti := s.Links[i].Angle
		rhs := -tail[i] * s.Gravity * li * math.Sin(ti)
		for j := 0; j < n; j++ {
			lj := s.Config[j].Length
			tj := s.Links[j].Angle
			wj := s.Links[j].AngularVelocity
			mu := tail[max(i, j)]
			m.Set(i, j, mu*li*lj*math.Cos(ti-tj))
			rhs -= mu * li * lj * math.Sin(ti-tj) * wj * wj
		}
		b.SetVec(i, rhs)
	}

	var x mat.VecDense
	if err := x.SolveVec(m, b); err != nil {
		return nil, err
	}

	out := make([]float64, n)
	for i := range out {
		out[i] = x.AtVec(i) - s.Damping*s.Links[i].AngularVelocity
	}
	return out, nil
}
