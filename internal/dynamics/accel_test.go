package dynamics

import (
	"math"
	"math/rand"
	"testing"

	"github.com/san-kum/pendulab/internal/chain"
)

func randomize(s *chain.State, rng *rand.Rand) {
	for i := range s.Links {
		s.Config[i].Length = 0.5 + rng.Float64()*2
		s.Config[i].Mass = 0.5 + rng.Float64()*30
		s.Links[i].Angle = (rng.Float64() - 0.5) * 4 * math.Pi
		s.Links[i].AngularVelocity = (rng.Float64() - 0.5) * 6
	}
	s.Gravity = 9.81
	s.Damping = rng.Float64() * 0.1
}

func closeTo(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol*math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
}

func TestClosedFormMatchesMassMatrix(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for n := 1; n <= 3; n++ {
		for trial := 0; trial < 200; trial++ {
			s, _ := chain.New(n, 1)
			randomize(s, rng)

			want, err := MassMatrixAccelerations(s)
			if err != nil {
				t.Fatalf("n=%d trial %d: solve failed: %v", n, trial, err)
			}
			Accelerations(s)

			for i := range s.Links {
				if !closeTo(s.Links[i].AngularAcceleration, want[i], 1e-8) {
					t.Fatalf("n=%d trial %d link %d: closed form %g, mass matrix %g",
						n, trial, i+1, s.Links[i].AngularAcceleration, want[i])
				}
			}
		}
	}
}

// A vanishing third bob must leave links 1 and 2 moving as a double pendulum.
func TestTripleReducesToDouble(t *testing.T) {
	rng := rand.New(rand.NewSource(11))

	for trial := 0; trial < 50; trial++ {
		d, _ := chain.New(2, 1)
		randomize(d, rng)

		tail := chain.LinkState{Angle: rng.Float64(), AngularVelocity: rng.Float64()}
		ref := d.Clone()
		Accelerations(ref)

		var residuals []float64
		for _, eps := range []float64{1e-2, 1e-4, 1e-6} {
			tr, _ := chain.New(3, 1)
			copy(tr.Config, d.Config)
			copy(tr.Links, d.Links)
			tr.Gravity, tr.Damping = d.Gravity, d.Damping
			tr.Config[2] = chain.LinkConfig{Length: eps, Mass: eps}
			tr.Links[2] = tail

			Accelerations(tr)

			worst := 0.0
			for i := 0; i < 2; i++ {
				diff := math.Abs(tr.Links[i].AngularAcceleration - ref.Links[i].AngularAcceleration)
				worst = math.Max(worst, diff/math.Max(1, math.Abs(ref.Links[i].AngularAcceleration)))
			}
			residuals = append(residuals, worst)
		}

		first, last := residuals[0], residuals[len(residuals)-1]
		if last > first && last > 1e-12 {
			t.Errorf("trial %d: residual grew as the third bob vanished: %v", trial, residuals)
		}
		if last > 1e-4 {
			t.Errorf("trial %d: triple did not converge to double, residuals %v", trial, residuals)
		}
	}
}

func TestDoubleSymmetry(t *testing.T) {
	a := newChain(t, 2)
	b := newChain(t, 2)
	a.Links[0].Angle, a.Links[1].Angle = 0.1, 0.1
	b.Links[0].Angle, b.Links[1].Angle = -0.1, -0.1

	Accelerations(a)
	Accelerations(b)

	for i := 0; i < 2; i++ {
		if math.Abs(a.Links[i].AngularAcceleration+b.Links[i].AngularAcceleration) > 1e-12 {
			t.Errorf("link %d: expected mirrored accelerations, got %f and %f",
				i+1, a.Links[i].AngularAcceleration, b.Links[i].AngularAcceleration)
		}
	}
}
