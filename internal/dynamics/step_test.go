package dynamics

import (
	"math"
	"testing"

	"github.com/san-kum/pendulab/internal/chain"
)

func newChain(t *testing.T, n int) *chain.State {
	t.Helper()
	s, err := chain.New(n, 1)
	if err != nil {
		t.Fatalf("chain.New(%d): %v", n, err)
	}
	return s
}

func TestSinglePendulumAcceleration(t *testing.T) {
	s := newChain(t, 1)
	s.Damping = 0
	s.Links[0].Angle = math.Pi / 2

	Accelerations(s)

	expected := -s.Gravity / s.Config[0].Length
	if math.Abs(s.Links[0].AngularAcceleration-expected) > 1e-12 {
		t.Errorf("expected acceleration %f, got %f", expected, s.Links[0].AngularAcceleration)
	}
}

func TestEquilibrium(t *testing.T) {
	for n := 1; n <= 3; n++ {
		s := newChain(t, n)
		for i := range s.Links {
			s.Links[i].Angle = 0
		}

		Accelerations(s)

		for i, l := range s.Links {
			if math.Abs(l.AngularAcceleration) > 1e-12 {
				t.Errorf("n=%d link %d: expected zero acceleration at rest, got %g", n, i+1, l.AngularAcceleration)
			}
		}
	}
}

func TestDampingOpposesVelocity(t *testing.T) {
	s := newChain(t, 2)
	for i := range s.Links {
		s.Links[i].Angle = 0
		s.Links[i].AngularVelocity = 0
	}
	s.Links[0].AngularVelocity = 2
	s.Damping = 0.5

	undamped := s.Clone()
	undamped.Damping = 0

	Accelerations(s)
	Accelerations(undamped)

	got := s.Links[0].AngularAcceleration - undamped.Links[0].AngularAcceleration
	if math.Abs(got-(-1.0)) > 1e-12 {
		t.Errorf("expected damping term -1.0 on link 1, got %f", got)
	}
	got = s.Links[1].AngularAcceleration - undamped.Links[1].AngularAcceleration
	if math.Abs(got) > 1e-12 {
		t.Errorf("expected no damping term on resting link 2, got %f", got)
	}
}

func TestStepRejectsInvalidDt(t *testing.T) {
	tests := []struct {
		name string
		dt   float64
	}{
		{"zero", 0},
		{"negative", -0.01},
		{"nan", math.NaN()},
		{"+inf", math.Inf(1)},
		{"-inf", math.Inf(-1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newChain(t, 3)
			s.Links[1].AngularVelocity = 1.25
			s.Links[2].AngularAcceleration = 7
			before := s.Clone()

			if Step(s, tt.dt) {
				t.Fatal("Step reported progress for an invalid dt")
			}
			for i := range s.Links {
				if math.Float64bits(s.Links[i].Angle) != math.Float64bits(before.Links[i].Angle) ||
					math.Float64bits(s.Links[i].AngularVelocity) != math.Float64bits(before.Links[i].AngularVelocity) ||
					math.Float64bits(s.Links[i].AngularAcceleration) != math.Float64bits(before.Links[i].AngularAcceleration) {
					t.Errorf("link %d changed: %+v -> %+v", i+1, before.Links[i], s.Links[i])
				}
				if s.Config[i] != before.Config[i] {
					t.Errorf("link %d config changed", i+1)
				}
			}
		})
	}
}

// The single pendulum from rest at 30 degrees must follow a semi-implicit
// Euler trace step for step.
func TestSinglePendulumReplay(t *testing.T) {
	s := newChain(t, 1)
	s.Config[0].Length = 1.5
	s.Gravity = 9.81
	s.Damping = 0
	s.Links[0].Angle = chain.Radians(30)

	theta, omega := math.Pi/6, 0.0
	const dt = 0.01
	for i := 0; i < 100; i++ {
		alpha := -(9.81 / 1.5) * math.Sin(theta)
		omega += alpha * dt
		theta += omega * dt

		if !Step(s, dt) {
			t.Fatalf("step %d rejected", i)
		}
		if math.Abs(s.Links[0].Angle-theta) > 1e-12 || math.Abs(s.Links[0].AngularVelocity-omega) > 1e-12 {
			t.Fatalf("step %d: got (%.15f, %.15f), want (%.15f, %.15f)",
				i, s.Links[0].Angle, s.Links[0].AngularVelocity, theta, omega)
		}
	}

	// The trace must differ from explicit Euler, which moves the angle with
	// the old velocity.
	et, eo := math.Pi/6, 0.0
	for i := 0; i < 100; i++ {
		alpha := -(9.81 / 1.5) * math.Sin(et)
		et += eo * dt
		eo += alpha * dt
	}
	if math.Abs(et-theta) < 1e-6 {
		t.Error("semi-implicit trace is indistinguishable from explicit Euler")
	}
}

func TestSinglePendulumEnergyBounded(t *testing.T) {
	s := newChain(t, 1)
	s.Damping = 0
	s.Links[0].Angle = chain.Radians(30)

	e0 := Energy(s)
	maxDrift := 0.0
	for i := 0; i < 20000; i++ {
		Step(s, 0.001)
		drift := math.Abs(Energy(s)-e0) / e0
		maxDrift = math.Max(maxDrift, drift)
	}

	if maxDrift > 0.01 {
		t.Errorf("energy drift too high: %e", maxDrift)
	}
}

func TestChainEnergyBounded(t *testing.T) {
	for _, n := range []int{2, 3} {
		s := newChain(t, n)
		s.Damping = 0
		for i := range s.Links {
			s.Links[i].Angle = chain.Radians(20)
		}

		e0 := Energy(s)
		maxDrift := 0.0
		for i := 0; i < 20000; i++ {
			Step(s, 0.0005)
			maxDrift = math.Max(maxDrift, math.Abs(Energy(s)-e0)/e0)
		}

		if maxDrift > 0.02 {
			t.Errorf("n=%d: energy drift too high: %e", n, maxDrift)
		}
	}
}

func TestDampingDissipatesEnergy(t *testing.T) {
	s := newChain(t, 1)
	s.Damping = 0.5
	s.Links[0].Angle = chain.Radians(45)

	e0 := Energy(s)
	for i := 0; i < 5000; i++ {
		Step(s, 0.001)
	}

	if Energy(s) >= e0*0.5 {
		t.Errorf("expected damped energy below %f, got %f", e0*0.5, Energy(s))
	}
}

func TestScaleInvariance(t *testing.T) {
	small, _ := chain.New(3, 1)
	large, _ := chain.New(3, chain.DefaultScale)

	for i := 0; i < 500; i++ {
		Step(small, 0.002)
		Step(large, 0.002)
	}

	for i := range small.Links {
		if math.Abs(small.Links[i].Angle-large.Links[i].Angle) > 1e-8 {
			t.Errorf("link %d: angle depends on scale: %f vs %f", i+1, small.Links[i].Angle, large.Links[i].Angle)
		}
	}
}

func TestDegenerateLengthPropagates(t *testing.T) {
	s := newChain(t, 2)
	s.Config[0].Length = 0

	if !Step(s, 0.01) {
		t.Fatal("step rejected")
	}

	if s.IsFinite() {
		t.Errorf("expected non-finite state from zero length, got %+v", s.Links)
	}
}

func TestAnglesAreNotWrapped(t *testing.T) {
	s := newChain(t, 1)
	s.Damping = 0
	s.Links[0].Angle = 0
	s.Links[0].AngularVelocity = 20

	for i := 0; i < 1000; i++ {
		Step(s, 0.001)
	}

	if s.Links[0].Angle < 2*math.Pi {
		t.Errorf("expected a full revolution to accumulate, got %f", s.Links[0].Angle)
	}
}
