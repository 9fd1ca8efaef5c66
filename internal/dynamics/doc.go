// Package dynamics advances a pendulum chain through time.
//
// The equations of motion are the closed-form Lagrangian solutions for
// point-mass chains of one, two and three links, followed by linear velocity
// damping. [Step] integrates them with semi-implicit Euler: each link's
// angular velocity is updated first and the new velocity then moves the
// angle.
//
// [MassMatrixAccelerations] solves the same Lagrangian as a dense linear
// system and serves as an independent check of the closed forms.
//
// # Energy
//
// [Energy] returns the total mechanical energy of the chain. With zero
// damping it stays within a bounded band under [Step]:
//
//	e0 := dynamics.Energy(s)
//	for i := 0; i < 1000; i++ {
//	    dynamics.Step(s, 0.001)
//	}
//	drift := math.Abs(dynamics.Energy(s)-e0) / e0
package dynamics
