package dynamics

import (
	"math"

	"github.com/san-kum/pendulab/internal/chain"
)

// Step advances s by dt seconds with semi-implicit Euler and reports whether
// time advanced. A dt that is NaN, infinite or not positive leaves s
// untouched.
func Step(s *chain.State, dt float64) bool {
	if !ValidStep(dt) {
		return false
	}

	Accelerations(s)

	for i := range s.Links {
		l := &s.Links[i]
		l.AngularVelocity += l.AngularAcceleration * dt
		l.Angle += l.AngularVelocity * dt
	}
	return true
}

func ValidStep(dt float64) bool {
	return !math.IsNaN(dt) && !math.IsInf(dt, 0) && dt > 0
}
