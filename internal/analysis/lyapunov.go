package analysis

import (
	"math"

	"github.com/san-kum/pendulab/internal/chain"
	"github.com/san-kum/pendulab/internal/dynamics"
)

// separation is the distance between two chains in angle and angular
// velocity space.
func separation(a, b *chain.State) float64 {
	sum := 0.0
	for i := range a.Links {
		da := b.Links[i].Angle - a.Links[i].Angle
		dw := b.Links[i].AngularVelocity - a.Links[i].AngularVelocity
		sum += da*da + dw*dw
	}
	return math.Sqrt(sum)
}

// renormalize pulls b back towards a along their separation so that it
// lies d0 away again.
func renormalize(a, b *chain.State, sep, d0 float64) {
	scale := d0 / sep
	for i := range b.Links {
		b.Links[i].Angle = a.Links[i].Angle + (b.Links[i].Angle-a.Links[i].Angle)*scale
		b.Links[i].AngularVelocity = a.Links[i].AngularVelocity + (b.Links[i].AngularVelocity-a.Links[i].AngularVelocity)*scale
	}
}

// LyapunovExponent estimates the largest Lyapunov exponent of s by following
// a copy displaced by perturbation in link 1's angle, renormalizing the
// separation every step. A positive value indicates chaos. s is not modified.
func LyapunovExponent(s *chain.State, dt, duration, perturbation float64) float64 {
	if s.N() == 0 || perturbation <= 0 || !dynamics.ValidStep(dt) {
		return 0
	}

	x := s.Clone()
	xp := s.Clone()
	xp.Links[0].Angle += perturbation
	return lyapunov(x, xp, dt, duration, perturbation)
}

// LyapunovSpectrum perturbs each link's angle in turn and returns the
// exponent measured from each.
func LyapunovSpectrum(s *chain.State, dt, duration, perturbation float64) []float64 {
	spectrum := make([]float64, s.N())
	if perturbation <= 0 || !dynamics.ValidStep(dt) {
		return spectrum
	}
	for i := range spectrum {
		xp := s.Clone()
		xp.Links[i].Angle += perturbation
		spectrum[i] = lyapunov(s.Clone(), xp, dt, duration, perturbation)
	}
	return spectrum
}

func lyapunov(x, xp *chain.State, dt, duration, d0 float64) float64 {
	sumLog := 0.0
	t := 0.0

	for t < duration {
		dynamics.Step(x, dt)
		dynamics.Step(xp, dt)
		t += dt

		sep := separation(x, xp)
		if math.IsNaN(sep) || math.IsInf(sep, 0) {
			break
		}
		if sep > 0 {
			sumLog += math.Log(sep / d0)
			renormalize(x, xp, sep, d0)
		}
	}

	if t == 0 {
		return 0
	}
	return sumLog / t
}
