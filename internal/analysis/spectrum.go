package analysis

import (
	"errors"
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"
)

var ErrNoOscillation = errors.New("analysis: no oscillation found")

// minSamples is the shortest signal DominantPeriod accepts.
const minSamples = 8

// PowerSpectrum returns the magnitude of the first half of the FFT of data
// after removing its mean and applying a Hann window.
func PowerSpectrum(data []float64) []float64 {
	x := make([]float64, len(data))
	mean := 0.0
	for _, v := range data {
		mean += v
	}
	mean /= float64(len(data))
	for i, v := range data {
		x[i] = v - mean
	}
	window.Apply(x, window.Hann)

	coeffs := fft.FFTReal(x)
	ps := make([]float64, len(coeffs)/2)
	for i := range ps {
		ps[i] = cmplx.Abs(coeffs[i])
	}
	return ps
}

// DominantPeriod returns the period, in seconds, of the strongest frequency
// in samples taken every dt seconds. The peak bin is refined by parabolic
// interpolation.
func DominantPeriod(samples []float64, dt float64) (float64, error) {
	n := len(samples)
	if n < minSamples || dt <= 0 {
		return 0, ErrNoOscillation
	}

	ps := PowerSpectrum(samples)
	peak := 1
	for k := 2; k < len(ps); k++ {
		if ps[k] > ps[peak] {
			peak = k
		}
	}
	if ps[peak] < 1e-12 || math.IsNaN(ps[peak]) {
		return 0, ErrNoOscillation
	}

	bin := float64(peak)
	if peak+1 < len(ps) {
		a, b, c := ps[peak-1], ps[peak], ps[peak+1]
		if den := a - 2*b + c; den != 0 {
			bin += 0.5 * (a - c) / den
		}
	}
	if bin <= 0 {
		return 0, ErrNoOscillation
	}

	freq := bin / (float64(n) * dt)
	return 1 / freq, nil
}

// SmallAnglePeriod is the period of a single pendulum at small amplitude.
func SmallAnglePeriod(length, gravity float64) float64 {
	return 2 * math.Pi * math.Sqrt(length/gravity)
}
